package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/opendefense/casepipe/internal/errors"
)

// CaseRow is a flattened view of one persisted case version for the query
// surfaces (CLI and MCP). Raw party attributes are not exposed here; readers
// get the anonymized hashes from parse_metadata.
type CaseRow struct {
	ID                 int64    `json:"id"`
	Jurisdiction       string   `json:"jurisdiction"`
	CauseNumber        *string  `json:"cause_number"`
	CaseName           *string  `json:"case_name"`
	CaseType           *string  `json:"case_type"`
	DateFiled          *string  `json:"date_filed"`
	Location           *string  `json:"location"`
	EarliestChargeDate *string  `json:"earliest_charge_date"`
	GoodMotions        []string `json:"good_motions"`
	HasRepresentation  bool     `json:"has_evidence_of_representation"`
	TopChargeName      *string  `json:"top_charge_name"`
	TopChargeLevel     *string  `json:"top_charge_level"`
	DismissedCount     *int     `json:"dismissed_charges_count"`
	ParsedAt           string   `json:"parsed_at"`
	Fingerprint        string   `json:"content_hash"`
	DocID              string   `json:"doc_id"`
	CauseNumberHash    string   `json:"cause_number_hash"`
	Version            int      `json:"version"`
}

const caseRowColumns = `
	cm.id, cm.jurisdiction, cm.cause_number, cm.case_name, cm.case_type,
	cm.date_filed, cm.location, cm.earliest_charge_date, cm.good_motions,
	cm.has_evidence_of_representation, cm.top_charge_name, cm.top_charge_level,
	cm.dismissed_charges_count,
	pm.parsed_at, pm.content_hash, pm.doc_id, pm.cause_number_hash, pm.version`

// GetLatestCase returns the highest version persisted for a cause number.
func GetLatestCase(ctx context.Context, database *sql.DB, causeNumber string) (*CaseRow, error) {
	row := database.QueryRowContext(ctx, `
		SELECT `+caseRowColumns+`
		FROM case_metadata cm
		JOIN parse_metadata pm ON pm.case_id = cm.id
		WHERE cm.cause_number = ?
		ORDER BY pm.version DESC
		LIMIT 1`,
		causeNumber,
	)
	c, err := scanCaseRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(causeNumber)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListVersions returns every persisted version for a cause number, oldest
// first.
func ListVersions(ctx context.Context, database *sql.DB, causeNumber string) ([]*CaseRow, error) {
	rows, err := database.QueryContext(ctx, `
		SELECT `+caseRowColumns+`
		FROM case_metadata cm
		JOIN parse_metadata pm ON pm.case_id = cm.id
		WHERE cm.cause_number = ?
		ORDER BY pm.version ASC`,
		causeNumber,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []*CaseRow
	for rows.Next() {
		c, err := scanCaseRow(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(out) == 0 {
		return nil, errors.NewNotFound(causeNumber)
	}
	return out, nil
}

// StoreStats summarizes the persisted dataset.
type StoreStats struct {
	CaseVersions int `json:"case_versions"`
	Cases        int `json:"cases"`
	Charges      int `json:"charges"`
	Dispositions int `json:"dispositions"`
	Events       int `json:"events"`
}

// Stats counts persisted rows across the main tables.
func Stats(ctx context.Context, database *sql.DB) (*StoreStats, error) {
	stats := &StoreStats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM case_metadata", &stats.CaseVersions},
		{"SELECT COUNT(DISTINCT cause_number) FROM case_metadata WHERE cause_number IS NOT NULL", &stats.Cases},
		{"SELECT COUNT(*) FROM charges", &stats.Charges},
		{"SELECT COUNT(*) FROM dispositions", &stats.Dispositions},
		{"SELECT COUNT(*) FROM events", &stats.Events},
	}
	for _, q := range queries {
		if err := database.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	return stats, nil
}

// CountCaseVersions returns the number of persisted case_metadata rows.
func CountCaseVersions(ctx context.Context, database *sql.DB) (int, error) {
	var count int
	err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM case_metadata").Scan(&count)
	return count, err
}

// scanner abstracts sql.Row / sql.Rows for shared scan code.
type scanner interface {
	Scan(dest ...any) error
}

func scanCaseRow(s scanner) (*CaseRow, error) {
	var c CaseRow
	var causeNumber, caseName, caseType, dateFiled, location sql.NullString
	var earliest, motionsJSON, topName, topLevel sql.NullString
	var dismissed sql.NullInt64

	err := s.Scan(
		&c.ID, &c.Jurisdiction, &causeNumber, &caseName, &caseType,
		&dateFiled, &location, &earliest, &motionsJSON,
		&c.HasRepresentation, &topName, &topLevel, &dismissed,
		&c.ParsedAt, &c.Fingerprint, &c.DocID, &c.CauseNumberHash, &c.Version,
	)
	if err != nil {
		return nil, err
	}

	c.CauseNumber = fromNullString(causeNumber)
	c.CaseName = fromNullString(caseName)
	c.CaseType = fromNullString(caseType)
	c.DateFiled = fromNullString(dateFiled)
	c.Location = fromNullString(location)
	c.EarliestChargeDate = fromNullString(earliest)
	c.TopChargeName = fromNullString(topName)
	c.TopChargeLevel = fromNullString(topLevel)
	if dismissed.Valid {
		v := int(dismissed.Int64)
		c.DismissedCount = &v
	}
	if motionsJSON.Valid {
		if err := json.Unmarshal([]byte(motionsJSON.String), &c.GoodMotions); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
