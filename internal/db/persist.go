package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/errors"
)

// dateLayout is the storage format for date columns.
const dateLayout = "2006-01-02"

// PersistCase writes the full entity graph for one CaseRecord version inside
// a single transaction. Child rows are written only after the parent case
// row's generated id is known; disposition details likewise wait for their
// disposition's id. The derived summary fields (motions, top charge,
// dismissed count) are back-filled on the case row at the end of the same
// transaction. Any failure rolls the whole document back.
func PersistCase(ctx context.Context, database *sql.DB, rec *caserecord.CaseRecord) (int64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewPersistence(rec.Parse.DocID, err)
	}
	defer tx.Rollback()

	caseID, err := insertGraph(ctx, tx, rec)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Backstop for concurrent writers: the fingerprint column is
			// UNIQUE, so a racing insert surfaces as a duplicate, not as a
			// second version with the same content.
			return 0, errors.NewDuplicateContent(rec.Parse.Fingerprint)
		}
		return 0, errors.NewPersistence(rec.Parse.DocID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewPersistence(rec.Parse.DocID, err)
	}

	rec.ID = caseID
	return caseID, nil
}

func insertGraph(ctx context.Context, tx *sql.Tx, rec *caserecord.CaseRecord) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO case_metadata (
			jurisdiction, cause_number, case_name, case_type, date_filed, location,
			earliest_charge_date
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Jurisdiction, toNullString(rec.CauseNumber),
		toNullString(rec.CaseName), toNullString(rec.CaseType),
		toNullString(rec.DateFiled), toNullString(rec.Location),
		toNullDate(rec.EarliestChargeDate),
	)
	if err != nil {
		return 0, err
	}
	caseID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO parse_metadata (case_id, parsed_at, content_hash, doc_id, cause_number_hash, version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		caseID, rec.Parse.ParsedAt.Format(dateLayout), rec.Parse.Fingerprint,
		rec.Parse.DocID, rec.Parse.CauseNumberHash, rec.Parse.Version,
	)
	if err != nil {
		return 0, err
	}

	if d := rec.Defendant; d != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO defendants (case_id, name, sex, race, date_of_birth, height, weight, address, sid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			caseID, toNullString(d.Name), toNullString(d.Sex), toNullString(d.Race),
			toNullString(d.DateOfBirth), toNullString(d.Height), toNullString(d.Weight),
			toNullString(d.Address), toNullString(d.SID),
		)
		if err != nil {
			return 0, err
		}
	}

	if a := rec.DefenseAttorney; a != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO defense_attorneys (case_id, name, phone, appointed_retained, attorney_hash)
			VALUES (?, ?, ?, ?, ?)`,
			caseID, toNullString(a.Name), toNullString(a.Phone),
			toNullString(a.AppointedRetained), a.Hash,
		)
		if err != nil {
			return 0, err
		}
	}

	if s := rec.State; s != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO state_information (case_id, prosecuting_attorney, prosecuting_attorney_phone)
			VALUES (?, ?, ?)`,
			caseID, toNullString(s.ProsecutingAttorney), toNullString(s.ProsecutingAttorneyPhone),
		)
		if err != nil {
			return 0, err
		}
	}

	for _, c := range rec.Charges {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO charges (
				case_id, sequence, original_charge, statute, level, charge_date,
				is_primary_charge, charge_name, uccs_code, charge_desc,
				offense_category_desc, offense_type_desc
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			caseID, c.Sequence, c.OriginalCharge, toNullString(c.Statute),
			toNullString(c.Level), toNullDate(c.Date), c.IsPrimary,
			toNullString(c.Name), toNullString(c.UCCSCode), toNullString(c.Description),
			toNullString(c.OffenseCategory), toNullString(c.OffenseType),
		)
		if err != nil {
			return 0, err
		}
	}

	for _, d := range rec.Dispositions {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO dispositions (case_id, date, event, judicial_officer)
			VALUES (?, ?, ?, ?)`,
			caseID, toNullDate(d.Date), d.Event, d.JudicialOfficer,
		)
		if err != nil {
			return 0, err
		}
		dispositionID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for _, detail := range d.Details {
			var additional sql.NullString
			if len(detail.AdditionalInfo) > 0 {
				data, err := json.Marshal(detail.AdditionalInfo)
				if err != nil {
					return 0, err
				}
				additional = sql.NullString{String: string(data), Valid: true}
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO disposition_details (disposition_id, charge, outcome, additional_info)
				VALUES (?, ?, ?, ?)`,
				dispositionID, detail.Charge, detail.Outcome, additional,
			)
			if err != nil {
				return 0, err
			}
		}
	}

	for _, e := range rec.Events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (case_id, date, event, details)
			VALUES (?, ?, ?, ?)`,
			caseID, toNullDate(e.Date), e.Event, e.Details,
		)
		if err != nil {
			return 0, err
		}
	}

	for _, related := range rec.RelatedCases {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO related_cases (case_id, related_case) VALUES (?, ?)`,
			caseID, related,
		)
		if err != nil {
			return 0, err
		}
	}

	// Back-fill derived summary fields now that dispositions and events are
	// written.
	var motionsJSON sql.NullString
	if len(rec.GoodMotions) > 0 {
		data, err := json.Marshal(rec.GoodMotions)
		if err != nil {
			return 0, err
		}
		motionsJSON = sql.NullString{String: string(data), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE case_metadata
		SET good_motions = ?, has_evidence_of_representation = ?,
			top_charge_name = ?, top_charge_level = ?, dismissed_charges_count = ?
		WHERE id = ?`,
		motionsJSON, rec.HasRepresentation,
		toNullString(rec.TopChargeName), toNullString(rec.TopChargeLevel),
		toNullInt(rec.DismissedCount), caseID,
	)
	if err != nil {
		return 0, err
	}

	return caseID, nil
}

// isUniqueConstraintError checks for a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func toNullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}
