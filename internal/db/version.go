package db

import (
	"context"
	"database/sql"
)

// VersionOutcome classifies an incoming record against persisted history.
type VersionOutcome int

const (
	// OutcomeDuplicate means an identical content fingerprint is already
	// persisted: skip entirely, no write.
	OutcomeDuplicate VersionOutcome = iota

	// OutcomeNew means no persisted record shares the cause number: version 1.
	OutcomeNew

	// OutcomeNewVersion means the cause number exists with a different
	// fingerprint: version = max existing + 1.
	OutcomeNewVersion
)

// String returns the outcome label used in logs and run reports.
func (o VersionOutcome) String() string {
	switch o {
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeNew:
		return "new"
	case OutcomeNewVersion:
		return "new_version"
	}
	return "unknown"
}

// VersionDecision is the versioning engine's verdict for one document.
type VersionDecision struct {
	Outcome VersionOutcome
	Version int // 0 for duplicates
}

// ClassifyVersion decides whether an incoming record is a duplicate, a new
// case, or a new version of an existing case. Historical versions may have
// gaps, so the next version is always max+1 over whatever exists, never a
// contiguity assumption. A nil cause number cannot be linked to history and
// is treated as a new case.
//
// The read-then-insert is only race-free for sequential writers within a
// jurisdiction; see PersistCase for the fingerprint uniqueness backstop.
func ClassifyVersion(ctx context.Context, database *sql.DB, fingerprint string, causeNumber *string) (VersionDecision, error) {
	exists, err := FingerprintExists(ctx, database, fingerprint)
	if err != nil {
		return VersionDecision{}, err
	}
	if exists {
		return VersionDecision{Outcome: OutcomeDuplicate}, nil
	}

	if causeNumber == nil || *causeNumber == "" {
		return VersionDecision{Outcome: OutcomeNew, Version: 1}, nil
	}

	maxVersion, err := MaxVersion(ctx, database, *causeNumber)
	if err != nil {
		return VersionDecision{}, err
	}
	if maxVersion == 0 {
		return VersionDecision{Outcome: OutcomeNew, Version: 1}, nil
	}
	return VersionDecision{Outcome: OutcomeNewVersion, Version: maxVersion + 1}, nil
}

// FingerprintExists reports whether a persisted version already carries the
// content fingerprint.
func FingerprintExists(ctx context.Context, database *sql.DB, fingerprint string) (bool, error) {
	var exists bool
	err := database.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM parse_metadata WHERE content_hash = ?)",
		fingerprint,
	).Scan(&exists)
	return exists, err
}

// MaxVersion returns the highest persisted version for a cause number, or 0
// when the cause number is unknown.
func MaxVersion(ctx context.Context, database *sql.DB, causeNumber string) (int, error) {
	var maxVersion int
	err := database.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(pm.version), 0)
		FROM parse_metadata pm
		JOIN case_metadata cm ON cm.id = pm.case_id
		WHERE cm.cause_number = ?`,
		causeNumber,
	).Scan(&maxVersion)
	return maxVersion, err
}
