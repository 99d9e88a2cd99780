package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/opendefense/casepipe/internal/config"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/casepipe.db.
// The baseDir parameter allows tests to use t.TempDir().
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	// Pragmas in the connection string apply to every pooled connection.
	dbPath := filepath.Join(baseDir, "casepipe.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(database); err != nil {
		database.Close()
		return nil, err
	}

	if err := migrate(database); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// ConfigurePool applies connection pool settings from config.
// Within one jurisdiction batch processing is sequential; setting
// DBMaxOpenConns to 1 additionally serializes any concurrent readers.
func ConfigurePool(database *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(database *sql.DB) error {
	version, err := GetUserVersion(database)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: initial schema. Tables mirror the entity graph:
	// one case_metadata row per persisted version, children keyed by case_id
	// (or disposition_id for details).
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS case_metadata (
		  id                             INTEGER PRIMARY KEY AUTOINCREMENT,
		  jurisdiction                   TEXT NOT NULL,
		  cause_number                   TEXT,
		  case_name                      TEXT,
		  case_type                      TEXT,
		  date_filed                     TEXT,
		  location                       TEXT,
		  earliest_charge_date           TEXT,
		  good_motions                   TEXT,
		  has_evidence_of_representation INTEGER NOT NULL DEFAULT 0,
		  top_charge_name                TEXT,
		  top_charge_level               TEXT,
		  dismissed_charges_count        INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_case_metadata_cause
		ON case_metadata(cause_number);

		CREATE TABLE IF NOT EXISTS parse_metadata (
		  id                INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id           INTEGER NOT NULL UNIQUE REFERENCES case_metadata(id) ON DELETE CASCADE,
		  parsed_at         TEXT NOT NULL,
		  content_hash      TEXT NOT NULL UNIQUE,
		  doc_id            TEXT NOT NULL,
		  cause_number_hash TEXT,
		  version           INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_parse_metadata_doc
		ON parse_metadata(doc_id);

		CREATE TABLE IF NOT EXISTS defendants (
		  id            INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id       INTEGER NOT NULL UNIQUE REFERENCES case_metadata(id) ON DELETE CASCADE,
		  name          TEXT,
		  sex           TEXT,
		  race          TEXT,
		  date_of_birth TEXT,
		  height        TEXT,
		  weight        TEXT,
		  address       TEXT,
		  sid           TEXT
		);

		CREATE TABLE IF NOT EXISTS defense_attorneys (
		  id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id            INTEGER NOT NULL REFERENCES case_metadata(id) ON DELETE CASCADE,
		  name               TEXT,
		  phone              TEXT,
		  appointed_retained TEXT,
		  attorney_hash      TEXT
		);

		CREATE TABLE IF NOT EXISTS state_information (
		  id                         INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id                    INTEGER NOT NULL UNIQUE REFERENCES case_metadata(id) ON DELETE CASCADE,
		  prosecuting_attorney       TEXT,
		  prosecuting_attorney_phone TEXT
		);

		CREATE TABLE IF NOT EXISTS charges (
		  id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id               INTEGER NOT NULL REFERENCES case_metadata(id) ON DELETE CASCADE,
		  sequence              INTEGER NOT NULL,
		  original_charge       TEXT NOT NULL,
		  statute               TEXT,
		  level                 TEXT,
		  charge_date           TEXT,
		  is_primary_charge     INTEGER NOT NULL DEFAULT 0,
		  charge_name           TEXT,
		  uccs_code             TEXT,
		  charge_desc           TEXT,
		  offense_category_desc TEXT,
		  offense_type_desc     TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_charges_case ON charges(case_id);

		CREATE TABLE IF NOT EXISTS dispositions (
		  id                INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id           INTEGER NOT NULL REFERENCES case_metadata(id) ON DELETE CASCADE,
		  date              TEXT,
		  event             TEXT NOT NULL,
		  judicial_officer  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_dispositions_case ON dispositions(case_id);

		CREATE TABLE IF NOT EXISTS disposition_details (
		  id              INTEGER PRIMARY KEY AUTOINCREMENT,
		  disposition_id  INTEGER NOT NULL REFERENCES dispositions(id) ON DELETE CASCADE,
		  charge          TEXT,
		  outcome         TEXT,
		  additional_info TEXT
		);

		CREATE TABLE IF NOT EXISTS events (
		  id       INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id  INTEGER NOT NULL REFERENCES case_metadata(id) ON DELETE CASCADE,
		  date     TEXT,
		  event    TEXT,
		  details  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_events_case ON events(case_id);

		CREATE TABLE IF NOT EXISTS related_cases (
		  id           INTEGER PRIMARY KEY AUTOINCREMENT,
		  case_id      INTEGER NOT NULL REFERENCES case_metadata(id) ON DELETE CASCADE,
		  related_case TEXT
		);
		`
		if _, err := database.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(database, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(database *sql.DB) error {
	var journalMode string
	if err := database.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion reads the schema version from the database.
func GetUserVersion(database *sql.DB) (int, error) {
	var version int
	if err := database.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion updates the schema version.
func SetUserVersion(database *sql.DB, version int) error {
	if _, err := database.Exec(fmt.Sprintf("PRAGMA user_version = %d;", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
