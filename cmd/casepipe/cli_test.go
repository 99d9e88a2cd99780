package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/config"
	"github.com/opendefense/casepipe/internal/db"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database, tmpDir
}

func seedCase(t *testing.T, database *sql.DB, causeNumber, fingerprint string, version int) {
	t.Helper()
	rec := &caserecord.CaseRecord{
		Jurisdiction: "hays",
		CauseNumber:  &causeNumber,
		Parse: caserecord.ParseMetadata{
			ParsedAt:        time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC),
			Fingerprint:     fingerprint,
			DocID:           causeNumber,
			CauseNumberHash: caserecord.HashCauseNumber(&causeNumber),
			Version:         version,
		},
	}
	if _, err := db.PersistCase(context.Background(), database, rec); err != nil {
		t.Fatalf("seed case: %v", err)
	}
}

// captureStdout runs fn with stdout redirected to a buffer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return buf.String()
}

func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"casepipe"}, false},
		{[]string{"casepipe", "ingest"}, true},
		{[]string{"casepipe", "stats"}, true},
		{[]string{"casepipe", "--help"}, true},
		{[]string{"casepipe", "-v"}, true},
		{[]string{"casepipe", "bogus"}, false},
	}
	for _, tt := range tests {
		os.Args = tt.args
		if got := isCLIMode(); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestBaseDir_EnvOverride(t *testing.T) {
	t.Setenv("CASEPIPE_HOME", "/tmp/casepipe-test-home")
	dir, err := baseDir()
	if err != nil {
		t.Fatalf("baseDir failed: %v", err)
	}
	if dir != "/tmp/casepipe-test-home" {
		t.Errorf("baseDir = %q, want the env override", dir)
	}
}

func TestCLI_Stats(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	seedCase(t, database, "CR-16-0002-A", "abcd000000000001", 1)
	app := newCLIApp(database, config.DefaultConfig(tmpDir), zap.NewNop())

	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run([]string{"casepipe", "stats"})
	})
	if runErr != nil {
		t.Fatalf("stats failed: %v", runErr)
	}
	if !strings.Contains(out, `"case_versions": 1`) {
		t.Errorf("output = %s", out)
	}
}

func TestCLI_CaseAndVersions(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	seedCase(t, database, "CR-16-0002-A", "abcd000000000002", 1)
	seedCase(t, database, "CR-16-0002-A", "abcd000000000003", 2)
	app := newCLIApp(database, config.DefaultConfig(tmpDir), zap.NewNop())

	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run([]string{"casepipe", "case", "CR-16-0002-A"})
	})
	if runErr != nil {
		t.Fatalf("case failed: %v", runErr)
	}
	if !strings.Contains(out, `"version": 2`) {
		t.Errorf("case output should be the latest version, got %s", out)
	}

	out = captureStdout(t, func() {
		runErr = app.Run([]string{"casepipe", "versions", "CR-16-0002-A"})
	})
	if runErr != nil {
		t.Fatalf("versions failed: %v", runErr)
	}
	if !strings.Contains(out, `"version": 1`) || !strings.Contains(out, `"version": 2`) {
		t.Errorf("versions output = %s", out)
	}
}

func TestCLI_CaseNotFound(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	app := newCLIApp(database, config.DefaultConfig(tmpDir), zap.NewNop())

	err := app.Run([]string{"casepipe", "case", "CR-99-9999-Z"})
	if err == nil {
		t.Fatal("expected error for unknown cause number")
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("error = %v, want NOT_FOUND code", err)
	}
}

func TestCLI_CaseMissingArg(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	app := newCLIApp(database, config.DefaultConfig(tmpDir), zap.NewNop())

	err := app.Run([]string{"casepipe", "case"})
	if err == nil || !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("error = %v, want INVALID_REQUEST code", err)
	}
}

func TestCLI_Ingest(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := config.DefaultConfig(tmpDir)

	if err := os.MkdirAll(filepath.Dir(cfg.TaxonomyPath), 0o755); err != nil {
		t.Fatal(err)
	}
	taxonomy := `[{"charge_name": "POSS CS PG 3 < 28G", "uccs_code": "3560"}]`
	if err := os.WriteFile(cfg.TaxonomyPath, []byte(taxonomy), 0o644); err != nil {
		t.Fatal(err)
	}

	inputDir := filepath.Join(cfg.JurisdictionDir("hays"), "case_html")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := `<html><body>
<div class="ssCaseDetailCaseNbr"><span>CR-16-0002-A</span></div>
<table>
  <tr><td>Case Name:</td><td><b>The State of Texas vs. DOE, JOHN</b></td></tr>
  <tr><td>Case Type:</td><td><b>Adult Misdemeanor</b></td></tr>
  <tr><td>Date Filed:</td><td><b>01/20/2016</b></td></tr>
  <tr><td>Location:</td><td><b>County Court at Law 1</b></td></tr>
</table>
</body></html>`
	if err := os.WriteFile(filepath.Join(inputDir, "CR-16-0002-A.html"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newCLIApp(database, cfg, zap.NewNop())
	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run([]string{"casepipe", "ingest", "-j", "hays"})
	})
	if runErr != nil {
		t.Fatalf("ingest failed: %v", runErr)
	}
	if !strings.Contains(out, `"new_cases": 1`) {
		t.Errorf("ingest output = %s", out)
	}

	row, err := db.GetLatestCase(context.Background(), database, "CR-16-0002-A")
	if err != nil {
		t.Fatalf("GetLatestCase failed: %v", err)
	}
	if row.Version != 1 {
		t.Errorf("Version = %d, want 1", row.Version)
	}
}

func TestCLI_IngestUnknownJurisdiction(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	app := newCLIApp(database, config.DefaultConfig(tmpDir), zap.NewNop())

	err := app.Run([]string{"casepipe", "ingest", "-j", "travis"})
	if err == nil || !strings.Contains(err.Error(), "UNSUPPORTED_JURISDICTION") {
		t.Errorf("error = %v, want UNSUPPORTED_JURISDICTION code", err)
	}
}
