package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opendefense/casepipe/internal/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad_HappyPath(t *testing.T) {
	path := writeFile(t, `[
		{"charge_name": "POSS CS PG 3 < 28G", "uccs_code": "3560",
		 "charge_desc": "Controlled substance possession",
		 "offense_category_desc": "Drug offenses", "offense_type_desc": "Possession"},
		{"charge_name": "ASSAULT CAUSES BODILY INJURY", "uccs_code": "1310"}
	]`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("len(m) = %d, want 2", len(m))
	}
	entry, ok := m.Lookup("POSS CS PG 3 < 28G")
	if !ok {
		t.Fatal("expected entry for POSS CS PG 3 < 28G")
	}
	if entry.UCCSCode != "3560" {
		t.Errorf("UCCSCode = %q, want %q", entry.UCCSCode, "3560")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("expected CONFIGURATION error, got %v", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, `{"not": "a list"}`))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("expected CONFIGURATION error, got %v", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(writeFile(t, `[]`))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("expected CONFIGURATION error, got %v", err)
	}
}

func TestLoad_MissingChargeName(t *testing.T) {
	_, err := Load(writeFile(t, `[{"uccs_code": "3560"}]`))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("expected CONFIGURATION error, got %v", err)
	}
}

func TestLoadMotions_Default(t *testing.T) {
	motions, err := LoadMotions("")
	if err != nil {
		t.Fatalf("LoadMotions failed: %v", err)
	}
	if len(motions) != len(DefaultMotions) {
		t.Fatalf("len = %d, want %d", len(motions), len(DefaultMotions))
	}
	// Callers may mutate the returned slice.
	motions[0] = "changed"
	if DefaultMotions[0] == "changed" {
		t.Error("default list should not alias the returned slice")
	}
}

func TestLoadMotions_File(t *testing.T) {
	path := writeFile(t, `["Motion for Discovery", "Motion In Limine"]`)
	motions, err := LoadMotions(path)
	if err != nil {
		t.Fatalf("LoadMotions failed: %v", err)
	}
	if len(motions) != 2 || motions[0] != "Motion for Discovery" {
		t.Errorf("motions = %v", motions)
	}
}

func TestLoadMotions_Empty(t *testing.T) {
	_, err := LoadMotions(writeFile(t, `[]`))
	if !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("expected CONFIGURATION error, got %v", err)
	}
}
