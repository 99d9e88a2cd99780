package taxonomy

import (
	"encoding/json"
	"os"

	"github.com/opendefense/casepipe/internal/errors"
)

// Entry is one row of the charge taxonomy reference dataset, keyed by the
// literal charge name as it appears in source documents.
type Entry struct {
	ChargeName          string `json:"charge_name"`
	UCCSCode            string `json:"uccs_code"`
	ChargeDesc          string `json:"charge_desc"`
	OffenseCategoryDesc string `json:"offense_category_desc"`
	OffenseTypeDesc     string `json:"offense_type_desc"`
}

// Map indexes taxonomy entries by charge name.
type Map map[string]Entry

// Lookup returns the entry for the literal charge text, if any.
func (m Map) Lookup(chargeName string) (Entry, bool) {
	e, ok := m[chargeName]
	return e, ok
}

// Load reads the taxonomy reference file. A missing, empty, or malformed
// file is a fatal configuration error for the run, not a per-document error.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfiguration("taxonomy file unreadable", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewConfiguration("taxonomy file malformed", err)
	}
	if len(entries) == 0 {
		return nil, errors.NewConfiguration("taxonomy file is empty", nil)
	}

	m := make(Map, len(entries))
	for _, e := range entries {
		if e.ChargeName == "" {
			return nil, errors.NewConfiguration("taxonomy entry missing charge_name", nil)
		}
		m[e.ChargeName] = e
	}
	return m, nil
}

// DefaultMotions is the built-in evidentiary-motions list, used when no
// motions file is configured. Order is preserved in detection output.
var DefaultMotions = []string{
	"Motion To Suppress",
	"Motion to Reduce Bond",
	"Motion to Reduce Bond Hearing",
	"Motion for Production",
	"Motion For Speedy Trial",
	"Motion for Discovery",
	"Motion In Limine",
}

// LoadMotions reads an ordered phrase list from path, or returns the default
// list when path is empty.
func LoadMotions(path string) ([]string, error) {
	if path == "" {
		out := make([]string, len(DefaultMotions))
		copy(out, DefaultMotions)
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfiguration("motions file unreadable", err)
	}

	var motions []string
	if err := json.Unmarshal(data, &motions); err != nil {
		return nil, errors.NewConfiguration("motions file malformed", err)
	}
	if len(motions) == 0 {
		return nil, errors.NewConfiguration("motions file is empty", nil)
	}
	return motions, nil
}
