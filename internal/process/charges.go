package process

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/extract"
	"github.com/opendefense/casepipe/internal/taxonomy"
)

// chargeDateLayout is the fixed source date format (MM/DD/YYYY).
const chargeDateLayout = "01/02/2006"

// Unranked is the severity rank for charge levels outside the fixed table.
const Unranked = math.MaxInt

// severityRanks orders charge-level labels from most to least severe.
// Matching is by substring against the level text, so decorated labels
// ("Felony, First Degree Felony - Enhanced") still rank.
var severityRanks = []struct {
	label string
	rank  int
}{
	{"First Degree Felony", 1},
	{"Second Degree Felony", 2},
	{"Third Degree Felony", 3},
	{"State Jail Felony", 4},
	{"Misdemeanor A", 5},
	{"Misdemeanor B", 6},
}

// Severity returns the rank of a charge-level label; lower is more severe.
// Nil or unrecognized levels rank Unranked.
func Severity(level *string) int {
	if level == nil {
		return Unranked
	}
	for _, s := range severityRanks {
		if strings.Contains(*level, s.label) {
			return s.rank
		}
	}
	return Unranked
}

// Charges enriches raw charge rows through the taxonomy and computes the
// earliest successfully parsed charge date. A charge is never dropped: a
// date that fails to parse keeps the charge with a nil date and is excluded
// from the earliest-date computation; a missing taxonomy key keeps the
// charge with nil enrichment fields. The charge at position 0 is primary.
func Charges(raw []extract.RawCharge, tax taxonomy.Map, logger *zap.Logger) ([]caserecord.Charge, *time.Time) {
	var earliest *time.Time
	charges := make([]caserecord.Charge, 0, len(raw))

	for i, rc := range raw {
		c := caserecord.Charge{
			Sequence:       i,
			OriginalCharge: rc.Charges,
			Statute:        optional(rc.Statute),
			Level:          optional(rc.Level),
			IsPrimary:      i == 0,
		}

		if rc.Date != "" {
			if t, err := time.Parse(chargeDateLayout, rc.Date); err == nil {
				c.Date = &t
				if earliest == nil || t.Before(*earliest) {
					earliest = &t
				}
			} else {
				logger.Warn("unparseable charge date",
					zap.String("charge", rc.Charges),
					zap.String("date", rc.Date))
			}
		}

		if entry, ok := tax.Lookup(rc.Charges); ok {
			c.Name = &entry.ChargeName
			c.UCCSCode = optional(entry.UCCSCode)
			c.Description = optional(entry.ChargeDesc)
			c.OffenseCategory = optional(entry.OffenseCategoryDesc)
			c.OffenseType = optional(entry.OffenseTypeDesc)
		} else {
			name := rc.Charges
			c.Name = &name
			logger.Warn("charge not found in taxonomy", zap.String("charge", rc.Charges))
		}

		charges = append(charges, c)
	}

	if earliest == nil && len(raw) > 0 {
		logger.Warn("no valid charge dates found")
	}
	return charges, earliest
}

// TopCharge is the disposition-detail charge with the lowest severity rank.
type TopCharge struct {
	Name  string
	Level *string
}

// FindTopCharge scans disposition details for the most severe charge.
// Severity comes from the charge table's level for the matching charge name;
// ties resolve to the first detail in document order. Returns nil when no
// detail exists.
func FindTopCharge(dispositions []caserecord.Disposition, charges []caserecord.Charge) *TopCharge {
	levels := make(map[string]*string, len(charges))
	for _, c := range charges {
		levels[c.OriginalCharge] = c.Level
	}

	var top *TopCharge
	minSeverity := Unranked
	for _, d := range dispositions {
		for _, detail := range d.Details {
			name := normalizeDetailCharge(detail.Charge)
			level := levels[name]
			if sev := Severity(level); sev < minSeverity {
				minSeverity = sev
				top = &TopCharge{Name: name, Level: level}
			} else if top == nil {
				top = &TopCharge{Name: name, Level: level}
			}
		}
	}
	return top
}

// normalizeDetailCharge strips the statute-threshold suffix (" >= ...") and
// the leading row index ("1. ") that disposition details prepend to the
// charge text.
func normalizeDetailCharge(charge string) string {
	name := charge
	if idx := strings.Index(name, " >="); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, "0123456789. ")
	return strings.TrimSpace(name)
}

// CountDismissed counts disposition details whose outcome equals
// "dismissed", case-insensitively, after trimming.
func CountDismissed(dispositions []caserecord.Disposition) int {
	count := 0
	for _, d := range dispositions {
		for _, detail := range d.Details {
			if strings.EqualFold(strings.TrimSpace(detail.Outcome), "dismissed") {
				count++
			}
		}
	}
	return count
}

// optional converts "" to a typed null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
