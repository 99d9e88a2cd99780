package process

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/extract"
)

// Dispositions converts raw disposition rows, parsing dates. A date that
// fails to parse keeps the disposition with a nil date.
func Dispositions(raw []extract.RawDisposition, logger *zap.Logger) []caserecord.Disposition {
	out := make([]caserecord.Disposition, 0, len(raw))
	for _, rd := range raw {
		d := caserecord.Disposition{
			Event:           rd.Event,
			JudicialOfficer: rd.JudicialOfficer,
			Details:         rd.Details,
		}
		d.Date = parseSourceDate(rd.Date, rd.Event, logger)
		out = append(out, d)
	}
	return out
}

// Events converts raw event rows into typed events. Cell 0 is the date,
// cell 1 the event name, and any remaining cells are collapsed into details.
func Events(rows [][]string, logger *zap.Logger) []caserecord.Event {
	out := make([]caserecord.Event, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		e := caserecord.Event{Date: parseSourceDate(row[0], "", logger)}
		if len(row) > 1 {
			e.Event = row[1]
		}
		if len(row) > 2 {
			e.Details = strings.Join(row[2:], " ")
		}
		out = append(out, e)
	}
	return out
}

func parseSourceDate(s, label string, logger *zap.Logger) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(chargeDateLayout, s)
	if err != nil {
		logger.Warn("unparseable date",
			zap.String("date", s),
			zap.String("event", label))
		return nil
	}
	return &t
}
