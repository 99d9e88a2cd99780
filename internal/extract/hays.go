package extract

import (
	"bytes"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/errors"
)

// dispositionLabels is the closed set of event labels that mark a row as a
// disposition rather than an ordinary hearing/event.
var dispositionLabels = map[string]bool{
	"Disposition":           true,
	"Disposition:":          true,
	"Amended Disposition":   true,
	"Deferred Adjudication": true,
	"Punishment Hearing":    true,
}

// judicialOfficerPrefix marks the parenthetical annotation carrying the
// officer name on disposition rows.
const judicialOfficerPrefix = "(Judicial Officer:"

// HaysExtractor extracts case records from Hays county Odyssey portal
// documents. Most fields are positional: fixed cell offsets within fixed
// rows of section tables. Every group is bounds-checked so a short or
// malformed table degrades to nil fields instead of failing the document.
type HaysExtractor struct{}

// Extract implements Extractor.
func (h *HaysExtractor) Extract(logger *zap.Logger, in Input) (*RawCase, error) {
	doc, err := html.Parse(bytes.NewReader(in.HTML))
	if err != nil {
		return nil, errors.NewExtraction(in.DocID, "document is not parseable HTML: "+err.Error())
	}
	body := findFirst(doc, "body")
	if body == nil {
		return nil, errors.NewExtraction(in.DocID, "document has no body")
	}

	raw := &RawCase{}
	raw.CauseNumber = h.causeNumber(doc, logger)

	// The balance table changes as costs are paid; strip it before
	// serializing so the fingerprint stays stable across payments.
	removeBalanceTable(body)
	raw.Body = renderNode(body)

	for _, table := range childTables(body) {
		text := nodeText(table)
		switch {
		case strings.Contains(text, "Case Type:") && strings.Contains(text, "Date Filed:"):
			h.caseDetails(table, raw, logger)
		case strings.Contains(text, "Related Case Information"):
			raw.RelatedCases = h.relatedCases(table)
		case strings.Contains(text, "Party Information"):
			h.partyInformation(table, raw, logger)
		case strings.Contains(text, "Charge Information"):
			raw.Charges = h.chargeInformation(table, logger)
		case strings.Contains(text, "Events & Orders of the Court"):
			h.eventsAndOrders(table, raw, logger)
		}
	}

	return raw, nil
}

// causeNumber reads the case number banner div. Header failure leaves the
// cause number nil; versioning then treats the record as a new case.
func (h *HaysExtractor) causeNumber(doc *html.Node, logger *zap.Logger) *string {
	banner := findByClass(doc, "div", "ssCaseDetailCaseNbr")
	if banner == nil {
		logger.Warn("case header group missing", zap.String("selector", "div.ssCaseDetailCaseNbr"))
		return nil
	}
	span := findFirst(banner, "span")
	if span == nil {
		logger.Warn("case header group malformed", zap.String("selector", "div.ssCaseDetailCaseNbr > span"))
		return nil
	}
	v := cleanCell(nodeText(span))
	if v == "" {
		return nil
	}
	return &v
}

// caseDetails reads the bolded name/type/date-filed/location cells.
func (h *HaysExtractor) caseDetails(table *html.Node, raw *RawCase, logger *zap.Logger) {
	var values []string
	for _, b := range findAll(table, "b") {
		values = append(values, cleanCell(nodeText(b)))
	}
	if len(values) < 4 {
		logger.Warn("case details group malformed", zap.Int("bold_cells", len(values)))
		return
	}
	raw.CaseName = &values[0]
	raw.CaseType = &values[1]
	raw.DateFiled = &values[2]
	raw.Location = &values[3]
}

// relatedCases collects every td cell as a free-text reference.
func (h *HaysExtractor) relatedCases(table *html.Node) []string {
	var out []string
	for _, td := range findAll(table, "td") {
		if v := cleanCell(nodeText(td)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// partyInformation extracts the defendant, defense attorney, and state
// sub-groups from the shared party table. Offsets follow the portal layout:
// defendant attributes live on row 1, address and SID on row 2, the
// prosecuting attorney on row 3.
func (h *HaysExtractor) partyInformation(table *html.Node, raw *RawCase, logger *zap.Logger) {
	rows := extractRows(table)
	if len(rows) < 2 {
		logger.Warn("party table malformed, defendant group skipped", zap.Int("rows", len(rows)))
		return
	}

	raw.Defendant = &caserecord.Defendant{
		Name:        at(rows, 1, 1),
		Sex:         fieldAt(rows, 1, 2, 0),
		Race:        fieldAt(rows, 1, 2, 1),
		DateOfBirth: at(rows, 1, 3),
		Height:      fieldAt(rows, 1, 4, 0),
		Weight:      fieldAt(rows, 1, 4, 1),
		Address:     joinCells(at(rows, 2, 0), at(rows, 2, 1)),
		SID:         at(rows, 2, 3),
	}

	raw.DefenseAttorney = &caserecord.DefenseAttorney{
		Name:              at(rows, 1, 5),
		AppointedRetained: at(rows, 1, 6),
		Phone:             at(rows, 1, 7),
	}

	raw.State = &caserecord.StateInformation{
		ProsecutingAttorney:      at(rows, 3, 2),
		ProsecutingAttorneyPhone: at(rows, 3, 3),
	}
}

// joinCells concatenates two optional cells with a space, nil when both are
// missing.
func joinCells(a, b *string) *string {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	}
	v := *a + " " + *b
	return &v
}

// chargeInformation scans the charge table's text cells in strides of five
// after the five header cells; each stride's payload is a (charges, statute,
// level, date) 4-tuple. Short tails produce partial charges, never a panic.
func (h *HaysExtractor) chargeInformation(table *html.Node, logger *zap.Logger) []RawCharge {
	cells := textCells(table)
	var charges []RawCharge
	for i := 5; i < len(cells); i += 5 {
		end := i + 5
		if end > len(cells) {
			end = len(cells)
		}
		payload := cells[i+1 : end]
		if len(payload) == 0 {
			continue
		}
		var c RawCharge
		fields := []*string{&c.Charges, &c.Statute, &c.Level, &c.Date}
		for j := 0; j < len(payload) && j < len(fields); j++ {
			*fields[j] = payload[j]
		}
		if len(payload) < 4 {
			logger.Warn("short charge row", zap.Int("cells", len(payload)), zap.String("charge", c.Charges))
		}
		charges = append(charges, c)
	}
	return charges
}

// eventsAndOrders splits the hearing table into disposition rows and
// ordinary event rows by label, then reverses both lists so output runs in
// chronological order as discovered in the source layout.
func (h *HaysExtractor) eventsAndOrders(table *html.Node, raw *RawCase, logger *zap.Logger) {
	rows := headerRows(table)

	var dispositionRows, eventRows [][]string
	for _, row := range rows {
		if len(row) >= 2 && dispositionLabels[row[1]] {
			dispositionRows = append(dispositionRows, row)
		} else {
			eventRows = append(eventRows, row)
		}
	}

	reverseRows(dispositionRows)
	reverseRows(eventRows)

	for _, row := range dispositionRows {
		if len(row) < 5 {
			logger.Warn("short disposition row skipped", zap.Strings("row", row))
			continue
		}
		d := RawDisposition{
			Date:  row[0],
			Event: row[1],
		}
		if len(row[2]) > len(judicialOfficerPrefix) && strings.HasPrefix(row[2], judicialOfficerPrefix) {
			d.JudicialOfficer = strings.TrimSpace(row[2][len(judicialOfficerPrefix) : len(row[2])-1])
		}
		detail := caserecord.DispositionDetail{
			Charge:  row[3],
			Outcome: row[4],
		}
		if len(row) > 5 {
			detail.AdditionalInfo = row[5:]
		}
		d.Details = append(d.Details, detail)
		raw.Dispositions = append(raw.Dispositions, d)
	}

	raw.EventRows = eventRows
}

func reverseRows(rows [][]string) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
