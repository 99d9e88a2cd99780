package extract

import (
	"go.uber.org/zap"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/errors"
)

// Input is one raw document handed to an extractor.
type Input struct {
	// DocID is the stable per-case source document identifier (file name stem).
	DocID string

	// HTML is the raw document body as fetched by the crawler.
	HTML []byte
}

// RawCharge is one charge-table 4-tuple before date parsing and taxonomy
// enrichment. All fields are verbatim source text.
type RawCharge struct {
	Charges string `json:"charges"`
	Statute string `json:"statute"`
	Level   string `json:"level"`
	Date    string `json:"date"`
}

// RawDisposition is a disposition row before date parsing.
type RawDisposition struct {
	Date            string                         `json:"date"`
	Event           string                         `json:"event"`
	JudicialOfficer string                         `json:"judicial_officer"`
	Details         []caserecord.DispositionDetail `json:"details"`
}

// RawCase is the raw field set extracted from one document. Field groups are
// extracted independently; a malformed group leaves its fields nil/empty and
// must not block the others.
type RawCase struct {
	CauseNumber *string `json:"cause_number"`

	CaseName  *string `json:"case_name"`
	CaseType  *string `json:"case_type"`
	DateFiled *string `json:"date_filed"`
	Location  *string `json:"location"`

	Defendant       *caserecord.Defendant        `json:"defendant"`
	DefenseAttorney *caserecord.DefenseAttorney  `json:"defense_attorney"`
	State           *caserecord.StateInformation `json:"state_information"`

	Charges      []RawCharge      `json:"charges"`
	Dispositions []RawDisposition `json:"dispositions"`

	// EventRows holds the non-disposition hearing/event rows, reversed into
	// chronological order as discovered in the source layout.
	EventRows [][]string `json:"event_rows"`

	RelatedCases []string `json:"related_cases"`

	// Body is the serialized document body with volatile sections (the
	// running-balance table) removed. Fingerprints are computed over it.
	Body string `json:"-"`
}

// Extractor turns one raw document into a raw field set. Extraction is a
// pure transform apart from logging.
type Extractor interface {
	Extract(logger *zap.Logger, in Input) (*RawCase, error)
}

// Registry maps jurisdiction keys to extractors.
type Registry map[string]Extractor

// DefaultRegistry returns the registry of supported jurisdictions.
func DefaultRegistry() Registry {
	return Registry{
		"hays": &HaysExtractor{},
	}
}

// Lookup resolves the extractor for a jurisdiction key. Unknown keys are
// rejected here rather than failing deep in the pipeline.
func (r Registry) Lookup(jurisdiction string) (Extractor, error) {
	ex, ok := r[jurisdiction]
	if !ok {
		return nil, errors.NewUnsupportedJurisdiction(jurisdiction)
	}
	return ex, nil
}

// Jurisdictions lists the registered jurisdiction keys.
func (r Registry) Jurisdictions() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}
