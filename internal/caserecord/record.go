package caserecord

import "time"

// CaseRecord is the normalized entity graph produced from one raw court
// document. One logical case may have multiple CaseRecord versions over
// time, linked by an identical cause number; each version is uniquely
// identified by its content fingerprint (see ParseMetadata).
type CaseRecord struct {
	// ID is the generated case_metadata row id, 0 until persisted.
	ID int64 `json:"id,omitempty"`

	// Jurisdiction is the registry key the document was extracted under.
	Jurisdiction string `json:"jurisdiction"`

	// CauseNumber is the court's raw case identifier (nullable: header
	// extraction may fail without aborting the document).
	CauseNumber *string `json:"cause_number"`

	// Case details group.
	CaseName  *string `json:"case_name"`
	CaseType  *string `json:"case_type"`
	DateFiled *string `json:"date_filed"`
	Location  *string `json:"location"`

	// Derived summary fields, back-filled once charges and dispositions
	// are known.
	EarliestChargeDate *time.Time `json:"earliest_charge_date"`
	GoodMotions        []string   `json:"good_motions"`
	HasRepresentation  bool       `json:"has_evidence_of_representation"`
	TopChargeName      *string    `json:"top_charge_name"`
	TopChargeLevel     *string    `json:"top_charge_level"`
	DismissedCount     *int       `json:"dismissed_charges_count"`

	Parse ParseMetadata `json:"parse_metadata"`

	Defendant       *Defendant        `json:"defendant"`
	DefenseAttorney *DefenseAttorney  `json:"defense_attorney"`
	State           *StateInformation `json:"state_information"`

	Charges      []Charge      `json:"charges"`
	Dispositions []Disposition `json:"dispositions"`
	Events       []Event       `json:"events"`
	RelatedCases []string      `json:"related_cases,omitempty"`
}

// ParseMetadata records how and when a CaseRecord version was produced.
// Owned 1:1 by the version.
type ParseMetadata struct {
	// ParsedAt is the parse timestamp.
	ParsedAt time.Time `json:"parsed_at"`

	// Fingerprint is the content hash of the document body with volatile
	// sections (the running-balance table) removed. No two persisted
	// versions may share a fingerprint.
	Fingerprint string `json:"content_hash"`

	// DocID is the stable per-case source document identifier (the input
	// file name stem).
	DocID string `json:"doc_id"`

	// CauseNumberHash is the anonymized cause number used for export
	// correlation.
	CauseNumberHash string `json:"cause_number_hash"`

	// Version is a monotonically increasing integer per cause number,
	// starting at 1. Gaps are possible; only monotonicity is guaranteed.
	Version int `json:"version"`
}

// Defendant holds the party-block attributes for the accused.
type Defendant struct {
	Name        *string `json:"name"`
	Sex         *string `json:"sex"`
	Race        *string `json:"race"`
	DateOfBirth *string `json:"date_of_birth"`
	Height      *string `json:"height"`
	Weight      *string `json:"weight"`
	Address     *string `json:"address"`
	SID         *string `json:"sid"`
}

// DefenseAttorney holds counsel attributes plus the derived identity hash.
type DefenseAttorney struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	AppointedRetained *string `json:"appointed_retained"`

	// Hash is the anonymized attorney identity (name:phone digest), stable
	// and joinable across runs. Empty when the name is missing.
	Hash string `json:"attorney_hash"`
}

// StateInformation holds the prosecution attributes.
type StateInformation struct {
	ProsecutingAttorney      *string `json:"prosecuting_attorney"`
	ProsecutingAttorneyPhone *string `json:"prosecuting_attorney_phone"`
}

// Charge is one row of the charge table, in source-document order.
// Taxonomy-derived fields are nil when no taxonomy match was found; a
// charge is never dropped for lack of a match.
type Charge struct {
	// Sequence is the 0-based position in the source document.
	Sequence int `json:"charge_id"`

	OriginalCharge string  `json:"original_charge"`
	Statute        *string `json:"statute"`
	Level          *string `json:"charge_level"`

	// Date is nil when the source date failed to parse; such charges are
	// excluded from the earliest-date computation but retained.
	Date *time.Time `json:"charge_date"`

	// IsPrimary is true for the charge at position 0.
	IsPrimary bool `json:"is_primary_charge"`

	// Taxonomy enrichment.
	Name            *string `json:"charge_name"`
	UCCSCode        *string `json:"uccs_code"`
	Description     *string `json:"charge_desc"`
	OffenseCategory *string `json:"offense_category_desc"`
	OffenseType     *string `json:"offense_type_desc"`
}

// Disposition is a case outcome event with charge-level details.
type Disposition struct {
	Date  *time.Time `json:"date"`
	Event string     `json:"event"`

	// JudicialOfficer comes from the "(Judicial Officer: ...)" parenthetical
	// when present; empty otherwise.
	JudicialOfficer string `json:"judicial_officer"`

	Details []DispositionDetail `json:"details"`
}

// DispositionDetail is one charge outcome within a disposition.
type DispositionDetail struct {
	Charge  string `json:"charge"`
	Outcome string `json:"outcome"`

	// AdditionalInfo carries trailing row cells past the outcome column.
	AdditionalInfo []string `json:"additional_info,omitempty"`
}

// Event is a non-disposition hearing or order row.
type Event struct {
	Date    *time.Time `json:"date"`
	Event   string     `json:"event"`
	Details string     `json:"details"`
}
