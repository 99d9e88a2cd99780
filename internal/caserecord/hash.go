package caserecord

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Digest returns the fixed-width hex digest of s. xxh64 is fast and
// deterministic; it is used for joinability and de-duplication, not
// security, and collisions are not defended against at this cardinality.
func Digest(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// Fingerprint computes the content fingerprint over a document body that has
// already had volatile sections stripped.
func Fingerprint(body string) string {
	return Digest(body)
}

// HashCauseNumber returns the anonymized cause number digest, or "" when the
// cause number is missing. A missing field never fails the document.
func HashCauseNumber(causeNumber *string) string {
	if causeNumber == nil || *causeNumber == "" {
		return ""
	}
	return Digest(*causeNumber)
}

// HashAttorney derives a stable attorney identity from name and phone so
// downstream analytics can join on counsel without storing contact data in
// cleartext. Returns "" when the name is missing.
func HashAttorney(name, phone *string) string {
	if name == nil || *name == "" {
		return ""
	}
	p := ""
	if phone != nil {
		p = *phone
	}
	return Digest(*name + ":" + p)
}
