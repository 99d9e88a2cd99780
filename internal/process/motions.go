package process

import (
	"strings"

	"github.com/opendefense/casepipe/internal/caserecord"
)

// FindGoodMotions reports every motion phrase that occurs, case-insensitively,
// anywhere within the event content. Output order follows the motions list.
// A non-empty result is the pipeline's evidence-of-representation signal.
func FindGoodMotions(events caserecord.EventText, motions []string) []string {
	var found []string
	for _, motion := range motions {
		if containsMotion(motion, events) {
			found = append(found, motion)
		}
	}
	return found
}

// containsMotion recurses through the event text structure looking for the
// motion as a substring of any leaf.
func containsMotion(motion string, event caserecord.EventText) bool {
	if event.IsLeaf() {
		return strings.Contains(strings.ToLower(event.Leaf()), strings.ToLower(motion))
	}
	for _, item := range event.Items() {
		if containsMotion(motion, item) {
			return true
		}
	}
	return false
}
