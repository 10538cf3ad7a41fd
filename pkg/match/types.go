// ABOUTME: Types for cross-catalog link suggestion
// ABOUTME: Confidence tiers order and filter matcher output

package match

import (
	"encoding/json"
	"fmt"
)

// Confidence is the strength tier of a suggestion. Higher values are
// stronger matches; the zero value means "no match".
type Confidence int

const (
	ConfidenceNone Confidence = iota
	// ConfidenceRelated covers name-based and loose code-family matches.
	ConfidenceRelated
	// ConfidencePartial covers strong same-family code similarity.
	ConfidencePartial
	// ConfidenceExact means the normalized codes are identical.
	ConfidenceExact
)

// String returns the wire name of the tier.
func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidencePartial:
		return "partial"
	case ConfidenceRelated:
		return "related"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// MarshalJSON encodes the tier as its wire name.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// ParseConfidence maps a wire name back to a tier. Unknown names
// report false.
func ParseConfidence(s string) (Confidence, bool) {
	switch s {
	case "exact":
		return ConfidenceExact, true
	case "partial":
		return ConfidencePartial, true
	case "related":
		return ConfidenceRelated, true
	default:
		return ConfidenceNone, false
	}
}

// Record is one catalog entry considered for linking. HasMedia flags
// auxiliary media (a 3D model) on the record.
type Record struct {
	ID       string
	Code     string
	Name     string
	HasMedia bool
}

// Pair identifies an existing primary/secondary link used to exclude
// already-linked records from suggestion output.
type Pair struct {
	PrimaryID   string
	SecondaryID string
}

// PairSet is the caller-supplied exclusion set.
type PairSet map[Pair]bool

// Suggestion is one proposed link between a primary and a secondary
// catalog record.
type Suggestion struct {
	PrimaryID         string     `json:"primaryDetailId"`
	PrimaryCode       string     `json:"primaryCode"`
	PrimaryName       string     `json:"primaryName"`
	SecondaryID       string     `json:"secondaryDetailId"`
	SecondaryCode     string     `json:"secondaryCode"`
	SecondaryName     string     `json:"secondaryName"`
	SecondaryHasMedia bool       `json:"secondaryHasMedia"`
	Confidence        Confidence `json:"confidence"`
	Score             float64    `json:"score"`
	Reason            string     `json:"matchReason"`
}
