// ABOUTME: Suggests links between the primary and secondary detail catalogs
// ABOUTME: Tiered matching cascade over codes and names, first hit wins

package match

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roofpedia/copengine/pkg/textutil"
)

// Cascade thresholds.
const (
	partialCodeThreshold = 0.7
	relatedNameThreshold = 0.6
	relatedCodeThreshold = 0.5
)

// Suggest compares every primary/secondary record pair and returns
// confidence-tiered link suggestions, strongest first. Pairs in the
// exclusion set are never suggested, and tiers below minConfidence are
// excluded entirely. Empty catalogs yield an empty list.
func Suggest(primary, secondary []Record, existing PairSet, minConfidence Confidence) []Suggestion {
	suggestions := []Suggestion{}

	for _, p := range primary {
		for _, s := range secondary {
			if existing[Pair{PrimaryID: p.ID, SecondaryID: s.ID}] {
				continue
			}

			confidence, score, reason := classify(p, s)
			if confidence == ConfidenceNone || confidence < minConfidence {
				continue
			}

			suggestions = append(suggestions, Suggestion{
				PrimaryID:         p.ID,
				PrimaryCode:       p.Code,
				PrimaryName:       p.Name,
				SecondaryID:       s.ID,
				SecondaryCode:     s.Code,
				SecondaryName:     s.Name,
				SecondaryHasMedia: s.HasMedia,
				Confidence:        confidence,
				Score:             math.Round(score*100) / 100,
				Reason:            reason,
			})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].Score > suggestions[j].Score
	})

	return suggestions
}

// classify runs the matching cascade for one record pair. Evaluation
// order matters: the first strategy that fires decides the tier.
func classify(p, s Record) (Confidence, float64, string) {
	normPrimary := textutil.NormalizeCode(p.Code)
	normSecondary := textutil.NormalizeCode(s.Code)

	if normPrimary == normSecondary {
		return ConfidenceExact, 1.0, "exact code match"
	}

	primaryFamily := textutil.FamilyPrefix(p.Code)
	secondaryFamily := textutil.FamilyPrefix(s.Code)
	codeScore := Similarity(strings.ToLower(normPrimary), strings.ToLower(normSecondary))

	if primaryFamily == secondaryFamily && codeScore >= partialCodeThreshold {
		return ConfidencePartial, codeScore, fmt.Sprintf("code similarity (%s family)", primaryFamily)
	}

	nameScore := Similarity(textutil.StripStopWords(p.Name), textutil.StripStopWords(s.Name))
	if nameScore >= relatedNameThreshold {
		return ConfidenceRelated, nameScore, "name similarity"
	}

	if primaryFamily == secondaryFamily && codeScore >= relatedCodeThreshold {
		return ConfidenceRelated, codeScore, fmt.Sprintf("%s family code similarity", primaryFamily)
	}

	return ConfidenceNone, 0, ""
}

// Summary counts suggestions per tier for reporting alongside results.
type Summary struct {
	Exact   int `json:"exact"`
	Partial int `json:"partial"`
	Related int `json:"related"`
	Total   int `json:"total"`
}

// Summarize tallies suggestions by confidence tier.
func Summarize(suggestions []Suggestion) Summary {
	var sum Summary
	for _, s := range suggestions {
		switch s.Confidence {
		case ConfidenceExact:
			sum.Exact++
		case ConfidencePartial:
			sum.Partial++
		case ConfidenceRelated:
			sum.Related++
		}
	}
	sum.Total = len(suggestions)
	return sum
}
