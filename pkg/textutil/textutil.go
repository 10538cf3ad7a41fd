// ABOUTME: Shared text and code normalization for the discovery engine
// ABOUTME: Case folding, catalog prefix stripping, stop words, numeric ordering

package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Catalog-specific code prefixes stripped during normalization.
var codePrefixes = []string{"RANZ-", "MRM-"}

var stopWordRe = regexp.MustCompile(`\b(the|a|an|of|to|and|for|with|in|on)\b`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeCode upper-cases a detail code, strips any known catalog
// prefix and trims surrounding whitespace.
func NormalizeCode(code string) string {
	c := strings.ToUpper(code)
	for _, prefix := range codePrefixes {
		c = strings.TrimPrefix(c, prefix)
	}
	return strings.TrimSpace(c)
}

// FamilyPrefix returns the leading run of letters of a normalized code,
// e.g. "RANZ-V20" -> "V". Empty when the code starts with a digit.
func FamilyPrefix(code string) string {
	norm := NormalizeCode(code)
	for i := 0; i < len(norm); i++ {
		if norm[i] < 'A' || norm[i] > 'Z' {
			return norm[:i]
		}
	}
	return norm
}

// StripStopWords lower-cases a name and removes common filler words so
// that name similarity compares content-bearing tokens only.
func StripStopWords(name string) string {
	return strings.TrimSpace(stopWordRe.ReplaceAllString(strings.ToLower(name), ""))
}

// CollapseWhitespace folds runs of whitespace (including newlines) into
// single spaces.
func CollapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, " ")
}

// CompareSectionNumbers orders dotted section numbers numerically per
// component, so "8.9" sorts before "8.10". A trailing capital letter
// orders after the bare number ("1.5" < "1.5A" < "1.6").
func CompareSectionNumbers(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		an, asuf := splitNumericPart(as[i])
		bn, bsuf := splitNumericPart(bs[i])

		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
		if asuf != bsuf {
			return strings.Compare(asuf, bsuf)
		}
	}

	return len(as) - len(bs)
}

// splitNumericPart splits a component like "5A" into its numeric value
// and suffix. Components without leading digits compare as -1 so they
// sort ahead of numbered siblings.
func splitNumericPart(part string) (int, string) {
	i := 0
	for i < len(part) && part[i] >= '0' && part[i] <= '9' {
		i++
	}
	if i == 0 {
		return -1, part
	}
	n, err := strconv.Atoi(part[:i])
	if err != nil {
		return -1, part
	}
	return n, part[i:]
}
