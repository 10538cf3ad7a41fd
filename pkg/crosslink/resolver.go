// ABOUTME: Resolves implicit section references in plain COP text
// ABOUTME: Emits text/link segments with first-mention and per-paragraph budgets

package crosslink

import (
	"regexp"
	"strings"

	"github.com/roofpedia/copengine/pkg/corpus"
)

// MaxLinksPerParagraph caps how many links one paragraph may emit.
const MaxLinksPerParagraph = 5

// The reference surface patterns, tried in precedence order at each
// text position. The keyword-prefixed patterns deliberately carry no
// trailing boundary check; only the bare-number pattern requires
// whitespace on both sides. That asymmetry matches observed linking
// behavior and must not be tightened up.
var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Ss][Ee]{2}\s+(\d+(?:\.\d+)+[A-Z]?)`),
	regexp.MustCompile(`[Rr]efer\s+to\s+(?:[Ss]ection\s+)?(\d+(?:\.\d+)+[A-Z]?)`),
	regexp.MustCompile(`[Aa]s\s+(?:specified|described)\s+in\s+(\d+(?:\.\d+)+[A-Z]?)`),
	regexp.MustCompile(`[Ss]ection\s+(\d+(?:\.\d+)+[A-Z]?)`),
}

var barePattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)*[A-Z]?`)

// refMatch is one candidate reference occurrence inside a paragraph.
type refMatch struct {
	start, end int
	number     string
}

// Resolve transforms plain text into a sequence of text and link
// segments using the supplied reference map. The first-mention set
// spans all paragraphs of this single call. Unresolvable or
// over-budget references stay behind as plain text; the concatenation
// of all segment contents always equals the input.
func Resolve(text string, refs corpus.ReferenceMap) []Segment {
	if text == "" || len(refs) == 0 {
		return []Segment{{Kind: KindText, Content: text}}
	}

	paragraphs := strings.Split(text, "\n\n")
	linked := make(map[string]bool)

	var all []Segment
	for i, p := range paragraphs {
		if i > 0 {
			all = append(all, Segment{Kind: KindText, Content: "\n\n"})
		}
		all = append(all, resolveParagraph(p, refs, linked)...)
	}

	return mergeAdjacentText(all)
}

// resolveParagraph scans one paragraph left to right. A match becomes
// a link only if it resolves, has not been linked earlier in this call
// and the paragraph still has link budget; otherwise its text is left
// in place and scanning continues after it.
func resolveParagraph(text string, refs corpus.ReferenceMap, linked map[string]bool) []Segment {
	var segments []Segment
	linkCount := 0
	last := 0
	scan := 0

	for {
		m, ok := nextMatch(text, scan)
		if !ok {
			break
		}

		href, resolvable := refs[m.number]
		if resolvable && !linked[m.number] && linkCount < MaxLinksPerParagraph {
			if m.start > last {
				segments = append(segments, Segment{Kind: KindText, Content: text[last:m.start]})
			}
			segments = append(segments, Segment{
				Kind:          KindLink,
				Content:       text[m.start:m.end],
				Href:          href,
				SectionNumber: m.number,
			})
			linked[m.number] = true
			linkCount++
			last = m.end
		}

		scan = m.end
	}

	if last < len(text) {
		segments = append(segments, Segment{Kind: KindText, Content: text[last:]})
	}
	if len(segments) == 0 {
		segments = append(segments, Segment{Kind: KindText, Content: text})
	}

	return segments
}

// nextMatch finds the leftmost reference occurrence at or after from.
// Ties at the same position go to the earlier pattern.
func nextMatch(text string, from int) (refMatch, bool) {
	var best refMatch
	found := false

	for _, pat := range keywordPatterns {
		loc := pat.FindStringSubmatchIndex(text[from:])
		if loc == nil {
			continue
		}
		m := refMatch{
			start:  from + loc[0],
			end:    from + loc[1],
			number: text[from+loc[2] : from+loc[3]],
		}
		if !found || m.start < best.start {
			best = m
			found = true
		}
	}

	if m, ok := nextBareMatch(text, from); ok && (!found || m.start < best.start) {
		best = m
		found = true
	}

	return best, found
}

// nextBareMatch finds the next bare dotted number bounded by whitespace
// (or paragraph start) before it and a whitespace character after it.
// Candidates failing the boundary check are skipped, not shortened.
func nextBareMatch(text string, from int) (refMatch, bool) {
	off := from
	for off < len(text) {
		loc := barePattern.FindStringIndex(text[off:])
		if loc == nil {
			return refMatch{}, false
		}
		start := off + loc[0]
		end := off + loc[1]

		if (start == 0 || isSpace(text[start-1])) && end < len(text) && isSpace(text[end]) {
			return refMatch{start: start, end: end, number: text[start:end]}, true
		}

		off = start + 1
	}
	return refMatch{}, false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// mergeAdjacentText folds consecutive text segments into one.
func mergeAdjacentText(segments []Segment) []Segment {
	merged := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Kind == KindText && seg.Kind == KindText {
				last.Content += seg.Content
				continue
			}
		}
		merged = append(merged, seg)
	}
	return merged
}
