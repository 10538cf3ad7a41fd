// ABOUTME: Ranked full-text queries over the flattened COP index
// ABOUTME: Section-number hits dominate, then title words, then content

package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/roofpedia/copengine/pkg/textutil"
)

// DefaultLimit is the result cap applied when the caller passes none.
const DefaultLimit = 10

// MinQueryLength is the shortest query that is searched at all.
// Shorter queries return an empty result set, not an error.
const MinQueryLength = 2

const snippetHalf = 60
const snippetMax = 2 * snippetHalf

// Result is the public, truncated view of a scored index entry. Raw
// content never leaves the index beyond the snippet window.
type Result struct {
	SectionNumber string `json:"sectionNumber"`
	Title         string `json:"title"`
	ChapterNumber int    `json:"chapterNumber"`
	ChapterTitle  string `json:"chapterTitle"`
	Level         int    `json:"level"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
}

type scoredEntry struct {
	entry Entry
	score int
}

// Search scores every index entry against the query and returns up to
// limit results, best first. A non-nil error means the index could not
// be built; an empty slice with a nil error means nothing matched.
func (ix *Index) Search(query string, limit int) ([]Result, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < MinQueryLength {
		return []Result{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	entries, err := ix.Entries()
	if err != nil {
		return nil, err
	}

	lowerQuery := strings.ToLower(trimmed)
	wordRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(lowerQuery) + `\b`)

	var scored []scoredEntry
	for _, entry := range entries {
		score := scoreEntry(entry, lowerQuery, wordRe)
		if score > 0 {
			scored = append(scored, scoredEntry{entry: entry, score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return textutil.CompareSectionNumbers(scored[i].entry.SectionNumber, scored[j].entry.SectionNumber) < 0
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]Result, 0, len(scored))
	for _, s := range scored {
		results = append(results, Result{
			SectionNumber: s.entry.SectionNumber,
			Title:         s.entry.Title,
			ChapterNumber: s.entry.ChapterNumber,
			ChapterTitle:  s.entry.ChapterTitle,
			Level:         s.entry.Level,
			URL:           s.entry.URL,
			Snippet:       makeSnippet(s.entry.Content, query),
		})
	}
	return results, nil
}

// scoreEntry applies the ranking rules. Section number hits are
// terminal: an exact match scores 100 and a prefix match 50, with no
// further title or content scoring for that entry.
func scoreEntry(entry Entry, lowerQuery string, wordRe *regexp.Regexp) int {
	lowerNumber := strings.ToLower(entry.SectionNumber)
	if lowerNumber == lowerQuery {
		return 100
	}
	if strings.HasPrefix(lowerNumber, lowerQuery) {
		return 50
	}

	score := 0
	lowerTitle := strings.ToLower(entry.Title)

	if n := len(wordRe.FindAllString(lowerTitle, -1)); n > 0 {
		score += n * 10
	} else if strings.Contains(lowerTitle, lowerQuery) {
		score += 5
	}

	if n := strings.Count(strings.ToLower(entry.Content), lowerQuery); n > 0 {
		if n > 5 {
			n = 5
		}
		score += n
	}

	return score
}

// makeSnippet extracts a ~120 character window around the first
// occurrence of query in content, collapsing internal whitespace and
// marking clipped edges with "...". Without a match it falls back to
// the start of the content.
func makeSnippet(content, query string) string {
	if content == "" {
		return ""
	}

	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx < 0 {
		if len(content) > snippetMax {
			return strings.TrimSpace(content[:snippetMax]) + "..."
		}
		return strings.TrimSpace(content)
	}

	start := idx - snippetHalf
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + snippetHalf
	if end > len(content) {
		end = len(content)
	}

	snippet := textutil.CollapseWhitespace(strings.TrimSpace(content[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}
