// ABOUTME: Tests for ranked search over the flattened COP index
// ABOUTME: Verifies scoring precedence, tie-breaks, snippets and limits

package search

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/roofpedia/copengine/pkg/corpus"
)

func testChapters() []*corpus.Chapter {
	return []*corpus.Chapter{
		{
			ChapterNumber: 8,
			Title:         "External Moisture",
			Version:       "v25.12",
			Sections: []corpus.Section{
				{
					Number:  "8.5",
					Title:   "Roof Drainage",
					Level:   2,
					Content: "Drainage design must account for catchment area and rainfall intensity.",
					Subsections: []corpus.Section{
						{
							Number:  "8.5.4",
							Title:   "Gutters",
							Level:   3,
							Content: "Gutter capacity must match the catchment area it serves. Internal gutters require overflow provision.",
						},
					},
				},
				{
					Number:  "8.9",
					Title:   "Flashings",
					Level:   2,
					Content: "Apron flashings protect junctions.",
				},
				{
					Number:  "8.10",
					Title:   "Flashings",
					Level:   2,
					Content: "Parapet flashings cap walls.",
				},
			},
		},
		{
			ChapterNumber: 4,
			Title:         "Durability",
			Version:       "v25.12",
			Sections: []corpus.Section{
				{
					Number:  "4.2",
					Title:   "Material Selection",
					Level:   2,
					Content: "Select materials for the corrosion zone. Drainage paths affect durability.",
				},
			},
		},
	}
}

func staticLoad(chapters []*corpus.Chapter) LoadFunc {
	return func() ([]*corpus.Chapter, error) {
		return chapters, nil
	}
}

func TestExactSectionNumberRanksFirst(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	results, err := ix.Search("8.5", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	if results[0].SectionNumber != "8.5" {
		t.Errorf("first result = %q, want 8.5", results[0].SectionNumber)
	}
	// The prefix match on 8.5.4 should trail the exact match.
	if len(results) < 2 || results[1].SectionNumber != "8.5.4" {
		t.Errorf("second result should be the 8.5.4 prefix match, got %+v", results)
	}
}

func TestNumericTieBreak(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	results, err := ix.Search("flashings", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].SectionNumber != "8.9" || results[1].SectionNumber != "8.10" {
		t.Errorf("tie-break order = [%s %s], want [8.9 8.10]",
			results[0].SectionNumber, results[1].SectionNumber)
	}
}

func TestTitleWordBeatsContentMatch(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	// "drainage" is a title word of 8.5 and only a content word of 4.2.
	results, err := ix.Search("drainage", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("got %d results, want at least 2", len(results))
	}
	if results[0].SectionNumber != "8.5" {
		t.Errorf("first result = %q, want 8.5", results[0].SectionNumber)
	}
}

func TestShortQueryReturnsEmpty(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	for _, q := range []string{"", "a", " a ", "  "} {
		results, err := ix.Search(q, 0)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %d results, want 0", q, len(results))
		}
	}
}

func TestNoMatchesIsNotAnError(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	results, err := ix.Search("zzzqqqxxx", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSnippetContainsQuery(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	results, err := ix.Search("catchment", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	for _, r := range results {
		if !strings.Contains(strings.ToLower(r.Snippet), "catchment") {
			t.Errorf("snippet %q does not contain query", r.Snippet)
		}
	}
}

func TestSnippetWindowClipsLongContent(t *testing.T) {
	long := strings.Repeat("filler words before the match point here. ", 10) +
		"UNIQUETOKEN sits in the middle. " +
		strings.Repeat("and plenty of filler afterwards too. ", 10)

	chapters := []*corpus.Chapter{{
		ChapterNumber: 1,
		Title:         "Test",
		Sections: []corpus.Section{
			{Number: "1.1", Title: "Long", Level: 2, Content: long},
		},
	}}
	ix := NewIndex(staticLoad(chapters))

	results, err := ix.Search("UNIQUETOKEN", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	snippet := results[0].Snippet
	if !strings.HasPrefix(snippet, "...") || !strings.HasSuffix(snippet, "...") {
		t.Errorf("clipped snippet should have ellipses on both ends: %q", snippet)
	}
	if !strings.Contains(snippet, "UNIQUETOKEN") {
		t.Errorf("snippet lost the match: %q", snippet)
	}
	if strings.Contains(snippet, "\n") {
		t.Errorf("snippet contains raw newline: %q", snippet)
	}
}

func TestSnippetFallsBackToContentStart(t *testing.T) {
	chapters := []*corpus.Chapter{{
		ChapterNumber: 1,
		Title:         "Test",
		Sections: []corpus.Section{
			{Number: "1.2", Title: "Underlay Overview", Level: 2, Content: "Short content without the word."},
		},
	}}
	ix := NewIndex(staticLoad(chapters))

	// Matches on title only; content has no occurrence.
	results, err := ix.Search("underlay", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Snippet != "Short content without the word." {
		t.Errorf("snippet = %q, want full short content", results[0].Snippet)
	}
}

func TestLimitTruncatesResults(t *testing.T) {
	var sections []corpus.Section
	for i := 1; i <= 15; i++ {
		sections = append(sections, corpus.Section{
			Number:  "1." + strconv.Itoa(i),
			Title:   "Ridge Detail",
			Level:   2,
			Content: "ridge fixing requirements",
		})
	}
	chapters := []*corpus.Chapter{{ChapterNumber: 1, Title: "Test", Sections: sections}}
	ix := NewIndex(staticLoad(chapters))

	results, err := ix.Search("ridge", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != DefaultLimit {
		t.Errorf("default limit: got %d results, want %d", len(results), DefaultLimit)
	}

	results, err = ix.Search("ridge", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("explicit limit: got %d results, want 3", len(results))
	}
}

func TestBuildFailureIsDistinctAndRetried(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	loadErr := errors.New("disk gone")

	ix := NewIndex(func() ([]*corpus.Chapter, error) {
		if fail.Load() {
			return nil, loadErr
		}
		return testChapters(), nil
	})

	_, err := ix.Search("drainage", 0)
	if err == nil {
		t.Fatal("expected build error")
	}
	if !errors.Is(err, ErrCorpusUnavailable) {
		t.Errorf("error %v does not wrap ErrCorpusUnavailable", err)
	}

	// A failed build must not be cached.
	fail.Store(false)
	results, err := ix.Search("drainage", 0)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if len(results) == 0 {
		t.Error("retry returned no results")
	}
}

func TestBuildRunsOnceUnderConcurrency(t *testing.T) {
	var loads atomic.Int32
	ix := NewIndex(func() ([]*corpus.Chapter, error) {
		loads.Add(1)
		return testChapters(), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ix.Search("drainage", 0); err != nil {
				t.Errorf("concurrent search failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("corpus loaded %d times, want 1", loads.Load())
	}
}

func TestInvalidateForcesRebuild(t *testing.T) {
	var loads atomic.Int32
	ix := NewIndex(func() ([]*corpus.Chapter, error) {
		loads.Add(1)
		return testChapters(), nil
	})

	if _, err := ix.Search("drainage", 0); err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	if _, err := ix.Search("drainage", 0); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if loads.Load() != 1 {
		t.Fatalf("corpus loaded %d times before invalidate, want 1", loads.Load())
	}

	ix.Invalidate()
	if _, err := ix.Search("drainage", 0); err != nil {
		t.Fatalf("search after invalidate failed: %v", err)
	}
	if loads.Load() != 2 {
		t.Errorf("corpus loaded %d times after invalidate, want 2", loads.Load())
	}
}

func TestIndexFlattensAllDepths(t *testing.T) {
	ix := NewIndex(staticLoad(testChapters()))

	entries, err := ix.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	// 8.5, 8.5.4, 8.9, 8.10, 4.2
	if len(entries) != 5 {
		t.Errorf("got %d entries, want 5", len(entries))
	}

	found := false
	for _, e := range entries {
		if e.SectionNumber == "8.5.4" {
			found = true
			if e.ChapterNumber != 8 || e.ChapterTitle != "External Moisture" {
				t.Errorf("subsection entry missing chapter context: %+v", e)
			}
			if e.URL != "/encyclopedia/cop/8#section-8.5.4" {
				t.Errorf("entry URL = %q", e.URL)
			}
		}
	}
	if !found {
		t.Error("subsection 8.5.4 not flattened into index")
	}
}
