// ABOUTME: Flat search index over the COP chapter hierarchy
// ABOUTME: Built once per process under a single-flight guard, rebuilt on demand

package search

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/roofpedia/copengine/pkg/corpus"
)

// ErrCorpusUnavailable wraps a corpus load failure during index build.
// Callers use it to tell "index unavailable" apart from "query matched
// nothing", which is an empty result set with a nil error.
var ErrCorpusUnavailable = errors.New("search: corpus unavailable")

// Entry is the denormalized projection of one section used for scoring.
// Entries keep the full content; only snippets leave the package.
type Entry struct {
	SectionNumber string
	Title         string
	Content       string
	ChapterNumber int
	ChapterTitle  string
	Level         int
	URL           string
}

// LoadFunc supplies the corpus for an index build. It is called at most
// once per successful build; a failed load is retried on the next query.
type LoadFunc func() ([]*corpus.Chapter, error)

// Index owns the flattened corpus projection. The first query builds
// the entries under a mutex so concurrent first callers never observe a
// partial build; after that, reads go through an atomic snapshot and
// take no locks. Invalidate drops the snapshot so the next query
// rebuilds from a fresh corpus load.
type Index struct {
	load LoadFunc

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	entries []Entry
}

// NewIndex creates an index over the given corpus source. No build
// happens until the first query.
func NewIndex(load LoadFunc) *Index {
	return &Index{load: load}
}

// Entries returns the built index entries, building them on first use.
func (ix *Index) Entries() ([]Entry, error) {
	if s := ix.snap.Load(); s != nil {
		return s.entries, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Another caller may have finished the build while we waited.
	if s := ix.snap.Load(); s != nil {
		return s.entries, nil
	}

	chapters, err := ix.load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}

	entries := flatten(chapters)
	ix.snap.Store(&snapshot{entries: entries})
	return entries, nil
}

// Invalidate discards the built entries. The next query triggers a
// fresh corpus load and rebuild.
func (ix *Index) Invalidate() {
	ix.snap.Store(nil)
}

// Len reports the number of built entries, or 0 when the index has not
// been built yet.
func (ix *Index) Len() int {
	if s := ix.snap.Load(); s != nil {
		return len(s.entries)
	}
	return 0
}

// flatten walks every chapter depth first in document order, appending
// one entry per section and subsection regardless of depth.
func flatten(chapters []*corpus.Chapter) []Entry {
	var entries []Entry
	for _, ch := range chapters {
		ch.WalkSections(func(s *corpus.Section) {
			entries = append(entries, Entry{
				SectionNumber: s.Number,
				Title:         s.Title,
				Content:       s.Content,
				ChapterNumber: ch.ChapterNumber,
				ChapterTitle:  ch.Title,
				Level:         s.Level,
				URL:           corpus.SectionURL(ch.ChapterNumber, s.Number),
			})
		})
	}
	return entries
}
