// ABOUTME: Loads authored chapter JSON files from a corpus directory
// ABOUTME: A load error is fatal for that attempt and surfaced to the caller

package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoChapters indicates the corpus directory holds no chapter files.
var ErrNoChapters = errors.New("corpus: no chapter files found")

// LoadDir reads every chapter-*.json file in dir, in chapter order.
// Any unreadable, malformed or invariant-violating chapter fails the
// whole load; partial corpora are never returned.
func LoadDir(dir string) ([]*Chapter, error) {
	pattern := filepath.Join(dir, "chapter-*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("corpus: bad corpus dir %q: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoChapters, dir)
	}

	chapters := make([]*Chapter, 0, len(paths))
	for _, path := range paths {
		ch, err := loadChapter(path)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}

	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].ChapterNumber < chapters[j].ChapterNumber
	})

	return chapters, nil
}

func loadChapter(path string) (*Chapter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}

	var ch Chapter
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}

	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("corpus: %s: %w", path, err)
	}

	return &ch, nil
}
