// ABOUTME: ReferenceMap maps section numbers to canonical encyclopedia URLs
// ABOUTME: Built once per corpus; immutable during reference resolution

package corpus

import "fmt"

// ReferenceMap is a lookup from a section number to its resolvable
// encyclopedia locator.
type ReferenceMap map[string]string

// SectionURL returns the canonical locator for a section within a
// chapter, e.g. "/encyclopedia/cop/8#section-8.5.4".
func SectionURL(chapterNumber int, sectionNumber string) string {
	return fmt.Sprintf("/encyclopedia/cop/%d#section-%s", chapterNumber, sectionNumber)
}

// ChapterURL returns the canonical locator for a whole chapter.
func ChapterURL(chapterNumber int) string {
	return fmt.Sprintf("/encyclopedia/cop/%d", chapterNumber)
}

// BuildReferenceMap walks every chapter, adding a chapter-level entry
// ("8" -> chapter URL) plus one entry per section and subsection.
func BuildReferenceMap(chapters []*Chapter) ReferenceMap {
	m := make(ReferenceMap)
	for _, ch := range chapters {
		m[fmt.Sprintf("%d", ch.ChapterNumber)] = ChapterURL(ch.ChapterNumber)
		ch.WalkSections(func(s *Section) {
			m[s.Number] = SectionURL(ch.ChapterNumber, s.Number)
		})
	}
	return m
}
