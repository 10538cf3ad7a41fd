// ABOUTME: Data model for the hierarchical Code of Practice corpus
// ABOUTME: Chapters hold ordered sections; sections nest recursively

package corpus

import (
	"fmt"
	"regexp"
	"strings"
)

// Chapter is one authored COP chapter file. Chapters are read-only at
// query time; the offline authoring pipeline is the only writer.
type Chapter struct {
	ChapterNumber int       `json:"chapterNumber"`
	Title         string    `json:"title"`
	Version       string    `json:"version"`
	SectionCount  int       `json:"sectionCount"`
	Sections      []Section `json:"sections"`
}

// Section is a numbered node in the chapter hierarchy. Number is a
// dotted identifier like "8.5.4", optionally suffixed with one capital
// letter to disambiguate siblings ("1.5A").
type Section struct {
	Number      string    `json:"number"`
	Title       string    `json:"title"`
	Level       int       `json:"level"`
	Content     string    `json:"content"`
	PDFPages    []int     `json:"pdfPages,omitempty"`
	Subsections []Section `json:"subsections,omitempty"`
}

var sectionNumberRe = regexp.MustCompile(`^\d+(\.\d+)*[A-Z]?$`)

// ValidSectionNumber reports whether s is a dotted-numeric section
// number with an optional single capital letter suffix.
func ValidSectionNumber(s string) bool {
	return sectionNumberRe.MatchString(s)
}

// Validate checks the chapter's section numbering invariants: every
// number well-formed, unique within the chapter, and a strict
// dot-extension of its parent's number.
func (c *Chapter) Validate() error {
	seen := make(map[string]bool)
	return validateSections(c.Sections, "", seen)
}

func validateSections(sections []Section, parent string, seen map[string]bool) error {
	for i := range sections {
		s := &sections[i]
		if !ValidSectionNumber(s.Number) {
			return fmt.Errorf("corpus: malformed section number %q", s.Number)
		}
		if seen[s.Number] {
			return fmt.Errorf("corpus: duplicate section number %q", s.Number)
		}
		seen[s.Number] = true

		if parent != "" && !strings.HasPrefix(s.Number, parent+".") {
			return fmt.Errorf("corpus: section %q does not extend parent %q", s.Number, parent)
		}

		if err := validateSections(s.Subsections, s.Number, seen); err != nil {
			return err
		}
	}
	return nil
}

// WalkSections visits every section and subsection of the chapter in
// document order, depth first.
func (c *Chapter) WalkSections(fn func(s *Section)) {
	walkSections(c.Sections, fn)
}

func walkSections(sections []Section, fn func(s *Section)) {
	for i := range sections {
		fn(&sections[i])
		walkSections(sections[i].Subsections, fn)
	}
}
