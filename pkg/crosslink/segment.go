// ABOUTME: Segment types produced by reference resolution
// ABOUTME: Concatenating segment contents reproduces the input exactly

package crosslink

import "fmt"

// SegmentKind discriminates text from link segments.
type SegmentKind int

const (
	KindText SegmentKind = iota
	KindLink
)

// String returns the wire name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its wire name.
func (k SegmentKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Segment is one piece of resolved content. Text segments carry only
// Content; link segments additionally carry the resolved locator and
// the section number they target.
type Segment struct {
	Kind          SegmentKind `json:"type"`
	Content       string      `json:"content"`
	Href          string      `json:"href,omitempty"`
	SectionNumber string      `json:"sectionNumber,omitempty"`
}
