// ABOUTME: Tests for the bigram Dice similarity measure
// ABOUTME: Verifies identity, boundedness, symmetry and disjointness

package match

import "testing"

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "V20", "apron flashing"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	if got := Similarity("abcd", "wxyz"); got != 0.0 {
		t.Errorf("disjoint strings scored %v, want 0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"night", "nacht"},
		{"V20", "V21"},
		{"apron flashing", "apron flashings"},
		{"a", "ab"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q)=%v but reversed=%v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Similarity(%q, %q)=%v out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestSimilarityKnownValue(t *testing.T) {
	// night/nacht share only the "ht" bigram: 2*1/(4+4) = 0.25
	if got := Similarity("night", "nacht"); got != 0.25 {
		t.Errorf("Similarity(night, nacht) = %v, want 0.25", got)
	}
}

func TestSimilarityIgnoresWhitespace(t *testing.T) {
	if got := Similarity("apron flashing", "apronflashing"); got != 1.0 {
		t.Errorf("whitespace should be ignored, got %v", got)
	}
}

func TestSimilarityShortStrings(t *testing.T) {
	if got := Similarity("a", "b"); got != 0.0 {
		t.Errorf("single-char disjoint strings scored %v, want 0", got)
	}
	if got := Similarity("a", "ab"); got != 0.0 {
		t.Errorf("sub-bigram string scored %v, want 0", got)
	}
}
