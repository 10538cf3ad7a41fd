// ABOUTME: Bigram Dice-coefficient string similarity
// ABOUTME: Symmetric, bounded [0,1], identical strings score 1.0

package match

import "strings"

// Similarity measures how alike two strings are using character
// bigrams. Whitespace is ignored entirely. Identical strings score
// 1.0, strings sharing no bigrams score 0, and the measure is
// commutative.
func Similarity(a, b string) float64 {
	a = stripWhitespace(a)
	b = stripWhitespace(b)

	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0.0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := string(rb[i : i+2])
		if bigrams[bg] > 0 {
			bigrams[bg]--
			intersection++
		}
	}

	return 2.0 * float64(intersection) / float64(len(ra)+len(rb)-2)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, s)
}
