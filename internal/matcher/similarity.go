package matcher

import (
	"math"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
)

// Distance is the unit-cost Levenshtein distance between a and b in runes
func Distance(a, b string) int {
	return levenshtein.Distance(a, b)
}

// Similarity maps the edit distance onto [0,100]:
// round((1 - distance/maxLen) * 100). Equal strings score 100.
// Callers normalize both sides first.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return int(math.Round((1 - float64(Distance(a, b))/float64(maxLen)) * 100))
}
