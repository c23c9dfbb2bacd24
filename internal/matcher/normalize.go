package matcher

import (
	"strings"
	"unicode"
)

// legalEntityMarkers are removed before any other normalization
var legalEntityMarkers = []string{"株式会社", "（株）", "(株)"}

// strippedRunes are mid-dot punctuation and hyphen variants
const strippedRunes = "・．.ー－-"

// confusionPair is two glyphs OCR engines are known to misread for one another
type confusionPair struct {
	a, b string
}

// ocrConfusions is applied in both directions when generating readings
var ocrConfusions = []confusionPair{
	{"0", "O"},
	{"1", "I"},
	{"1", "l"},
	{"I", "l"},
	{"5", "S"},
	{"8", "B"},
	{"6", "G"},
	{"ロ", "口"},
	{"ー", "一"},
	{"二", "ニ"},
	{"工", "エ"},
}

// Normalize reduces a store-name token to its canonical comparable form:
// ASCII uppercased, whitespace, mid-dots, hyphens and legal-entity markers removed.
func Normalize(s string) string {
	for _, marker := range legalEntityMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune(strippedRunes, r) {
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Readings returns the plausible normalized readings of s. The canonical
// form comes first, followed by one alternate per confusion-pair direction
// that applies to s, in table order. Empty and duplicate readings are dropped.
func Readings(s string) []string {
	seen := make(map[string]struct{})
	var readings []string
	add := func(reading string) {
		if reading == "" {
			return
		}
		if _, ok := seen[reading]; ok {
			return
		}
		seen[reading] = struct{}{}
		readings = append(readings, reading)
	}

	add(Normalize(s))
	for _, pair := range ocrConfusions {
		if strings.Contains(s, pair.a) {
			add(Normalize(strings.ReplaceAll(s, pair.a, pair.b)))
		}
		if strings.Contains(s, pair.b) {
			add(Normalize(strings.ReplaceAll(s, pair.b, pair.a)))
		}
	}
	return readings
}
