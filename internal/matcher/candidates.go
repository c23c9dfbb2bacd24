package matcher

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// StoreCandidate is an OCR line considered as a possible store name
type StoreCandidate struct {
	Text string
	// LineIndex is the zero-based line of the raw text the candidate starts on
	LineIndex int
}

var (
	datePattern     = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{4}年\d{1,2}月\d{1,2}日`)
	timePattern     = regexp.MustCompile(`\d{1,2}:\d{2}`)
	currencyPattern = regexp.MustCompile(`[¥￥]\s*[\d,]+|[\d,]+\s*円`)
	addressPattern  = regexp.MustCompile(`[都道府県市区町村]`)
	phonePattern    = regexp.MustCompile(`\d{2,4}-\d{2,4}-\d{4}`)
)

type textLine struct {
	text  string
	index int
}

// ExtractCandidates selects the store-name candidates from raw OCR text.
// Only the first MaxScanLines non-empty lines are considered since the store
// identity sits at the top of a receipt. Every kept line also contributes its
// concatenation with the next non-empty line, for names that wrap.
func ExtractCandidates(text string, opts Options) []StoreCandidate {
	lines := nonEmptyLines(text)

	scan := min(len(lines), opts.MaxScanLines)
	var candidates []StoreCandidate
	for i := 0; i < scan; i++ {
		line := lines[i]
		if !isCandidateLine(line.text, opts) {
			continue
		}
		candidates = append(candidates, StoreCandidate{Text: line.text, LineIndex: line.index})
		if i+1 < len(lines) {
			candidates = append(candidates, StoreCandidate{
				Text:      line.text + lines[i+1].text,
				LineIndex: line.index,
			})
		}
	}
	return candidates
}

func nonEmptyLines(text string) []textLine {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]textLine, 0, len(raw))
	for i, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, textLine{text: line, index: i})
	}
	return lines
}

// isCandidateLine rejects dates, times, amounts, addresses, phone numbers
// and lines of implausible length
func isCandidateLine(line string, opts Options) bool {
	length := utf8.RuneCountInString(line)
	if length < opts.MinLineLength || length > opts.MaxLineLength {
		return false
	}
	switch {
	case datePattern.MatchString(line),
		timePattern.MatchString(line),
		currencyPattern.MatchString(line),
		phonePattern.MatchString(line):
		return false
	case addressPattern.MatchString(line) && length > opts.AddressMinLength:
		return false
	}
	return true
}
