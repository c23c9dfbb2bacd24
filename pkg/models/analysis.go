package models

// Bounds is an axis-aligned box in pixel coordinates
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// QualityReport is the outcome of a full capture quality check.
// ReceiptBounds is set if and only if HasReceipt is true, and every score is
// within [0,100].
type QualityReport struct {
	IsBlurred     bool     `json:"isBlurred"`
	BlurScore     int      `json:"blurScore"`
	Brightness    int      `json:"brightness"`
	Contrast      int      `json:"contrast"`
	HasReceipt    bool     `json:"hasReceipt"`
	ReceiptBounds *Bounds  `json:"receiptBounds,omitempty"`
	OverallScore  int      `json:"overallScore"`
	Warnings      []string `json:"warnings"`
	IsGoodQuality bool     `json:"isGoodQuality"`
}

// QuickCheckResult is the lightweight preview-frame verdict
type QuickCheckResult struct {
	Score      int  `json:"score"`
	CanCapture bool `json:"canCapture"`
}

// MatchType identifies which resolution tier produced a store match
type MatchType string

const (
	MatchTypeExact     MatchType = "exact"
	MatchTypeVariation MatchType = "variation"
	MatchTypeFuzzy     MatchType = "fuzzy"
	MatchTypeNone      MatchType = "none"
)

// Valid reports whether m is one of the known match types
func (m MatchType) Valid() bool {
	switch m {
	case MatchTypeExact, MatchTypeVariation, MatchTypeFuzzy, MatchTypeNone:
		return true
	}
	return false
}

// MatchResult is the best store identity resolved from OCR text.
// A none match always carries an empty name and zero confidence.
type MatchResult struct {
	StoreName  string    `json:"storeName"`
	Confidence int       `json:"confidence"`
	MatchType  MatchType `json:"matchType"`

	// Candidate is the OCR line the match was resolved from
	Candidate string `json:"candidate,omitempty"`
}

// NoMatch returns the empty match result
func NoMatch() MatchResult {
	return MatchResult{MatchType: MatchTypeNone}
}
