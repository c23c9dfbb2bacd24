package models

// ImageRequest carries a capture either inline or by reference.
// Image may be raw base64 or a data URI; URL points at an http(s) or blob
// storage location.
type ImageRequest struct {
	Image string `json:"image,omitempty"`
	URL   string `json:"url,omitempty"`
}

// StoreMatchRequest represents a request to resolve a store name from OCR text
type StoreMatchRequest struct {
	Text        string   `json:"text" binding:"required"`
	KnownStores []string `json:"known_stores"`
}

// RecognizeRequest asks for OCR plus store resolution of a capture
type RecognizeRequest struct {
	ImageRequest
	KnownStores []string `json:"known_stores"`
	// Force skips the quality gate
	Force bool `json:"force,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// QualityResponse wraps a quality report with request bookkeeping
type QualityResponse struct {
	Timestamp         string        `json:"timestamp"`
	ProcessingTimeSec float64       `json:"processing_time_sec"`
	Report            QualityReport `json:"report"`
}

// StoreMatchResponse wraps a match result with diagnostics
type StoreMatchResponse struct {
	Match MatchResult `json:"match"`
	// CharErrorRate compares the matched OCR line with the canonical name
	CharErrorRate *float64 `json:"char_error_rate,omitempty"`
}

// RecognizeResponse is the combined outcome of gate, OCR and resolution
type RecognizeResponse struct {
	Timestamp         string             `json:"timestamp"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
	Quality           QualityReport      `json:"quality"`
	ExtractedText     string             `json:"extracted_text"`
	Store             StoreMatchResponse `json:"store"`
}
