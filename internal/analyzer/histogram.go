package analyzer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramAnalyzer measures exposure over the luminance buffer
type HistogramAnalyzer struct{}

// NewHistogramAnalyzer creates a histogram analyzer
func NewHistogramAnalyzer() *HistogramAnalyzer {
	return &HistogramAnalyzer{}
}

// Brightness returns the mean luminance rescaled to [0,100]
func (ha *HistogramAnalyzer) Brightness(gray *GrayscaleBuffer) float64 {
	if len(gray.Lum) == 0 {
		return 0
	}
	return clampScore(stat.Mean(gray.Lum, nil) / 255 * 100)
}

// Contrast returns the luminance spread (max - min) rescaled to [0,100]
func (ha *HistogramAnalyzer) Contrast(gray *GrayscaleBuffer) float64 {
	if len(gray.Lum) == 0 {
		return 0
	}
	spread := floats.Max(gray.Lum) - floats.Min(gray.Lum)
	return clampScore(spread / 255 * 100)
}
