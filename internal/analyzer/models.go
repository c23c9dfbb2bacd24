package analyzer

import (
	"github.com/tomomini0815/ainance-v2-sub004/pkg/models"
)

// QualityReport is an alias to the shared models.QualityReport
type QualityReport = models.QualityReport

// PixelBuffer holds decoded RGBA pixels, 4 bytes per pixel in row-major order.
// A buffer belongs to a single analysis call and is never mutated after decoding.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// GrayscaleBuffer holds one luminance value in [0,255] per pixel
type GrayscaleBuffer struct {
	Width  int
	Height int
	Lum    []float64
}

// At returns the luminance at (x, y)
func (g *GrayscaleBuffer) At(x, y int) float64 {
	return g.Lum[y*g.Width+x]
}

// EdgeMap flags the pixels whose Sobel gradient magnitude exceeds the edge threshold
type EdgeMap struct {
	Width  int
	Height int
	Edges  []bool
	Count  int
}

// BoundaryResult is the outcome of receipt outline detection
type BoundaryResult struct {
	Found     bool
	Bounds    *models.Bounds
	EdgeCount int
}

// Signals are the independent measurements the scorer combines
type Signals struct {
	BlurScore float64
	// BlurKnown is false when the buffer had no interior pixels to convolve
	BlurKnown  bool
	Brightness float64
	Contrast   float64
	Boundary   BoundaryResult
}
