package analyzer

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ConvolutionEngine applies the 3x3 kernels used for the blur and edge metrics
type ConvolutionEngine struct {
	edgeThreshold float64
}

// NewConvolutionEngine creates an engine flagging edges above edgeThreshold
func NewConvolutionEngine(edgeThreshold float64) *ConvolutionEngine {
	return &ConvolutionEngine{edgeThreshold: edgeThreshold}
}

// BlurScore computes the Laplacian variance sharpness score in [0,100].
// Lower is blurrier. ok is false when the buffer has no interior pixels, in
// which case the score is undetermined rather than blurred.
func (ce *ConvolutionEngine) BlurScore(gray *GrayscaleBuffer) (score float64, ok bool) {
	width, height := gray.Width, gray.Height
	if width < minDimension || height < minDimension {
		return 0, false
	}

	// One row of responses at a time keeps memory flat on 12MP captures
	row := make([]float64, width-2)
	var sumSq float64
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			row[x-1] = laplacianAt(gray, x, y)
		}
		sumSq += floats.Dot(row, row)
	}

	variance := sumSq / float64(width*height)
	return math.Min(100, math.Sqrt(variance)/10), true
}

// Gradient returns the Sobel gradient magnitude of every pixel.
// Border pixels have magnitude 0.
func (ce *ConvolutionEngine) Gradient(gray *GrayscaleBuffer) []float64 {
	width, height := gray.Width, gray.Height
	magnitude := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx, gy := sobelAt(gray, x, y)
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return magnitude
}

// EdgeMap thresholds the gradient magnitude into a binary edge map
func (ce *ConvolutionEngine) EdgeMap(gray *GrayscaleBuffer) *EdgeMap {
	magnitude := ce.Gradient(gray)
	edges := make([]bool, len(magnitude))
	count := 0
	for i, m := range magnitude {
		if m > ce.edgeThreshold {
			edges[i] = true
			count++
		}
	}
	return &EdgeMap{
		Width:  gray.Width,
		Height: gray.Height,
		Edges:  edges,
		Count:  count,
	}
}

// laplacianAt applies [-1,-1,-1; -1,8,-1; -1,-1,-1]
func laplacianAt(gray *GrayscaleBuffer, x, y int) float64 {
	w := gray.Width
	up, mid, down := gray.Lum[(y-1)*w:], gray.Lum[y*w:], gray.Lum[(y+1)*w:]

	neighbours := up[x-1] + up[x] + up[x+1] +
		mid[x-1] + mid[x+1] +
		down[x-1] + down[x] + down[x+1]
	return 8*mid[x] - neighbours
}

// sobelAt computes the horizontal and vertical Sobel gradients
func sobelAt(gray *GrayscaleBuffer, x, y int) (gx, gy float64) {
	w := gray.Width
	up, mid, down := gray.Lum[(y-1)*w:], gray.Lum[y*w:], gray.Lum[(y+1)*w:]

	gx = -up[x-1] + up[x+1] -
		2*mid[x-1] + 2*mid[x+1] -
		down[x-1] + down[x+1]
	gy = -up[x-1] - 2*up[x] - up[x+1] +
		down[x-1] + 2*down[x] + down[x+1]
	return gx, gy
}
