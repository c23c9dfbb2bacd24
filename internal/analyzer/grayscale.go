package analyzer

// Perceptual luma weights
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// ToGrayscale projects RGBA pixels to luminance. Alpha is ignored.
func ToGrayscale(pixels *PixelBuffer) *GrayscaleBuffer {
	n := pixels.Width * pixels.Height
	lum := make([]float64, n)
	for i := 0; i < n; i++ {
		o := i * 4
		lum[i] = lumaR*float64(pixels.Pix[o]) +
			lumaG*float64(pixels.Pix[o+1]) +
			lumaB*float64(pixels.Pix[o+2])
	}
	return &GrayscaleBuffer{
		Width:  pixels.Width,
		Height: pixels.Height,
		Lum:    lum,
	}
}
