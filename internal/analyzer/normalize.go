package analyzer

import (
	"image"

	apperrors "go-card-grader/internal/errors"
)

const (
	// GridSize is the fixed spatial resolution every input image is
	// resampled to. The corner-region offsets below assume this value.
	GridSize = 224
	// Channels per pixel in the normalized grid.
	Channels = 3
)

// NormalizedImage is a fixed 224x224x3 float64 pixel grid with values in
// [0,1]. It is created once per input image, read by all four feature
// extractors, and discarded when the analysis call returns.
type NormalizedImage struct {
	pix []float64 // row-major, interleaved RGB
}

// At returns the channel value at (x, y). Bounds are the caller's
// responsibility; the grid is always exactly GridSize x GridSize.
func (n *NormalizedImage) At(x, y, c int) float64 {
	return n.pix[(y*GridSize+x)*Channels+c]
}

// Gray collapses the grid to a single channel by averaging the three
// channels per pixel, returning a GridSize*GridSize slice.
func (n *NormalizedImage) Gray() []float64 {
	gray := make([]float64, GridSize*GridSize)
	for i := range gray {
		base := i * Channels
		gray[i] = (n.pix[base] + n.pix[base+1] + n.pix[base+2]) / 3.0
	}
	return gray
}

// Normalize resamples a decoded image to the fixed grid using
// nearest-neighbor interpolation and scales intensities to [0,1].
// Images with zero-area dimensions fail with a decode error.
func Normalize(img image.Image) (*NormalizedImage, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewDecodeError("image has zero-area dimensions", nil)
	}

	pix := make([]float64, GridSize*GridSize*Channels)
	for y := 0; y < GridSize; y++ {
		srcY := bounds.Min.Y + y*height/GridSize
		for x := 0; x < GridSize; x++ {
			srcX := bounds.Min.X + x*width/GridSize
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			base := (y*GridSize + x) * Channels
			pix[base] = float64(r) / 65535.0
			pix[base+1] = float64(g) / 65535.0
			pix[base+2] = float64(b) / 65535.0
		}
	}

	return &NormalizedImage{pix: pix}, nil
}
