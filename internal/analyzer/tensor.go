package analyzer

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Local numeric kernels for the feature extractors. Convolution is a
// plain nested-loop implementation over a single-channel grid; the
// statistics delegate to gonum.

var (
	sobelH = [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelV = [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
	laplacian = [][]float64{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	}
)

// Convolve2D applies a kernel to a width x height single-channel grid
// with "same" padding: the output keeps the source's spatial size and
// positions where the kernel does not fully overlap the grid stay zero.
// A uniform grid therefore produces a zero response everywhere instead
// of picking up artificial gradients at the image frame.
func Convolve2D(src []float64, width, height int, kernel [][]float64) []float64 {
	kh := len(kernel)
	kw := len(kernel[0])
	oy := kh / 2
	ox := kw / 2

	out := make([]float64, width*height)
	for y := oy; y < height-(kh-1-oy); y++ {
		for x := ox; x < width-(kw-1-ox); x++ {
			var sum float64
			for ky := 0; ky < kh; ky++ {
				row := (y + ky - oy) * width
				for kx := 0; kx < kw; kx++ {
					sum += src[row+x+kx-ox] * kernel[ky][kx]
				}
			}
			out[y*width+x] = sum
		}
	}
	return out
}

// GradientMagnitude computes the per-pixel sqrt(sobelH^2 + sobelV^2)
// response over a grayscale grid.
func GradientMagnitude(gray []float64, width, height int) []float64 {
	gh := Convolve2D(gray, width, height, sobelH)
	gv := Convolve2D(gray, width, height, sobelV)

	mag := make([]float64, len(gray))
	for i := range mag {
		mag[i] = math.Sqrt(gh[i]*gh[i] + gv[i]*gv[i])
	}
	return mag
}

// Mean returns the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Variance returns the variance of the values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Variance(values, nil)
}

// Centroid computes the intensity-weighted first spatial moment of a
// grayscale grid. A grid with zero total intensity has no defined
// centroid; ok is false in that case.
func Centroid(gray []float64, width, height int) (cx, cy float64, ok bool) {
	var total, sumX, sumY float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := gray[y*width+x]
			total += v
			sumX += float64(x) * v
			sumY += float64(y) * v
		}
	}
	if total == 0 {
		return 0, 0, false
	}
	return sumX / total, sumY / total, true
}

// regionMean averages the values inside a w x h window anchored at
// (x0, y0) in a width-wide grid.
func regionMean(values []float64, width, x0, y0, w, h int) float64 {
	var sum float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			sum += values[y*width+x]
		}
	}
	return sum / float64(w*h)
}
