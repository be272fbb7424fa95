package analyzer

import "math"

// Scoring constants. These were tuned empirically against sample card
// photos; they are fixed contract values, not tunables.
const (
	// centerFalloff is the centroid drift, in pixels, that costs one
	// grade point. Zero is reached at 22.4 px (10% of the grid span).
	centerFalloff = 2.24
	// gradientScale maps mean gradient magnitude to the [0,10] range
	// for the corner and edge scores.
	gradientScale = 20.0
	// surfaceScale maps Laplacian-response variance to [0,10].
	surfaceScale = 100.0

	// cornerRegion is the side length of each corner window;
	// cornerOffset places the far windows flush with the grid edge.
	cornerRegion = 32
	cornerOffset = GridSize - cornerRegion
)

// CenteringScore computes the intensity-weighted centroid of the grid
// and scores its distance from the exact grid center: 10 at zero drift,
// linear falloff, floor at 0.
func CenteringScore(grid *NormalizedImage) float64 {
	gray := grid.Gray()
	cx, cy, ok := Centroid(gray, GridSize, GridSize)
	if !ok {
		// All-zero image: no centroid, treated as maximally off-center.
		return 0
	}

	center := float64(GridSize) / 2
	dx := cx - center
	dy := cy - center
	dist := math.Sqrt(dx*dx + dy*dy)

	return clampScore(10 - dist/centerFalloff)
}

// CornerScore measures gradient energy in the four fixed 32x32 corner
// windows. Higher energy near corners indicates visible wear or
// whitening edges.
func CornerScore(grid *NormalizedImage) float64 {
	mag := GradientMagnitude(grid.Gray(), GridSize, GridSize)

	offsets := [4][2]int{
		{0, 0},
		{cornerOffset, 0},
		{0, cornerOffset},
		{cornerOffset, cornerOffset},
	}

	var sum float64
	for _, off := range offsets {
		m := regionMean(mag, GridSize, off[0], off[1], cornerRegion, cornerRegion)
		sum += clampScore(m * gradientScale)
	}
	return clampScore(sum / 4)
}

// EdgeScore applies the same gradient-magnitude statistic as CornerScore
// but over the whole grid, capturing overall edge sharpness.
func EdgeScore(grid *NormalizedImage) float64 {
	mag := GradientMagnitude(grid.Gray(), GridSize, GridSize)
	return clampScore(Mean(mag) * gradientScale)
}

// SurfaceScore measures micro-texture via the variance of the Laplacian
// response: high-frequency variance approximates scratch density, low
// variance a smooth (pristine or blurred) surface.
func SurfaceScore(grid *NormalizedImage) float64 {
	response := Convolve2D(grid.Gray(), GridSize, GridSize, laplacian)
	return clampScore(Variance(response) * surfaceScale)
}

// clampScore confines a raw statistic to the [0,10] score range. NaN and
// infinities from degenerate inputs clamp to 0, uniformly for every
// extractor.
func clampScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, -1) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 10 || math.IsInf(v, 1) {
		return 10
	}
	return v
}
