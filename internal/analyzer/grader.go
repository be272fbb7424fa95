package analyzer

import (
	"math"
	"sync"

	"go-card-grader/pkg/models"
)

// FeatureScores holds the four component scores at full precision.
// Rounding happens once, in Aggregate, so the overall grade is computed
// on unrounded values.
type FeatureScores struct {
	Centering float64
	Corners   float64
	Edges     float64
	Surface   float64
}

// CardGrader derives the four condition feature scores from a
// normalized card image.
type CardGrader interface {
	Score(grid *NormalizedImage) FeatureScores
}

// cardGrader runs the four feature extractors over a shared immutable
// grid. The extractors have no data dependency on each other, so they
// execute concurrently; results are identical to sequential execution.
type cardGrader struct{}

// NewCardGrader creates a card condition grader.
func NewCardGrader() CardGrader {
	return &cardGrader{}
}

func (g *cardGrader) Score(grid *NormalizedImage) FeatureScores {
	extractors := [4]func(*NormalizedImage) float64{
		CenteringScore,
		CornerScore,
		EdgeScore,
		SurfaceScore,
	}

	var scores [4]float64
	var wg sync.WaitGroup
	for i, extract := range extractors {
		wg.Add(1)
		go func(i int, extract func(*NormalizedImage) float64) {
			defer wg.Done()
			scores[i] = extract(grid)
		}(i, extract)
	}
	wg.Wait()

	return FeatureScores{
		Centering: scores[0],
		Corners:   scores[1],
		Edges:     scores[2],
		Surface:   scores[3],
	}
}

// Aggregate combines the component scores into a GradeResult. The
// overall grade is the mean of the unrounded scores, rounded once; the
// components are rounded independently for display. All four features
// weigh equally.
func Aggregate(s FeatureScores) models.GradeResult {
	return models.GradeResult{
		Centering: round1(s.Centering),
		Corners:   round1(s.Corners),
		Edges:     round1(s.Edges),
		Surface:   round1(s.Surface),
		Grade:     round1((s.Centering + s.Corners + s.Edges + s.Surface) / 4),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
