// Package pipeline sequences a card analysis: payload resolution, image
// normalization, the four condition feature extractors, text metadata
// extraction, and result assembly, with progress events along the way.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-card-grader/internal/analyzer"
	apperrors "go-card-grader/internal/errors"
	"go-card-grader/internal/ocr"
	"go-card-grader/internal/storage"
	"go-card-grader/internal/textextract"
	"go-card-grader/pkg/models"
)

// Request describes one analysis: two encoded image payloads plus an
// optional caller-supplied card name to confirm against.
type Request struct {
	FrontImage   string
	BackImage    string
	ExpectedName string
}

// Pipeline orchestrates a single-flow-of-control card analysis. One
// instance serves many requests; all per-analysis state is call-scoped.
type Pipeline struct {
	grader     analyzer.CardGrader
	recognizer ocr.TextRecognizer
	sources    *storage.SourceResolver
	market     MarketClient // optional
	publisher  Subject      // optional
}

// New creates a pipeline. market and publisher may be nil.
func New(grader analyzer.CardGrader, recognizer ocr.TextRecognizer, sources *storage.SourceResolver, market MarketClient, publisher Subject) *Pipeline {
	return &Pipeline{
		grader:     grader,
		recognizer: recognizer,
		sources:    sources,
		market:     market,
		publisher:  publisher,
	}
}

// Analyze runs the full pipeline. An empty back image skips numeric
// scoring: all scores stay zero and metadata comes from the front image
// alone. An empty front image is a validation error. The sink may be
// nil; events already emitted are never retracted on failure.
func (p *Pipeline) Analyze(ctx context.Context, req Request, sink ProgressSink) (*models.AnalysisResult, error) {
	if req.FrontImage == "" {
		return nil, apperrors.NewValidationError("front image is required", nil)
	}

	start := time.Now()
	analysisID := uuid.New().String()
	p.notify(ctx, AnalysisEvent{
		EventType:  AnalysisStarted,
		Timestamp:  start,
		AnalysisID: analysisID,
	})

	result, err := p.run(ctx, req, newStageTracker(sink), analysisID, start)
	if err != nil {
		p.notify(ctx, AnalysisEvent{
			EventType:      AnalysisFailed,
			Timestamp:      time.Now(),
			AnalysisID:     analysisID,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	p.notify(ctx, AnalysisEvent{
		EventType:      AnalysisCompleted,
		Timestamp:      time.Now(),
		AnalysisID:     analysisID,
		ProcessingTime: time.Since(start),
		Success:        true,
		Grade:          result.Grade.Grade,
	})
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, tracker *stageTracker, analysisID string, start time.Time) (*models.AnalysisResult, error) {
	frontBytes, err := p.sources.Fetch(ctx, req.FrontImage)
	if err != nil {
		return nil, fetchError("front", req.FrontImage, err)
	}

	var backBytes []byte
	fullScoring := req.BackImage != ""
	if fullScoring {
		backBytes, err = p.sources.Fetch(ctx, req.BackImage)
		if err != nil {
			return nil, fetchError("back", req.BackImage, err)
		}
	}

	// Front and back text passes consume independent inputs, so they
	// run concurrently with the numeric pipeline and merge at the end.
	tracker.Update(StepTextExtraction, "Reading printed text")
	frontText := make(chan string, 1)
	backText := make(chan string, 1)
	go func() { frontText <- p.recognizer.Recognize(ctx, frontBytes) }()
	go func() {
		if fullScoring {
			backText <- p.recognizer.Recognize(ctx, backBytes)
		} else {
			backText <- ""
		}
	}()

	grade := models.GradeResult{}
	if fullScoring {
		grade, err = p.scoreCondition(tracker, frontBytes)
		if err != nil {
			return nil, err
		}
	}

	details := textextract.Merge(textextract.Extract(<-frontText), textextract.Extract(<-backText))
	var nameMatch *models.NameMatch
	if req.ExpectedName != "" {
		match := textextract.MatchExpectedName(req.ExpectedName, details.Name)
		details.Confirmed = textextract.Confirmed(match)
		nameMatch = &match
	}
	tracker.Complete(StepTextExtraction, textSummary(details))

	market := p.researchMarket(ctx, tracker, details)

	return &models.AnalysisResult{
		ID:                analysisID,
		Timestamp:         start,
		ProcessingTimeSec: time.Since(start).Seconds(),
		Grade:             grade,
		CardDetails:       details,
		NameMatch:         nameMatch,
		Steps:             tracker.Events(),
		Market:            market,
	}, nil
}

// scoreCondition decodes and normalizes the front photograph, then runs
// the four feature extractors. The normalized grid and convolution
// buffers are scoped to this call and released on return.
func (p *Pipeline) scoreCondition(tracker *stageTracker, frontBytes []byte) (models.GradeResult, error) {
	tracker.Update(StepImageProcessing, "Decoding card image")
	img, _, err := image.Decode(bytes.NewReader(frontBytes))
	if err != nil {
		return models.GradeResult{}, apperrors.NewDecodeError("front image could not be decoded", err)
	}

	grid, err := analyzer.Normalize(img)
	if err != nil {
		return models.GradeResult{}, apperrors.NewDecodeError("front image could not be normalized", err)
	}
	tracker.Complete(StepImageProcessing, fmt.Sprintf("Normalized to %dx%d", analyzer.GridSize, analyzer.GridSize))

	tracker.Update(StepCentering, "Measuring centering")
	tracker.Update(StepCorners, "Inspecting corners")
	tracker.Update(StepEdges, "Inspecting edges")
	tracker.Update(StepSurface, "Inspecting surface")

	scores := p.grader.Score(grid)
	grade := analyzer.Aggregate(scores)

	tracker.Complete(StepCentering, fmt.Sprintf("Centering score %.1f", grade.Centering))
	tracker.Complete(StepCorners, fmt.Sprintf("Corner score %.1f", grade.Corners))
	tracker.Complete(StepEdges, fmt.Sprintf("Edge score %.1f", grade.Edges))
	tracker.Complete(StepSurface, fmt.Sprintf("Surface score %.1f", grade.Surface))

	return grade, nil
}

// researchMarket invokes the external market collaborator when one is
// configured. Market failures never fail the analysis.
func (p *Pipeline) researchMarket(ctx context.Context, tracker *stageTracker, details models.CardDetails) *models.MarketEstimate {
	if p.market == nil {
		tracker.Complete(StepMarketResearch, "Skipped: no market client configured")
		return nil
	}

	tracker.Update(StepMarketResearch, "Searching recent sales")
	estimate, err := p.market.Lookup(ctx, details)
	if err != nil {
		tracker.Complete(StepMarketResearch, "Market data unavailable")
		return nil
	}
	tracker.Complete(StepMarketResearch, fmt.Sprintf("Found %d comparable sales", estimate.SampleSize))
	return estimate
}

// fetchError types a payload resolution failure by where the payload
// lives: remote references fail as network errors (or timeout errors
// when the deadline ran out), inline payloads as validation errors. The
// message names the image side.
func fetchError(side, ref string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError(side+" image fetch timed out", err)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "azblob://"):
		return apperrors.NewNetworkError(side+" image could not be fetched", err)
	default:
		return apperrors.NewValidationError(side+" image payload could not be resolved", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, event AnalysisEvent) {
	if p.publisher != nil {
		p.publisher.NotifyObservers(ctx, event)
	}
}

func textSummary(details models.CardDetails) string {
	if details.Name == models.UnknownField {
		return "No card name recognized"
	}
	return fmt.Sprintf("Identified %q", details.Name)
}
