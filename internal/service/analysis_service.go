package service

import (
	"context"
	"strings"

	"go-card-grader/internal/config"
	apperrors "go-card-grader/internal/errors"
	"go-card-grader/internal/pipeline"
	"go-card-grader/pkg/models"
)

// CardAnalysisService validates incoming requests and drives the
// analysis pipeline under the configured timeout.
type CardAnalysisService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest, sink pipeline.ProgressSink) (*models.AnalysisResult, error)
}

type cardAnalysisService struct {
	pipeline *pipeline.Pipeline
	cfg      *config.Config
}

// NewCardAnalysisService creates the analysis service.
func NewCardAnalysisService(p *pipeline.Pipeline, cfg *config.Config) CardAnalysisService {
	return &cardAnalysisService{pipeline: p, cfg: cfg}
}

func (s *cardAnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest, sink pipeline.ProgressSink) (*models.AnalysisResult, error) {
	front := strings.TrimSpace(req.FrontImage)
	if front == "" {
		return nil, apperrors.NewValidationError("front_image is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
	defer cancel()

	return s.pipeline.Analyze(ctx, pipeline.Request{
		FrontImage:   front,
		BackImage:    strings.TrimSpace(req.BackImage),
		ExpectedName: strings.TrimSpace(req.ExpectedName),
	}, sink)
}
