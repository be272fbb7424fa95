package container

import (
	"fmt"
	"net/http"

	"go-card-grader/internal/analyzer"
	"go-card-grader/internal/config"
	"go-card-grader/internal/logger"
	"go-card-grader/internal/ocr"
	"go-card-grader/internal/pipeline"
	"go-card-grader/internal/service"
	"go-card-grader/internal/storage"
	"go-card-grader/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config   *config.Config
	pipeline *pipeline.Pipeline
	service  service.CardAnalysisService
	handler  http.Handler
	closeOCR func() error
}

// NewContainer builds the dependency graph.
func NewContainer(cfg *config.Config) (*Container, error) {
	recognizer, closeOCR, err := ocr.NewTesseractRecognizer(cfg.OCRLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR: %w", err)
	}

	var azure storage.ImageSource
	if cfg.AzureConfigured() {
		azure, err = storage.NewAzureSource(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			_ = closeOCR()
			return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
	}
	sources := storage.NewSourceResolver(
		storage.NewInlinePayloadSource(),
		storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout),
		azure,
	)

	publisher := pipeline.NewEventPublisher()
	publisher.Subscribe(pipeline.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(pipeline.NewMetricsObserver())

	// Market research is an external collaborator; none is wired here.
	p := pipeline.New(analyzer.NewCardGrader(), recognizer, sources, nil, publisher)

	svc := service.NewCardAnalysisService(p, cfg)
	handler := transport.NewHandler(svc, cfg)

	return &Container{
		config:   cfg,
		pipeline: p,
		service:  svc,
		handler:  handler,
		closeOCR: closeOCR,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases held resources (the OCR engine).
func (c *Container) Close() error {
	if c.closeOCR != nil {
		return c.closeOCR()
	}
	return nil
}
