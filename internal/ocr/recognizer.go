// Package ocr wraps the Tesseract engine behind a small interface. OCR
// failures are absorbed: a recognizer returns an empty string rather
// than an error, and the downstream text heuristics treat empty text as
// legitimate no-evidence input.
package ocr

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"go-card-grader/internal/logger"
)

// TextRecognizer maps an encoded image to recognized text, one line per
// printed line. The empty string signals no evidence, never an error.
type TextRecognizer interface {
	Recognize(ctx context.Context, imageBytes []byte) string
}

// tesseractRecognizer drives a single gosseract client. The client is
// not safe for concurrent use, so calls serialize on a mutex.
type tesseractRecognizer struct {
	mu       sync.Mutex
	client   *gosseract.Client
	language string
}

// NewTesseractRecognizer creates a Tesseract-backed recognizer for the
// given language (e.g. "eng").
func NewTesseractRecognizer(language string) (TextRecognizer, func() error, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	r := &tesseractRecognizer{client: client, language: language}
	return r, client.Close, nil
}

// Recognize runs OCR over the encoded image. Any engine failure is
// logged and surfaced as empty text.
func (r *tesseractRecognizer) Recognize(ctx context.Context, imageBytes []byte) string {
	if len(imageBytes) == 0 || ctx.Err() != nil {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(imageBytes); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"language": r.language,
		}).Warn("OCR rejected image bytes")
		return ""
	}

	text, err := r.client.Text()
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"language": r.language,
		}).Warn("OCR recognition failed")
		return ""
	}
	return text
}
