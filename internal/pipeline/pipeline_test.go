package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-card-grader/internal/analyzer"
	apperrors "go-card-grader/internal/errors"
	"go-card-grader/internal/storage"
	"go-card-grader/pkg/models"
)

// fakeRecognizer maps exact payload bytes to canned recognized text.
type fakeRecognizer struct {
	texts map[string]string
}

func (f *fakeRecognizer) Recognize(_ context.Context, imageBytes []byte) string {
	return f.texts[string(imageBytes)]
}

type fakeMarket struct {
	estimate *models.MarketEstimate
	err      error
}

func (f *fakeMarket) Lookup(context.Context, models.CardDetails) (*models.MarketEstimate, error) {
	return f.estimate, f.err
}

// encodeCardImage renders a small PNG with the given fill so front and
// back payloads have distinct bytes, and returns both the raw payload
// bytes and the data URI the pipeline consumes.
func encodeCardImage(t *testing.T, fill color.RGBA) ([]byte, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 56))
	for y := 0; y < 56; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	payload := buf.Bytes()
	return payload, "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}

func newTestPipeline(recognizer *fakeRecognizer, market MarketClient) *Pipeline {
	sources := storage.NewSourceResolver(
		storage.NewInlinePayloadSource(),
		storage.NewHTTPImageFetcher(time.Second),
		nil,
	)
	return New(analyzer.NewCardGrader(), recognizer, sources, market, nil)
}

func TestAnalyze_FrontOnlySkipsNumericScoring(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{200, 50, 50, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{
		string(frontBytes): "Charizard\n4/102\nSet: Base\npokemon",
	}}

	result, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{FrontImage: frontURI}, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Grade != (models.GradeResult{}) {
		t.Errorf("Expected all-zero grade without a back image, got %+v", result.Grade)
	}
	if result.CardDetails.Name != "Charizard" {
		t.Errorf("Expected name Charizard, got %q", result.CardDetails.Name)
	}
	if result.CardDetails.Number != "4/102" {
		t.Errorf("Expected number 4/102, got %q", result.CardDetails.Number)
	}
	if result.CardDetails.Category != models.CategoryTrading {
		t.Errorf("Expected trading category, got %q", result.CardDetails.Category)
	}

	for _, step := range result.Steps {
		if step.Step == StepImageProcessing || step.Step == StepCentering {
			t.Errorf("Did not expect numeric stage %q without a back image", step.Step)
		}
	}
}

func TestAnalyze_FullScoring(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{200, 50, 50, 255})
	backBytes, backURI := encodeCardImage(t, color.RGBA{50, 50, 200, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{
		string(frontBytes): "Charizard\nFire type",
		string(backBytes):  "45/100\nSet: Jungle",
	}}

	result, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
		FrontImage: frontURI,
		BackImage:  backURI,
	}, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for name, score := range map[string]float64{
		"centering": result.Grade.Centering,
		"corners":   result.Grade.Corners,
		"edges":     result.Grade.Edges,
		"surface":   result.Grade.Surface,
		"grade":     result.Grade.Grade,
	} {
		if score < 0 || score > 10 {
			t.Errorf("%s score out of range: %f", name, score)
		}
	}

	// Back pass supplies number and set; front pass keeps the name
	if result.CardDetails.Number != "45/100" {
		t.Errorf("Expected back-pass number 45/100, got %q", result.CardDetails.Number)
	}
	if result.CardDetails.Set != "Jungle" {
		t.Errorf("Expected back-pass set Jungle, got %q", result.CardDetails.Set)
	}
	if result.CardDetails.Name != "Charizard" {
		t.Errorf("Expected front-pass name, got %q", result.CardDetails.Name)
	}

	expectedOrder := []string{
		StepTextExtraction,
		StepImageProcessing,
		StepCentering,
		StepCorners,
		StepEdges,
		StepSurface,
		StepMarketResearch,
	}
	if len(result.Steps) != len(expectedOrder) {
		t.Fatalf("Expected %d steps, got %d: %v", len(expectedOrder), len(result.Steps), result.Steps)
	}
	for i, step := range result.Steps {
		if step.Step != expectedOrder[i] {
			t.Errorf("Step %d: expected %q, got %q", i, expectedOrder[i], step.Step)
		}
		if !step.Completed {
			t.Errorf("Step %q not completed", step.Step)
		}
	}
}

func TestAnalyze_BackOverwriteRule(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{10, 10, 10, 255})
	backBytes, backURI := encodeCardImage(t, color.RGBA{240, 240, 240, 255})

	t.Run("Back value wins when found", func(t *testing.T) {
		recognizer := &fakeRecognizer{texts: map[string]string{
			string(frontBytes): "Pikachu\n12",
			string(backBytes):  "45/100",
		}}
		result, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
			FrontImage: frontURI, BackImage: backURI,
		}, nil)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.CardDetails.Number != "45/100" {
			t.Errorf("Expected number 45/100, got %q", result.CardDetails.Number)
		}
	})

	t.Run("Front value retained when back finds nothing", func(t *testing.T) {
		recognizer := &fakeRecognizer{texts: map[string]string{
			string(frontBytes): "Pikachu\n12",
			string(backBytes):  "no digits here",
		}}
		result, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
			FrontImage: frontURI, BackImage: backURI,
		}, nil)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.CardDetails.Number != "12" {
			t.Errorf("Expected number 12, got %q", result.CardDetails.Number)
		}
	})
}

func TestAnalyze_EmptyOCREvidence(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{90, 90, 90, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{
		string(frontBytes): "",
	}}

	result, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{FrontImage: frontURI}, nil)
	if err != nil {
		t.Fatalf("OCR returning no text must not fail the analysis: %v", err)
	}

	if result.CardDetails != models.NewCardDetails() {
		t.Errorf("Expected all-sentinel details, got %+v", result.CardDetails)
	}
}

func TestAnalyze_MissingFrontImage(t *testing.T) {
	recognizer := &fakeRecognizer{texts: map[string]string{}}

	_, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{}, nil)
	if err == nil {
		t.Fatal("Expected validation error for missing front image")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestAnalyze_FetchFailureErrorTypes(t *testing.T) {
	recognizer := &fakeRecognizer{texts: map[string]string{}}

	t.Run("Remote fetch failure is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
			FrontImage: server.URL + "/front.png",
		}, nil)
		if err == nil {
			t.Fatal("Expected error for unfetchable front image")
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
			t.Errorf("Expected network error, got %v", err)
		}
	})

	t.Run("Malformed inline payload is a validation error", func(t *testing.T) {
		_, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
			FrontImage: "!!not base64!!",
		}, nil)
		if err == nil {
			t.Fatal("Expected error for malformed inline payload")
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestAnalyze_CorruptFrontImage(t *testing.T) {
	// Valid base64 payload, but not a decodable image
	junk := base64.StdEncoding.EncodeToString([]byte("this is not an image"))
	_, backURI := encodeCardImage(t, color.RGBA{0, 0, 0, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{}}

	_, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
		FrontImage: junk,
		BackImage:  backURI,
	}, nil)
	if err == nil {
		t.Fatal("Expected decode error for corrupt front image")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeDecode) {
		t.Errorf("Expected decode error, got %v", err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message == "" {
		t.Error("Decode error must identify the failing image side")
	}
}

func TestAnalyze_ExpectedNameConfirmation(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{120, 30, 30, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{
		string(frontBytes): "Charizard\n4/102",
	}}

	result, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
		FrontImage:   frontURI,
		ExpectedName: "Charizard",
	}, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !result.CardDetails.Confirmed {
		t.Error("Expected matching name to set the confirmation flag")
	}
	if result.NameMatch == nil || result.NameMatch.Similarity != 1 {
		t.Errorf("Expected a full-similarity name match, got %+v", result.NameMatch)
	}
}

func TestAnalyze_MarketResearch(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{77, 77, 77, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{
		string(frontBytes): "Charizard",
	}}

	t.Run("Estimate is attached", func(t *testing.T) {
		market := &fakeMarket{estimate: &models.MarketEstimate{AveragePrice: 120, Currency: "USD", SampleSize: 3}}
		result, err := newTestPipeline(recognizer, market).Analyze(context.Background(), Request{FrontImage: frontURI}, nil)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.Market == nil || result.Market.SampleSize != 3 {
			t.Errorf("Expected market estimate, got %+v", result.Market)
		}
	})

	t.Run("Market failure does not fail the analysis", func(t *testing.T) {
		market := &fakeMarket{err: errors.New("marketplace down")}
		result, err := newTestPipeline(recognizer, market).Analyze(context.Background(), Request{FrontImage: frontURI}, nil)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}
		if result.Market != nil {
			t.Errorf("Expected no market estimate, got %+v", result.Market)
		}
	})
}

func TestAnalyze_SinkOrderReflectsExecution(t *testing.T) {
	frontBytes, frontURI := encodeCardImage(t, color.RGBA{5, 100, 5, 255})
	backBytes, backURI := encodeCardImage(t, color.RGBA{100, 5, 100, 255})
	recognizer := &fakeRecognizer{texts: map[string]string{
		string(frontBytes): "Pikachu",
		string(backBytes):  "25/102",
	}}

	var steps []string
	sink := ProgressSink(func(step, detail string) {
		steps = append(steps, step)
	})

	if _, err := newTestPipeline(recognizer, nil).Analyze(context.Background(), Request{
		FrontImage: frontURI, BackImage: backURI,
	}, sink); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(steps) == 0 || steps[0] != StepTextExtraction {
		t.Fatalf("Expected text extraction to start first, got %v", steps)
	}

	// Numeric stages begin in pipeline order
	var starts []string
	seen := map[string]bool{}
	for _, s := range steps {
		if !seen[s] {
			seen[s] = true
			starts = append(starts, s)
		}
	}
	expected := []string{
		StepTextExtraction,
		StepImageProcessing,
		StepCentering,
		StepCorners,
		StepEdges,
		StepSurface,
		StepMarketResearch,
	}
	if len(starts) != len(expected) {
		t.Fatalf("Expected %d distinct steps, got %v", len(expected), starts)
	}
	for i := range expected {
		if starts[i] != expected[i] {
			t.Errorf("Start %d: expected %q, got %q", i, expected[i], starts[i])
		}
	}
}
