package models

import "time"

// AnalysisResult represents the complete result of a card analysis:
// the numeric condition grade plus the metadata extracted from the
// printed text on the card.
type AnalysisResult struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	// Condition grade
	Grade GradeResult `json:"grade"`

	// Extracted card metadata
	CardDetails CardDetails `json:"card_details"`

	// Expected-name comparison (optional)
	NameMatch *NameMatch `json:"name_match,omitempty"`

	// Ordered pipeline step states
	Steps []ProgressEvent `json:"steps,omitempty"`

	// Market research result, when an external market client is configured
	Market *MarketEstimate `json:"market,omitempty"`
}

// GradeResult holds the four component condition scores and the overall
// grade. All values are in [0,10] and rounded to one decimal place; the
// grade is the arithmetic mean of the full-precision component scores,
// rounded once at the end.
type GradeResult struct {
	Centering float64 `json:"centering"`
	Corners   float64 `json:"corners"`
	Edges     float64 `json:"edges"`
	Surface   float64 `json:"surface"`
	Grade     float64 `json:"grade"`
}

// CardCategory tags the kind of card the text evidence points at.
type CardCategory string

const (
	CategoryUnset   CardCategory = ""
	CategoryTrading CardCategory = "trading"
	CategorySports  CardCategory = "sports"
)

// UnknownField is the sentinel for card fields the text heuristics could
// not resolve. Fields are never absent, only unknown.
const UnknownField = "Unknown"

// CardDetails holds structured metadata extracted from recognized text.
// Every string field defaults to UnknownField rather than being omitted.
type CardDetails struct {
	Name      string       `json:"name"`
	Set       string       `json:"set"`
	Number    string       `json:"number"`
	Type      string       `json:"type"`
	Rarity    string       `json:"rarity"`
	Confirmed bool         `json:"confirmed"`
	Category  CardCategory `json:"category,omitempty"`
}

// NewCardDetails returns details with every field at its sentinel.
func NewCardDetails() CardDetails {
	return CardDetails{
		Name:   UnknownField,
		Set:    UnknownField,
		Number: UnknownField,
		Type:   UnknownField,
		Rarity: UnknownField,
	}
}

// NameMatch reports how closely the extracted card name matches the name
// the caller expected to find on the card.
type NameMatch struct {
	ExpectedName  string  `json:"expected_name"`
	ExtractedName string  `json:"extracted_name"`
	WordErrorRate float64 `json:"word_error_rate"`
	Similarity    float64 `json:"similarity"`
}

// ProgressEvent is one pipeline stage state: a step name plus its latest
// human-readable detail. Events are ordered by first emission; a step
// emitted again updates in place.
type ProgressEvent struct {
	Step      string `json:"step"`
	Detail    string `json:"detail"`
	Completed bool   `json:"completed"`
}

// MarketEstimate is the shape returned by the external market research
// collaborator. The pipeline only forwards it; pricing logic lives
// outside this service.
type MarketEstimate struct {
	AveragePrice float64 `json:"average_price"`
	Currency     string  `json:"currency"`
	SampleSize   int     `json:"sample_size"`
}
