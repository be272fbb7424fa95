// Package textextract turns raw recognized text from a card photograph
// into structured CardDetails using ordered line heuristics. It is a
// pure function of its input lines: no OCR, no I/O.
package textextract

import (
	"regexp"
	"strings"

	"go-card-grader/pkg/models"
)

var (
	longDigitRun = regexp.MustCompile(`\d{3,}`)
	numberRun    = regexp.MustCompile(`\d+/\d+|\d+`)
	setPrefix    = regexp.MustCompile(`(?i)(?:set|series|©)\s*:?\s*(.+)`)
	typePrefix   = regexp.MustCompile(`(?i)\btype\s*:?\s*(.+)`)
)

var sportsKeywords = []string{"rookie", "season", "stats", "team", "record"}
var tradingKeywords = []string{"pokemon", "magic", "yugioh", "mtg"}

// SplitLines breaks a recognized-text block into trimmed, non-empty
// lines, preserving order.
func SplitLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Extract applies the field heuristics to the recognized text of one
// image side. Empty text is legitimate no-evidence input: every field
// stays at its sentinel and the category stays unset.
func Extract(text string) models.CardDetails {
	details := models.NewCardDetails()
	lines := SplitLines(text)
	if len(lines) == 0 {
		return details
	}

	if name := extractName(lines); name != "" {
		details.Name = name
	}
	if number := extractNumber(lines); number != "" {
		details.Number = number
	}
	if set := extractSet(lines); set != "" {
		details.Set = set
	}
	if rarity := extractRarity(lines); rarity != "" {
		details.Rarity = rarity
	}
	if cardType := extractType(lines); cardType != "" {
		details.Type = cardType
	}
	details.Category = Classify(text)

	return details
}

// extractName picks the card name from the first three lines: the first
// line longer than three characters that carries no copyright mark, no
// 3+ digit run, and no set/series wording.
func extractName(lines []string) string {
	limit := 3
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if len(line) <= 3 {
			continue
		}
		if strings.Contains(line, "©") {
			continue
		}
		if longDigitRun.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "set") || strings.Contains(lower, "series") {
			continue
		}
		return line
	}
	return ""
}

// extractNumber scans all lines in order for a "digits/digits" pattern
// or a bare digit run, skipping lines that mention a year or season.
// The first match wins.
func extractNumber(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "year") || strings.Contains(lower, "season") {
			continue
		}
		if match := numberRun.FindString(line); match != "" {
			return match
		}
	}
	return ""
}

// extractSet scans all lines for a set/series/copyright prefix and
// returns the trimmed trailing text of the first match.
func extractSet(lines []string) string {
	for _, line := range lines {
		if m := setPrefix.FindStringSubmatch(line); m != nil {
			if value := strings.TrimSpace(m[1]); value != "" {
				return value
			}
		}
	}
	return ""
}

// extractType looks for an explicit "Type:" annotation, then for a known
// type word anywhere in a line.
func extractType(lines []string) string {
	for _, line := range lines {
		if m := typePrefix.FindStringSubmatch(line); m != nil {
			if value := strings.TrimSpace(m[1]); value != "" {
				return value
			}
		}
	}
	for _, line := range lines {
		if t := matchTypeWord(line); t != "" {
			return t
		}
	}
	return ""
}

// Classify lower-cases the whole text block and tags the card category
// by keyword. Sports keywords are checked first and win when both sets
// match.
func Classify(text string) models.CardCategory {
	lower := strings.ToLower(text)
	for _, kw := range sportsKeywords {
		if strings.Contains(lower, kw) {
			return models.CategorySports
		}
	}
	for _, kw := range tradingKeywords {
		if strings.Contains(lower, kw) {
			return models.CategoryTrading
		}
	}
	return models.CategoryUnset
}

// Merge combines the front and back extraction passes. The back pass may
// overwrite number and set when it found a value; name and category come
// from the front pass only. Rarity and type are filled from the back
// pass only when the front pass left them unknown.
func Merge(front, back models.CardDetails) models.CardDetails {
	merged := front
	if back.Number != models.UnknownField && back.Number != "" {
		merged.Number = back.Number
	}
	if back.Set != models.UnknownField && back.Set != "" {
		merged.Set = back.Set
	}
	if merged.Rarity == models.UnknownField && back.Rarity != models.UnknownField {
		merged.Rarity = back.Rarity
	}
	if merged.Type == models.UnknownField && back.Type != models.UnknownField {
		merged.Type = back.Type
	}
	return merged
}
