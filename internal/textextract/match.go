package textextract

import (
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"go-card-grader/pkg/models"
)

// confirmThreshold is the character-level similarity above which the
// extracted name is considered a confirmed match for the expected one.
const confirmThreshold = 0.8

// MatchExpectedName compares the extracted card name against the name
// the caller expected, reporting word error rate and a character-level
// similarity in [0,1]. An unknown extracted name never matches.
func MatchExpectedName(expected, extracted string) models.NameMatch {
	match := models.NameMatch{
		ExpectedName:  expected,
		ExtractedName: extracted,
		WordErrorRate: 1,
	}
	if expected == "" || extracted == "" || extracted == models.UnknownField {
		return match
	}

	ref := strings.Fields(strings.ToLower(expected))
	hyp := strings.Fields(strings.ToLower(extracted))
	// WER also reports word accuracy; only the error rate is kept.
	rate, _ := wer.WER(ref, hyp)
	match.WordErrorRate = rate

	match.Similarity = similarity(strings.ToLower(expected), strings.ToLower(extracted))
	return match
}

// Confirmed reports whether a name match is close enough to set the
// confirmation flag on the card details.
func Confirmed(match models.NameMatch) bool {
	return match.Similarity >= confirmThreshold
}

// similarity maps edit distance to [0,1]: 1 for identical strings, 0
// when every character differs.
func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.Distance(a, b)
	return 1 - float64(dist)/float64(longest)
}
