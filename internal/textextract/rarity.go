package textextract

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// Rarity and type vocabularies. Matching tolerates one character of OCR
// noise on the longer words via edit distance.

var rarityWords = []string{"common", "uncommon", "rare", "promo", "legendary", "mythic"}

var rarityQualifiers = []string{"holo", "ultra", "secret", "shiny"}

var typeWords = []string{"trainer", "energy", "creature", "spell", "trap", "monster"}

// extractRarity scans the lines for a rarity word, composing a qualifier
// like "Holo" or "Ultra" with "Rare" when both appear in the same line.
func extractRarity(lines []string) string {
	for _, line := range lines {
		words := strings.Fields(strings.ToLower(line))
		var qualifier string
		for _, w := range words {
			for _, q := range rarityQualifiers {
				if fuzzyEqual(w, q) {
					qualifier = q
				}
			}
		}
		for _, w := range words {
			for _, r := range rarityWords {
				if !fuzzyEqual(w, r) {
					continue
				}
				if r == "rare" && qualifier != "" {
					return title(qualifier) + " Rare"
				}
				return title(r)
			}
		}
	}
	return ""
}

// matchTypeWord returns a canonical type word found in the line, if any.
func matchTypeWord(line string) string {
	for _, w := range strings.Fields(strings.ToLower(line)) {
		for _, t := range typeWords {
			if fuzzyEqual(w, t) {
				return title(t)
			}
		}
	}
	return ""
}

// fuzzyEqual matches a recognized word against a vocabulary term. Short
// terms must match exactly; terms of five or more characters tolerate a
// single-character edit.
func fuzzyEqual(word, term string) bool {
	word = strings.Trim(word, ".,:;!()[]")
	if word == term {
		return true
	}
	if len(term) < 5 {
		return false
	}
	return levenshtein.Distance(word, term) <= 1
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
