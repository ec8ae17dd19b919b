package scoring

import (
	"strings"
	"unicode"
)

// normalize lowercases text, strips punctuation to whitespace, and collapses
// whitespace runs to single spaces.
func normalize(text string) string {
	return strings.Join(normalizeWords(text), " ")
}

// NormalizeTerm returns a keyword term in the lowercase-normalized form used
// as the key of scoring results.
func NormalizeTerm(term string) string {
	return normalize(term)
}

// normalizeWords returns the normalized text split into words.
func normalizeWords(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// findPhrase returns the starting word index of every contiguous whole-word
// occurrence of phrase in words. Overlapping matches are not counted twice;
// the scan resumes after each match.
func findPhrase(words, phrase []string) []int {
	if len(phrase) == 0 || len(words) < len(phrase) {
		return nil
	}
	var positions []int
	for i := 0; i+len(phrase) <= len(words); i++ {
		matched := true
		for j, pw := range phrase {
			if words[i+j] != pw {
				matched = false
				break
			}
		}
		if matched {
			positions = append(positions, i)
			i += len(phrase) - 1
		}
	}
	return positions
}

// extractSnippets returns a context window of up to `window` words on each
// side of every match position.
func extractSnippets(words []string, positions []int, phraseLen, window int) []string {
	snippets := make([]string, 0, len(positions))
	for _, pos := range positions {
		lo := pos - window
		if lo < 0 {
			lo = 0
		}
		hi := pos + phraseLen + window
		if hi > len(words) {
			hi = len(words)
		}
		snippets = append(snippets, strings.Join(words[lo:hi], " "))
	}
	return snippets
}
