// Package validate cross-checks syllabus text against an official catalog
// record.
package validate

import (
	"math"
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "to": true,
	"in": true, "for": true, "and": true, "or": true, "with": true,
}

// Normalize lower-cases s, collapses whitespace runs to one space and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// titleWords splits a title into lower-case words, dropping stopwords and
// words of two characters or fewer.
func titleWords(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, w := range fields {
		if len([]rune(w)) <= 2 || stopwords[w] {
			continue
		}
		words = append(words, w)
	}
	return words
}

// TitleSimilarity scores how much of title appears in text, 0-100. Whole
// words weigh 80%; a 4-character prefix hit on longer words gives a half
// credit bonus weighing 20%. Matching is case-insensitive. A title with no
// significant words left is trivially contained and scores 100.
func TitleSimilarity(title, text string) float64 {
	words := titleWords(title)
	if len(words) == 0 {
		return 100
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, strings.Join(words, " ")) {
		return 100
	}

	var whole int
	var partial float64
	for _, w := range words {
		if strings.Contains(lower, w) {
			whole++
		}
		if r := []rune(w); len(r) >= 4 && strings.Contains(lower, string(r[:4])) {
			partial += 0.5
		}
	}
	n := float64(len(words))
	wordPct := float64(whole) / n * 100
	partialPct := partial / n * 100
	return math.Min(100, wordPct*0.8+partialPct*0.2)
}

// CharSimilarity compares a and b position by position from the start and
// returns the share of matching runes over the shorter length, 0-100. A
// shorter string contained in the longer one scores 100. This rewards
// near-identical prefixes; it is not an edit distance.
func CharSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	if strings.Contains(string(rb), string(ra)) {
		return 100
	}
	var same int
	for i := range ra {
		if ra[i] == rb[i] {
			same++
		}
	}
	return float64(same) / float64(len(ra)) * 100
}
