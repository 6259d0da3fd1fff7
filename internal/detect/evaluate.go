// Package detect scores syllabus text against requirement rules.
//
// Evaluation is deterministic and safe for concurrent use with the shared
// read-only rule tables.
package detect

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dgallion1/sylcheck/internal/rules"
)

// Scoring constants. Tests pin these values.
const (
	MatchWeight       = 30.0
	ContextWeight     = 20.0
	URLBonus          = 20.0
	URLMatchCount     = 2
	GatedCap          = 40.0
	FoundFloor        = 25.0
	LengthWindow      = 300
	MaxEvidence       = 3
	evidenceURLPrefix = 50
	evidenceTextLimit = 60
)

// Result is the verdict for one rule against one document.
type Result struct {
	Found      bool     `json:"found"`
	Confidence float64  `json:"confidence"`
	Matches    int      `json:"matches"`
	Evidence   []string `json:"details"`

	// Set for composite rules only.
	PartialCredit *float64    `json:"partial_credit,omitempty"`
	SubItems      []SubResult `json:"sub_items,omitempty"`
}

// SubResult is the verdict for one sub-item of a composite rule.
type SubResult struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Weight     float64  `json:"weight"`
	Found      bool     `json:"found"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method,omitempty"`
	Evidence   []string `json:"details,omitempty"`
}

// Evaluate applies a flat rule to text and the URLs extracted from it.
func Evaluate(text string, r *rules.Flat, urls []string) Result {
	var matches int
	var evidence []string

	// URLs count double; only the first matching pattern counts per URL.
	if r.CheckURLs && len(urls) > 0 {
		for _, u := range urls {
			for _, p := range r.URLPatterns {
				if p.MatchString(u) {
					matches += URLMatchCount
					evidence = append(evidence, "Found URL: "+truncate(u, evidenceURLPrefix))
					break
				}
			}
		}
	}

	for _, p := range r.PrimaryPatterns {
		if loc := p.FindStringIndex(text); loc != nil {
			matches++
			evidence = append(evidence, "Pattern match: "+truncate(oneLine(text[loc[0]:loc[1]]), evidenceTextLimit))
		}
	}

	for _, p := range r.TextPatterns {
		if loc := p.FindStringIndex(text); loc != nil {
			matches++
			evidence = append(evidence, "Text reference: "+truncate(oneLine(text[loc[0]:loc[1]]), evidenceTextLimit))
		}
	}

	if len(r.RequiredPhrases) > 0 {
		requiredFound := 0
		for _, p := range r.RequiredPhrases {
			if p.MatchString(text) {
				requiredFound++
			}
		}
		if requiredFound < len(r.RequiredPhrases) {
			denom := float64(len(r.PrimaryPatterns) + len(r.TextPatterns) + 2)
			conf := math.Min(float64(matches)/denom*100, GatedCap)
			evidence = append(evidence, fmt.Sprintf("Missing required phrase (%d/%d)", requiredFound, len(r.RequiredPhrases)))
			return Result{
				Found:      false,
				Confidence: round1(conf),
				Matches:    matches,
				Evidence:   topEvidence(evidence),
			}
		}
	}

	contextMatches := 0
	if len(r.ContextKeywords) > 0 {
		lower := strings.ToLower(text)
		for _, kw := range r.ContextKeywords {
			if keywordPattern(kw).MatchString(lower) {
				contextMatches++
			}
		}
	}

	lengthOK := true
	if r.MinTextLength > 0 {
		lengthOK = lengthGate(text, r.PrimaryPatterns, r.MinTextLength)
		if !lengthOK {
			evidence = append(evidence, fmt.Sprintf("Section shorter than %d characters", r.MinTextLength))
		}
	}

	conf := float64(matches) * MatchWeight
	if len(r.ContextKeywords) > 0 {
		conf += float64(contextMatches) / float64(len(r.ContextKeywords)) * ContextWeight
	}
	if len(r.URLPatterns) > 0 && len(urls) > 0 {
		joined := strings.Join(urls, " ")
		for _, p := range r.URLPatterns {
			if p.MatchString(joined) {
				conf += URLBonus
				break
			}
		}
	}
	conf = math.Min(conf, 100)

	minMatches := r.MinMatches
	if minMatches <= 0 {
		minMatches = 1
	}
	found := matches >= minMatches && lengthOK
	if conf < FoundFloor {
		found = false
	}

	return Result{
		Found:      found,
		Confidence: round1(conf),
		Matches:    matches,
		Evidence:   topEvidence(evidence),
	}
}

// lengthGate reports whether any ±LengthWindow context around a primary
// pattern hit is at least minLen characters long. Windows and lengths are
// counted in runes. With no hits the gate passes.
func lengthGate(text string, patterns []*regexp.Regexp, minLen int) bool {
	total := utf8.RuneCountInString(text)
	sawWindow := false
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			sawWindow = true
			hitStart := utf8.RuneCountInString(text[:loc[0]])
			hitEnd := hitStart + utf8.RuneCountInString(text[loc[0]:loc[1]])
			start := max(0, hitStart-LengthWindow)
			end := min(total, hitEnd+LengthWindow)
			if end-start >= minLen {
				return true
			}
		}
	}
	return !sawWindow
}

var keywordCache sync.Map

// keywordPattern returns the whole-word matcher for a context keyword.
func keywordPattern(kw string) *regexp.Regexp {
	if re, ok := keywordCache.Load(kw); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	keywordCache.Store(kw, re)
	return re
}

func topEvidence(ev []string) []string {
	if len(ev) > MaxEvidence {
		return ev[:MaxEvidence]
	}
	if ev == nil {
		return []string{}
	}
	return ev
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
