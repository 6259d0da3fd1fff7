package checker

import (
	"cmp"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"time"
)

// Scoring bands and thresholds used when summarizing reports.
const (
	LowConfidence      = 60.0
	PassScore          = 90.0
	NeedsWorkScore     = 70.0
	frequentShare      = 0.5
	highPriorityConf   = 25.0
	mediumPriorityConf = 40.0
)

// Status grades a required-items percentage.
func Status(percentage float64) string {
	switch {
	case percentage >= PassScore:
		return "PASS"
	case percentage >= NeedsWorkScore:
		return "NEEDS WORK"
	default:
		return "FAIL"
	}
}

// LowConfidenceItems returns required items that were found with
// confidence under LowConfidence.
func (r *Report) LowConfidenceItems() []ItemResult {
	var out []ItemResult
	for _, it := range r.Required.Items {
		if it.Found && it.Confidence < LowConfidence {
			out = append(out, it)
		}
	}
	return out
}

// FileSummary is one successfully checked file in a batch analysis.
type FileSummary struct {
	Filename         string   `json:"filename"`
	Score            float64  `json:"score"`
	Status           string   `json:"status"`
	RequiredFound    float64  `json:"required_found"`
	RequiredTotal    int      `json:"required_total"`
	RecommendedFound float64  `json:"recommended_found"`
	TextLength       int      `json:"text_length"`
	URLsFound        int      `json:"urls_count"`
	SampleURLs       []string `json:"urls"`
	Missing          []string `json:"missing_required"`
	LowConfidence    []string `json:"low_confidence"`
}

// ItemStat counts how often a required item was missing or weak.
type ItemStat struct {
	Name              string   `json:"name"`
	Count             int      `json:"count"`
	AverageConfidence float64  `json:"average_confidence"`
	Files             []string `json:"files"`

	confidences []float64
}

// Recommendation is a suggested rule improvement drawn from a batch.
type Recommendation struct {
	Priority   string `json:"priority"`
	Item       string `json:"item"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// FileFailure is a file that could not be checked.
type FileFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Analysis aggregates a batch of reports.
type Analysis struct {
	Timestamp       time.Time        `json:"timestamp"`
	TotalFiles      int              `json:"total_files"`
	AverageScore    float64          `json:"average_score"`
	TotalURLs       int              `json:"total_urls"`
	Files           []FileSummary    `json:"analyses"`
	Failures        []FileFailure    `json:"failures,omitempty"`
	Missing         []ItemStat       `json:"most_missing"`
	LowConfidence   []ItemStat       `json:"low_confidence"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Analyze summarizes batch results. Failed files are listed but do not
// count toward the averages.
func Analyze(results []BatchResult, now time.Time) Analysis {
	a := Analysis{Timestamp: now.UTC()}
	missing := map[string]*ItemStat{}
	weak := map[string]*ItemStat{}

	var scoreSum float64
	for _, res := range results {
		name := filepath.Base(res.Path)
		if res.Err != nil {
			a.Failures = append(a.Failures, FileFailure{Filename: name, Error: res.Err.Error()})
			continue
		}
		rep := res.Report
		fs := FileSummary{
			Filename:         name,
			Score:            rep.Required.Percentage,
			Status:           Status(rep.Required.Percentage),
			RequiredFound:    rep.Required.Found,
			RequiredTotal:    rep.Required.Total,
			RecommendedFound: rep.Recommended.Found,
			TextLength:       rep.TextLength,
			URLsFound:        rep.URLsFound,
			SampleURLs:       rep.SampleURLs,
		}
		for _, it := range rep.Missing() {
			fs.Missing = append(fs.Missing, it.Name)
			tally(missing, it, name)
		}
		for _, it := range rep.LowConfidenceItems() {
			fs.LowConfidence = append(fs.LowConfidence, it.Name)
			tally(weak, it, name)
		}
		scoreSum += fs.Score
		a.TotalURLs += fs.URLsFound
		a.Files = append(a.Files, fs)
	}

	a.TotalFiles = len(a.Files)
	if a.TotalFiles > 0 {
		a.AverageScore = round1(scoreSum / float64(a.TotalFiles))
	}
	a.Missing = sortedStats(missing)
	a.LowConfidence = sortedStats(weak)
	a.Recommendations = recommend(a.Missing, a.LowConfidence, a.TotalFiles)
	return a
}

func tally(m map[string]*ItemStat, it ItemResult, file string) {
	st, ok := m[it.Name]
	if !ok {
		st = &ItemStat{Name: it.Name}
		m[it.Name] = st
	}
	st.Count++
	st.Files = append(st.Files, file)
	st.confidences = append(st.confidences, it.Confidence)
}

// sortedStats orders by count descending, then name.
func sortedStats(m map[string]*ItemStat) []ItemStat {
	out := make([]ItemStat, 0, len(m))
	for _, st := range m {
		var sum float64
		for _, c := range st.confidences {
			sum += c
		}
		st.AverageConfidence = round1(sum / float64(len(st.confidences)))
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b ItemStat) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// recommend flags items missing or weak in at least half of the files.
func recommend(missing, weak []ItemStat, total int) []Recommendation {
	var recs []Recommendation
	frequent := func(st ItemStat) bool {
		return float64(st.Count) >= float64(total)*frequentShare
	}
	for _, st := range missing {
		if !frequent(st) {
			continue
		}
		switch {
		case st.AverageConfidence < highPriorityConf:
			recs = append(recs, Recommendation{
				Priority:   "HIGH",
				Item:       st.Name,
				Issue:      fmt.Sprintf("Frequently missed (in %d/%d files) with very low confidence (%.1f%%)", st.Count, total, st.AverageConfidence),
				Suggestion: "Add more flexible patterns, check for alternative phrasings, consider context-aware detection",
			})
		case st.AverageConfidence < mediumPriorityConf:
			recs = append(recs, Recommendation{
				Priority:   "MEDIUM",
				Item:       st.Name,
				Issue:      fmt.Sprintf("Frequently missed (in %d/%d files) with low confidence (%.1f%%)", st.Count, total, st.AverageConfidence),
				Suggestion: "Review existing patterns, add edge cases, improve confidence scoring",
			})
		}
	}
	for _, st := range weak {
		if !frequent(st) {
			continue
		}
		recs = append(recs, Recommendation{
			Priority:   "MEDIUM",
			Item:       st.Name,
			Issue:      fmt.Sprintf("Detected with low confidence in %d/%d files (avg: %.1f%%)", st.Count, total, st.AverageConfidence),
			Suggestion: "Strengthen primary patterns, add more specific keywords, increase min_matches threshold",
		})
	}
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		if c := cmp.Compare(priorityRank(a.Priority), priorityRank(b.Priority)); c != 0 {
			return c
		}
		return cmp.Compare(a.Item, b.Item)
	})
	return recs
}

func priorityRank(p string) int {
	if p == "HIGH" {
		return 0
	}
	return 1
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
