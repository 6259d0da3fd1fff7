package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/sylcheck/internal/catalog"
)

// Validation methods.
const (
	MethodExact         = "exact"
	MethodSimilarity    = "similarity"
	MethodCombined      = "combined"
	MethodNotApplicable = "not_applicable"
	MethodCourseCodes   = "course_codes"
	MethodPartial       = "partial"
	MethodNotFound      = "not_found"
)

// Thresholds and the confidence reported for a fuzzy description match.
const (
	TitleThreshold        = 70.0
	DescriptionThreshold  = 95.0
	DescriptionConfidence = 85.0
	PartialPrereqScore    = 50.0
)

// Verdict is the outcome of one catalog cross-check.
type Verdict struct {
	Found      bool    `json:"found"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
	Note       string  `json:"note,omitempty"`
}

// ValidateTitle checks whether the official title appears in text, exactly
// or by title similarity.
func ValidateTitle(title, text string) Verdict {
	title = strings.TrimSpace(title)
	if title == "" {
		return Verdict{Method: MethodNotFound, Note: "Catalog record has no title"}
	}
	if strings.Contains(strings.ToLower(text), strings.ToLower(title)) {
		return Verdict{Found: true, Confidence: 100, Method: MethodExact}
	}
	sim := TitleSimilarity(title, text)
	if sim >= TitleThreshold {
		return Verdict{
			Found:      true,
			Confidence: round1(sim),
			Method:     MethodSimilarity,
			Note:       fmt.Sprintf("Title differs from the official catalog title %q", title),
		}
	}
	return Verdict{
		Method: MethodNotFound,
		Note:   fmt.Sprintf("Official catalog title %q not found", title),
	}
}

// ValidateDescriptionAndPrerequisites checks the catalog description and
// prerequisites against text. The whole published paragraph is tried first
// and settles both at once; otherwise each is checked separately.
func ValidateDescriptionAndPrerequisites(rec catalog.Record, text string) (desc, prereq Verdict) {
	applicable := prerequisitesApply(rec.Prerequisites)
	if !applicable {
		prereq = Verdict{
			Found:      true,
			Confidence: 100,
			Method:     MethodNotApplicable,
			Note:       "Course has no prerequisites in the catalog",
		}
	}

	normDoc := Normalize(text)
	if full := Normalize(rec.FullParagraph); full != "" && strings.Contains(normDoc, full) {
		desc = Verdict{Found: true, Confidence: 100, Method: MethodCombined}
		if applicable {
			prereq = Verdict{Found: true, Confidence: 100, Method: MethodCombined}
		}
		return desc, prereq
	}

	desc = validateDescription(rec.Description, normDoc)
	if applicable {
		prereq = validatePrerequisites(rec.Prerequisites, text, normDoc)
	}
	return desc, prereq
}

func prerequisitesApply(p string) bool {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", "none", "no prerequisites", "no prerequisite":
		return false
	}
	return true
}

func validateDescription(description, normDoc string) Verdict {
	normDesc := Normalize(description)
	if normDesc == "" {
		return Verdict{Method: MethodNotFound, Note: "Catalog record has no description"}
	}
	if strings.Contains(normDoc, normDesc) {
		return Verdict{Found: true, Confidence: 100, Method: MethodExact}
	}
	if sim := CharSimilarity(normDesc, normDoc); sim >= DescriptionThreshold {
		return Verdict{
			Found:      true,
			Confidence: DescriptionConfidence,
			Method:     MethodSimilarity,
			Note:       fmt.Sprintf("Description is %.1f%% similar to the catalog text", sim),
		}
	}
	return Verdict{Method: MethodNotFound, Note: "Official catalog description not found"}
}

// validatePrerequisites looks for each course code named in the catalog
// prerequisites in the raw text. Prerequisites without course codes fall
// back to a normalized substring check.
func validatePrerequisites(prereqs, text, normDoc string) Verdict {
	codes := catalog.CourseCodes(prereqs)
	if len(codes) == 0 {
		if strings.Contains(normDoc, Normalize(prereqs)) {
			return Verdict{Found: true, Confidence: 100, Method: MethodExact}
		}
		return Verdict{Method: MethodNotFound, Note: fmt.Sprintf("Catalog prerequisites %q not found", prereqs)}
	}

	var missing []string
	for _, code := range codes {
		if !strings.Contains(text, code) {
			missing = append(missing, code)
		}
	}
	switch len(missing) {
	case 0:
		return Verdict{Found: true, Confidence: 100, Method: MethodCourseCodes}
	case len(codes):
		return Verdict{
			Method: MethodNotFound,
			Note:   "Missing prerequisite courses: " + strings.Join(missing, ", "),
		}
	default:
		return Verdict{
			Confidence: PartialPrereqScore,
			Method:     MethodPartial,
			Note:       "Missing prerequisite courses: " + strings.Join(missing, ", "),
		}
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
