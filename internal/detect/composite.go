package detect

import (
	"math"

	"github.com/dgallion1/sylcheck/internal/rules"
)

// FoundThreshold is the partial credit a composite rule needs to be found.
const FoundThreshold = 0.5

// TitleCheck validates the course title against an authoritative source.
// The orchestrator passes one only when a catalog record resolved.
type TitleCheck func(text string) SubResult

// EvaluateComposite scores each sub-item and sums the weights of the ones
// found into partial credit.
func EvaluateComposite(text string, c *rules.Composite, urls []string, title TitleCheck) Result {
	var credit float64
	var matches int
	var evidence []string
	subs := make([]SubResult, 0, len(c.SubItems))

	for _, item := range c.SubItems {
		var sub SubResult
		if item.UseCatalogTitle && title != nil {
			sub = title(text)
		} else if item.Flat != nil {
			res := Evaluate(text, item.Flat, urls)
			matches += res.Matches
			sub = SubResult{
				Found:      res.Found,
				Confidence: res.Confidence,
				Method:     "pattern",
				Evidence:   res.Evidence,
			}
		}
		sub.ID = item.ID
		sub.Name = item.Name
		sub.Weight = item.Weight

		if sub.Found {
			credit += item.Weight
			evidence = append(evidence, "Found "+item.Name)
		}
		subs = append(subs, sub)
	}

	// Weights are decimal fractions; drop float noise before comparing.
	credit = math.Round(credit*10000) / 10000
	credit = math.Max(0, math.Min(1, credit))

	return Result{
		Found:         credit >= FoundThreshold,
		Confidence:    math.Round(credit * 100),
		Matches:       matches,
		Evidence:      topEvidence(evidence),
		PartialCredit: &credit,
		SubItems:      subs,
	}
}
