package checker

import (
	"time"

	"github.com/dgallion1/sylcheck/internal/detect"
	"github.com/dgallion1/sylcheck/internal/validate"
)

// SampleURLCount is how many extracted URLs a report lists.
const SampleURLCount = 5

// Report is the outcome of checking one syllabus.
type Report struct {
	Filename  string    `json:"filename,omitempty"`
	Format    string    `json:"format,omitempty"`
	CheckedAt time.Time `json:"checked_at"`

	Required    Section `json:"required"`
	Recommended Section `json:"recommended"`

	TextLength         int          `json:"text_length"`
	URLsFound          int          `json:"urls_found"`
	SampleURLs         []string     `json:"sample_urls"`
	BulletinValidation CatalogCheck `json:"bulletin_validation"`
}

// Section aggregates the items of one rule table. Found sums booleans for
// flat rules and partial credit for composite rules, so it can be
// fractional.
type Section struct {
	Total      int          `json:"total"`
	Found      float64      `json:"found"`
	Percentage float64      `json:"percentage"`
	Items      []ItemResult `json:"items"`
}

// ItemResult is one rule's verdict in a report.
type ItemResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	detect.Result

	// Catalog is set when the verdict came from the course catalog.
	Catalog *validate.Verdict `json:"bulletin_validation,omitempty"`
}

// Credit is the item's contribution to its section's found count.
func (it ItemResult) Credit() float64 {
	if it.PartialCredit != nil {
		return *it.PartialCredit
	}
	if it.Found {
		return 1
	}
	return 0
}

// CatalogCheck describes the catalog lookup made for a report.
type CatalogCheck struct {
	Enabled           bool   `json:"enabled"`
	CourseCode        string `json:"course_code,omitempty"`
	BulletinDataFound bool   `json:"bulletin_data_found"`
	OfficialTitle     string `json:"official_title,omitempty"`
	Error             string `json:"error,omitempty"`
}

// Missing returns the required items that were not found.
func (r *Report) Missing() []ItemResult {
	var out []ItemResult
	for _, it := range r.Required.Items {
		if !it.Found {
			out = append(out, it)
		}
	}
	return out
}
