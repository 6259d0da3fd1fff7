// Package checker runs the full syllabus check: text extraction, URL
// extraction, catalog lookup and rule evaluation, assembled into a Report.
package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/sylcheck/internal/catalog"
	"github.com/dgallion1/sylcheck/internal/detect"
	"github.com/dgallion1/sylcheck/internal/parser"
	"github.com/dgallion1/sylcheck/internal/rules"
	"github.com/dgallion1/sylcheck/internal/validate"
)

// MinTextLength is the shortest trimmed text, in characters, accepted for
// checking.
const MinTextLength = 100

// Extractor reads plain text out of a document.
type Extractor interface {
	Extract(r io.Reader, filename string) (*parser.Document, error)
	ExtractFile(path string) (*parser.Document, error)
}

// CatalogLookup resolves a course code to its catalog record. Failures are
// reported inside the record.
type CatalogLookup interface {
	Lookup(ctx context.Context, prefix, number string) catalog.Record
}

// Checker checks syllabi. It is safe for concurrent use.
type Checker struct {
	ex  Extractor
	cat CatalogLookup
	log *slog.Logger
	now func() time.Time
}

// New creates a Checker. cat may be nil to disable catalog validation.
func New(ex Extractor, cat CatalogLookup, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{ex: ex, cat: cat, log: log, now: time.Now}
}

// Check extracts and checks the document at path.
func (c *Checker) Check(ctx context.Context, path string) (*Report, error) {
	doc, err := c.ex.ExtractFile(path)
	if err != nil {
		return nil, &ExtractionError{Filename: path, Err: err}
	}
	return c.checkDocument(ctx, doc, path)
}

// CheckReader extracts and checks an uploaded document. filename selects
// the format by its extension.
func (c *Checker) CheckReader(ctx context.Context, r io.Reader, filename string) (*Report, error) {
	doc, err := c.ex.Extract(r, filename)
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	return c.checkDocument(ctx, doc, filename)
}

// CheckText checks already extracted text.
func (c *Checker) CheckText(ctx context.Context, text string) (*Report, error) {
	return c.checkDocument(ctx, &parser.Document{Text: text}, "")
}

func (c *Checker) checkDocument(ctx context.Context, doc *parser.Document, filename string) (*Report, error) {
	rep, err := c.run(ctx, doc.Text)
	if err != nil {
		return nil, err
	}
	rep.Filename = filename
	rep.Format = doc.Format
	return rep, nil
}

func (c *Checker) run(ctx context.Context, text string) (rep *Report, err error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrInsufficientText, MinTextLength)
	}

	urls := detect.ExtractURLs(text)
	rec, info := c.lookupCourse(ctx, text)

	rep = &Report{
		CheckedAt:          c.now().UTC(),
		TextLength:         utf8.RuneCountInString(text),
		URLsFound:          len(urls),
		SampleURLs:         sample(urls),
		BulletinValidation: info,
	}

	var current string
	defer func() {
		if p := recover(); p != nil {
			c.log.Error("rule evaluation panicked", "rule", current, "panic", p)
			rep, err = nil, &RuleEvaluationError{RuleID: current, Cause: p}
		}
	}()

	for _, e := range rules.Required() {
		current = e.ID
		rep.Required.add(evaluateRequired(e, text, urls, rec))
	}
	for _, e := range rules.Recommended() {
		current = e.ID
		rep.Recommended.add(evaluatePattern(e, text, urls, nil))
	}
	rep.Required.finish()
	rep.Recommended.finish()
	return rep, nil
}

// lookupCourse resolves the first course code in text. Catalog failures
// are logged and recorded, never returned.
func (c *Checker) lookupCourse(ctx context.Context, text string) (*catalog.Record, CatalogCheck) {
	info := CatalogCheck{Enabled: c.cat != nil}
	prefix, number, ok := catalog.ParseCourseCode(text)
	if !ok {
		return nil, info
	}
	info.CourseCode = prefix + " " + number
	if c.cat == nil {
		return nil, info
	}

	rec := c.cat.Lookup(ctx, prefix, number)
	if !rec.Found {
		info.Error = rec.Error
		c.log.Warn("catalog lookup failed, continuing without catalog data",
			"course", info.CourseCode, "kind", rec.ErrorKind, "error", rec.Error)
		return nil, info
	}
	info.BulletinDataFound = true
	info.OfficialTitle = rec.Title
	return &rec, info
}

func evaluateRequired(e rules.Entry, text string, urls []string, rec *catalog.Record) ItemResult {
	var title detect.TitleCheck
	if rec != nil {
		title = titleCheck(rec.Title)
	}
	item := evaluatePattern(e, text, urls, title)

	f, ok := e.Rule.(*rules.Flat)
	if !ok || f.Catalog == rules.CatalogNone || rec == nil || rec.Description == "" {
		return item
	}

	desc, prereq := validate.ValidateDescriptionAndPrerequisites(*rec, text)
	v := desc
	if f.Catalog == rules.CatalogPrerequisites {
		v = prereq
	}
	item.Found = v.Found
	item.Confidence = v.Confidence
	item.Catalog = &v
	return item
}

func evaluatePattern(e rules.Entry, text string, urls []string, title detect.TitleCheck) ItemResult {
	item := ItemResult{ID: e.ID, Name: e.Rule.Label()}
	switch r := e.Rule.(type) {
	case *rules.Flat:
		item.Result = detect.Evaluate(text, r, urls)
	case *rules.Composite:
		item.Result = detect.EvaluateComposite(text, r, urls, title)
	default:
		panic(fmt.Sprintf("unknown rule type %T", e.Rule))
	}
	return item
}

// titleCheck adapts the catalog title validator to a composite sub-item.
func titleCheck(official string) detect.TitleCheck {
	return func(text string) detect.SubResult {
		v := validate.ValidateTitle(official, text)
		sub := detect.SubResult{
			Found:      v.Found,
			Confidence: v.Confidence,
			Method:     "bulletin_" + v.Method,
		}
		if v.Note != "" {
			sub.Evidence = []string{v.Note}
		}
		return sub
	}
}

func (s *Section) add(it ItemResult) {
	s.Items = append(s.Items, it)
	s.Total++
	s.Found += it.Credit()
}

func (s *Section) finish() {
	s.Found = math.Round(s.Found*100) / 100
	if s.Total > 0 {
		s.Percentage = math.Round(1000*s.Found/float64(s.Total)) / 10
	}
}

func sample(urls []string) []string {
	n := min(len(urls), SampleURLCount)
	out := make([]string, n)
	copy(out, urls[:n])
	return out
}
