package checker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/sylcheck/internal/catalog"
	"github.com/dgallion1/sylcheck/internal/parser"
	"github.com/dgallion1/sylcheck/internal/rules"
	"github.com/dgallion1/sylcheck/internal/validate"
)

const catalogParagraph = "INFO 370. Database Systems. 3 Hours. Semester course; 3 lecture hours. 3 credits. " +
	"Prerequisites: INFO 202. Introduces the design and implementation of relational database systems, " +
	"including data modeling and SQL."

const syllabus = `INFO 370-001: Database Systems
Fall 2025, 3 credit hours
Class meets Monday and Wednesday 10:00 am - 11:15 am, Room 2104 Snead Hall

Instructor: Jane Doe
Email: jdoe@vcu.edu
Office Hours: Tuesday 2:00-4:00 pm

Course Description
` + catalogParagraph + `

Grading Scale
A = 90-100
B = 80-89

Syllabus Policy Statements: https://provost.vcu.edu/faculty/syllabus/
Library: https://www.library.vcu.edu/
`

type fakeCatalog struct {
	mu    sync.Mutex
	rec   catalog.Record
	calls []string
}

func (f *fakeCatalog) Lookup(_ context.Context, prefix, number string) catalog.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prefix+" "+number)
	rec := f.rec
	rec.Prefix, rec.Number = prefix, number
	return rec
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChecker(cat CatalogLookup) *Checker {
	return New(parser.NewExtractor(parser.Options{}), cat, quietLogger())
}

func item(t *testing.T, s Section, id string) ItemResult {
	t.Helper()
	for _, it := range s.Items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %s not in section", id)
	return ItemResult{}
}

func TestCheckText_InsufficientText(t *testing.T) {
	c := newChecker(nil)
	for _, text := range []string{"", "   \n\t ", strings.Repeat("x", MinTextLength-1)} {
		rep, err := c.CheckText(context.Background(), text)
		assert.ErrorIs(t, err, ErrInsufficientText)
		assert.Nil(t, rep)
	}
}

func TestCheckText_MinLengthCountsCharacters(t *testing.T) {
	c := newChecker(nil)

	// 60 characters, 120 bytes.
	_, err := c.CheckText(context.Background(), strings.Repeat("é", 60))
	assert.ErrorIs(t, err, ErrInsufficientText)

	_, err = c.CheckText(context.Background(), strings.Repeat("é", MinTextLength-1))
	assert.ErrorIs(t, err, ErrInsufficientText)

	rep, err := c.CheckText(context.Background(), strings.Repeat("é", MinTextLength))
	require.NoError(t, err)
	assert.Equal(t, len(rules.Required()), rep.Required.Total)
}

func TestCheckText_NoCatalog(t *testing.T) {
	rep, err := newChecker(nil).CheckText(context.Background(), syllabus)
	require.NoError(t, err)

	assert.False(t, rep.BulletinValidation.Enabled)
	assert.Equal(t, "INFO 370", rep.BulletinValidation.CourseCode)
	assert.Equal(t, 2, rep.URLsFound)
	assert.Len(t, rep.SampleURLs, 2)
	assert.Equal(t, len(syllabus), rep.TextLength)
	assert.Len(t, rep.Required.Items, len(rules.Required()))
	assert.Len(t, rep.Recommended.Items, len(rules.Recommended()))

	for i, e := range rules.Required() {
		assert.Equal(t, e.ID, rep.Required.Items[i].ID, "declaration order")
		assert.Nil(t, rep.Required.Items[i].Catalog)
	}
	assert.True(t, item(t, rep.Required, "instructor_info").Found)
	assert.True(t, item(t, rep.Required, "syllabus_policy_link").Found)
}

func TestCheckText_CatalogTimeoutDegrades(t *testing.T) {
	cat := &fakeCatalog{rec: catalog.Record{
		Error:     "Request timed out - catalog server not responding",
		ErrorKind: catalog.KindTimeout,
	}}
	rep, err := newChecker(cat).CheckText(context.Background(), syllabus)
	require.NoError(t, err)

	assert.Equal(t, []string{"INFO 370"}, cat.calls)
	info := rep.BulletinValidation
	assert.True(t, info.Enabled)
	assert.False(t, info.BulletinDataFound)
	assert.Contains(t, info.Error, "timed out")

	desc := item(t, rep.Required, "course_description")
	assert.Nil(t, desc.Catalog)
	assert.True(t, desc.Found, "pattern path still finds the description heading")
}

func TestCheckText_CatalogCombinedMatch(t *testing.T) {
	cat := &fakeCatalog{rec: catalog.Record{
		Found:         true,
		Title:         "Database Systems",
		Credits:       "3",
		Prerequisites: "INFO 202",
		Description:   "Introduces the design and implementation of relational database systems, including data modeling and SQL.",
		FullParagraph: catalogParagraph,
	}}
	rep, err := newChecker(cat).CheckText(context.Background(), syllabus)
	require.NoError(t, err)

	assert.True(t, rep.BulletinValidation.BulletinDataFound)
	assert.Equal(t, "Database Systems", rep.BulletinValidation.OfficialTitle)

	for _, id := range []string{"course_description", "prerequisites"} {
		it := item(t, rep.Required, id)
		require.NotNil(t, it.Catalog, id)
		assert.Equal(t, validate.MethodCombined, it.Catalog.Method, id)
		assert.True(t, it.Found, id)
		assert.Equal(t, 100.0, it.Confidence, id)
	}

	info := item(t, rep.Required, "course_info")
	var title bool
	for _, sub := range info.SubItems {
		if sub.ID == "course_title" {
			title = true
			assert.True(t, sub.Found)
			assert.Equal(t, "bulletin_exact", sub.Method)
		}
	}
	assert.True(t, title, "course_title sub-item present")
}

func TestCheckText_RecordWithoutDescriptionKeepsPattern(t *testing.T) {
	cat := &fakeCatalog{rec: catalog.Record{Found: true, Title: "Database Systems"}}
	rep, err := newChecker(cat).CheckText(context.Background(), syllabus)
	require.NoError(t, err)

	assert.True(t, rep.BulletinValidation.BulletinDataFound)
	assert.Nil(t, item(t, rep.Required, "course_description").Catalog)
	assert.Nil(t, item(t, rep.Required, "prerequisites").Catalog)
}

func TestCheckText_PercentageMatchesFound(t *testing.T) {
	rep, err := newChecker(nil).CheckText(context.Background(), syllabus)
	require.NoError(t, err)

	var sum float64
	for _, it := range rep.Required.Items {
		sum += it.Credit()
	}
	assert.InDelta(t, sum, rep.Required.Found, 0.01)
	assert.Equal(t, len(rules.Required()), rep.Required.Total)
	want := math.Round(1000*rep.Required.Found/float64(rep.Required.Total)) / 10
	assert.Equal(t, want, rep.Required.Percentage)
	assert.GreaterOrEqual(t, rep.Required.Percentage, 0.0)
	assert.LessOrEqual(t, rep.Required.Percentage, 100.0)
}

func TestCheckText_SampleURLsCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString(syllabus)
	for i := 0; i < 8; i++ {
		b.WriteString("See https://example.edu/page")
		b.WriteByte(byte('a' + i))
		b.WriteString("\n")
	}
	rep, err := newChecker(nil).CheckText(context.Background(), b.String())
	require.NoError(t, err)
	assert.Equal(t, 10, rep.URLsFound)
	assert.Len(t, rep.SampleURLs, SampleURLCount)
}

func TestMissing(t *testing.T) {
	rep, err := newChecker(nil).CheckText(context.Background(), syllabus)
	require.NoError(t, err)
	for _, it := range rep.Missing() {
		assert.False(t, it.Found)
	}
}

func TestCheck_UnsupportedFormat(t *testing.T) {
	_, err := newChecker(nil).Check(context.Background(), "syllabus.rtf")
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "syllabus.rtf", ee.Filename)
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)
}

func TestCheckReader(t *testing.T) {
	rep, err := newChecker(nil).CheckReader(context.Background(), strings.NewReader(syllabus), "upload.txt")
	require.NoError(t, err)
	assert.Equal(t, "upload.txt", rep.Filename)
	assert.Equal(t, "txt", rep.Format)
	assert.False(t, rep.CheckedAt.IsZero())
}

func TestCheckBatch_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	short := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(good, []byte(syllabus), 0o644))
	require.NoError(t, os.WriteFile(short, []byte("too short"), 0o644))
	unsupported := filepath.Join(dir, "notes.rtf")
	missing := filepath.Join(dir, "missing.txt")

	paths := []string{good, short, unsupported, missing, good}
	var seen int
	results := newChecker(nil).CheckBatch(context.Background(), paths, 2, func(BatchResult) { seen++ })

	require.Len(t, results, len(paths))
	assert.Equal(t, len(paths), seen)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Report)
	assert.ErrorIs(t, results[1].Err, ErrInsufficientText)
	assert.ErrorIs(t, results[2].Err, parser.ErrUnsupportedFormat)
	var ee *ExtractionError
	assert.True(t, errors.As(results[3].Err, &ee))
	assert.NoError(t, results[4].Err)
}

func TestCheckBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := newChecker(nil).CheckBatch(ctx, []string{"a.txt", "b.txt"}, 0, nil)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Report)
	}
}
