// Package catalog looks up official course records in the university
// course catalog.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// NoPrerequisites is the Prerequisites value for a course that explicitly
// has none.
const NoPrerequisites = "None"

// ErrorKind classifies why a lookup did not produce a record.
type ErrorKind string

const (
	KindNotFound ErrorKind = "not_found"
	KindTimeout  ErrorKind = "timeout"
	KindHTTP     ErrorKind = "http"
	KindNetwork  ErrorKind = "network"
	KindParse    ErrorKind = "parse"
	KindRobots   ErrorKind = "robots"
)

// Record is the catalog entry for one course code. Failed lookups carry
// Found=false and an Error description; they are never returned as errors.
type Record struct {
	Found         bool      `json:"found"`
	Prefix        string    `json:"prefix"`
	Number        string    `json:"number"`
	Title         string    `json:"title,omitempty"`
	Credits       string    `json:"credits,omitempty"`
	Prerequisites string    `json:"prerequisites,omitempty"`
	Description   string    `json:"description,omitempty"`
	FullParagraph string    `json:"full_paragraph,omitempty"`
	Error         string    `json:"error,omitempty"`
	ErrorKind     ErrorKind `json:"error_kind,omitempty"`
}

// Code returns the display form of the course code, e.g. "INFO 370".
func (r Record) Code() string {
	return r.Prefix + " " + r.Number
}

var courseCodeRe = regexp.MustCompile(`\b([A-Z]{2,4})\s*-?\s*(\d{3,4})\b`)

// ParseCourseCode returns the first course code in text. Matching is case
// sensitive so ordinary words followed by numbers are not mistaken for codes.
func ParseCourseCode(text string) (prefix, number string, ok bool) {
	m := courseCodeRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// CourseCodes returns every course code token in text, in order.
func CourseCodes(text string) []string {
	return courseCodeRe.FindAllString(text, -1)
}

var (
	creditsRe     = regexp.MustCompile(`(?i)(\d+)\s+credits?\b`)
	prereqRe      = regexp.MustCompile(`(?i)\bprerequisites?:\s*([^.]+)`)
	prereqShortRe = regexp.MustCompile(`(?i)\bprereq:\s*([^.]+)`)
	noPrereqRe    = regexp.MustCompile(`(?i)\bno\s+prerequisites?\b`)
	noneRe        = regexp.MustCompile(`(?i)^none\b`)

	metadataRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)semester\s+course;[^.]+\.`),
		regexp.MustCompile(`(?i)\d+\s+lecture\s+hours[^.]*\.`),
		regexp.MustCompile(`(?i)\d+(-\d+)?\s+credits?\.`),
		regexp.MustCompile(`(?i)prerequisites?:[^.]+\.`),
		regexp.MustCompile(`(?i)prereq:[^.]+\.`),
		regexp.MustCompile(`(?i)enrollment\s+is\s+restricted[^.]+\.`),
	}
)

// minDescriptionLen is the shortest remainder accepted as a description.
const minDescriptionLen = 50

// parseParagraph splits a published course paragraph into its parts. The
// heading has the form "PREFIX NUMBER. Title. N Hours." and the details
// follow it.
func parseParagraph(paragraph, prefix, number string) Record {
	rec := Record{
		Found:         true,
		Prefix:        prefix,
		Number:        number,
		FullParagraph: paragraph,
	}

	code := regexp.QuoteMeta(prefix) + `\s+` + regexp.QuoteMeta(number)
	titleRe := regexp.MustCompile(`(?i)` + code + `\.\s+(.*?)\.\s+(\d+(?:-\d+)?)\s+hours?\.`)
	if m := titleRe.FindStringSubmatch(paragraph); m != nil {
		rec.Title = strings.TrimSpace(m[1])
		rec.Credits = m[2]
	}
	if m := creditsRe.FindStringSubmatch(paragraph); m != nil {
		rec.Credits = m[1]
	}

	for _, re := range []*regexp.Regexp{prereqRe, prereqShortRe} {
		if m := re.FindStringSubmatch(paragraph); m != nil {
			rec.Prerequisites = strings.TrimSpace(m[1])
			break
		}
	}
	if noPrereqRe.MatchString(paragraph) || noneRe.MatchString(rec.Prerequisites) {
		rec.Prerequisites = NoPrerequisites
	}

	desc := paragraph
	headingRe := regexp.MustCompile(`(?i)` + code + `\.[^.]+\.\s+\d+(?:-\d+)?\s+hours?\.`)
	desc = headingRe.ReplaceAllString(desc, "")
	for _, re := range metadataRes {
		desc = re.ReplaceAllString(desc, "")
	}
	desc = strings.Join(strings.Fields(desc), " ")
	if len(desc) >= minDescriptionLen {
		rec.Description = desc
	}

	return rec
}

func notFound(prefix, number string) Record {
	return Record{
		Prefix:    prefix,
		Number:    number,
		Error:     fmt.Sprintf("Course %s %s not found in catalog", prefix, number),
		ErrorKind: KindNotFound,
	}
}

func failed(prefix, number string, kind ErrorKind, format string, args ...any) Record {
	return Record{
		Prefix:    prefix,
		Number:    number,
		Error:     fmt.Sprintf(format, args...),
		ErrorKind: kind,
	}
}
