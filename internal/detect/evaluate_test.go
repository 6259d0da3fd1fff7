package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/sylcheck/internal/rules"
)

func mustFlat(t *testing.T, id string) *rules.Flat {
	t.Helper()
	r, ok := rules.Lookup(id)
	require.True(t, ok, "rule %q not registered", id)
	f, ok := r.(*rules.Flat)
	require.True(t, ok, "rule %q is not flat", id)
	return f
}

func mustComposite(t *testing.T, id string) *rules.Composite {
	t.Helper()
	r, ok := rules.Lookup(id)
	require.True(t, ok, "rule %q not registered", id)
	c, ok := r.(*rules.Composite)
	require.True(t, ok, "rule %q is not composite", id)
	return c
}

func TestScoringConstants(t *testing.T) {
	assert.Equal(t, 30.0, MatchWeight)
	assert.Equal(t, 20.0, ContextWeight)
	assert.Equal(t, 20.0, URLBonus)
	assert.EqualValues(t, 2, URLMatchCount)
	assert.EqualValues(t, 40, GatedCap)
	assert.EqualValues(t, 25, FoundFloor)
	assert.EqualValues(t, 300, LengthWindow)
	assert.EqualValues(t, 3, MaxEvidence)
}

func TestEvaluate_SinglePrimaryMatch(t *testing.T) {
	r := &rules.Flat{
		PrimaryPatterns: rules.Patterns(`office\s*hours`),
		MinMatches:      1,
	}
	res := Evaluate("Office Hours: by appointment", r, nil)
	assert.True(t, res.Found)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, 30.0, res.Confidence)
	require.Len(t, res.Evidence, 1)
	assert.True(t, strings.HasPrefix(res.Evidence[0], "Pattern match: "), "evidence %q", res.Evidence[0])
}

func TestEvaluate_ContextKeywordsAreWholeWord(t *testing.T) {
	r := &rules.Flat{
		PrimaryPatterns: rules.Patterns(`final\s+examination`),
		ContextKeywords: rules.Keywords("exam", "date"),
		MinMatches:      1,
	}
	// "examination", "examples" and "update" contain the keywords only
	// inside longer words.
	res := Evaluate("Final examination. See the examples and update.", r, nil)
	assert.Equal(t, 30.0, res.Confidence, "no context keyword should count")

	res = Evaluate("Final examination date TBD, the exam is cumulative.", r, nil)
	assert.Equal(t, 50.0, res.Confidence, "both context keywords should count")
}

func TestEvaluate_MinMatchesThreshold(t *testing.T) {
	r := mustFlat(t, "grading_scale")
	res := Evaluate("Your grading will be fair and consistent across all sections.", r, nil)
	assert.False(t, res.Found, "bare word 'grading' is not a grading scale")
	assert.Less(t, res.Matches, r.MinMatches)

	res = Evaluate("Grading Scale\nA = 90-100\nB = 80-89\nC = 70-79", r, nil)
	assert.True(t, res.Found, "result %+v", res)
}

func TestEvaluate_URLStrategy(t *testing.T) {
	r := mustFlat(t, "syllabus_policy_link")
	text := "Policies: https://provost.vcu.edu/policies"
	urls := ExtractURLs(text)

	res := Evaluate(text, r, urls)
	require.True(t, res.Found, "result %+v", res)
	assert.Equal(t, 2, res.Matches, "URL strategy contributes 2 matches")
	require.NotEmpty(t, res.Evidence)
	assert.True(t, strings.HasPrefix(res.Evidence[0], "Found URL: "), "evidence %q", res.Evidence[0])
	// 2*30 + 1/4*20 (provost) + 20 url bonus.
	assert.Equal(t, 85.0, res.Confidence)
}

func TestEvaluate_URLStrategyFirstPatternOnly(t *testing.T) {
	r := &rules.Flat{
		URLPatterns: rules.Patterns(`provost`, `vcu\.edu`),
		CheckURLs:   true,
		MinMatches:  2,
	}
	res := Evaluate("", r, []string{"https://provost.vcu.edu/x"})
	assert.Equal(t, 2, res.Matches, "one URL hit worth 2")
}

func TestEvaluate_URLsIgnoredWithoutCheckURLs(t *testing.T) {
	r := &rules.Flat{
		URLPatterns: rules.Patterns(`provost`),
		MinMatches:  1,
	}
	res := Evaluate("", r, []string{"https://provost.vcu.edu/x"})
	assert.Equal(t, 0, res.Matches)
	assert.False(t, res.Found)
	// The bonus still applies to the concatenated URL list.
	assert.Equal(t, 20.0, res.Confidence)
}

func TestEvaluate_RequiredPhraseGate(t *testing.T) {
	r := mustFlat(t, "library_statement")
	text := "Find library resources, spaces, technology and services at https://www.library.vcu.edu/ today."
	res := Evaluate(text, r, ExtractURLs(text))
	assert.False(t, res.Found, "gated rule")
	assert.LessOrEqual(t, res.Confidence, GatedCap)
	// url(2) + two primaries = 4 matches over 2+1+2 = 80%, capped.
	assert.Equal(t, 4, res.Matches)
	assert.Equal(t, 40.0, res.Confidence)
}

func TestEvaluate_RequiredPhrasePresent(t *testing.T) {
	r := mustFlat(t, "library_statement")
	text := "Use VCU Libraries to find and access library resources, spaces, technology and services " +
		"that support and enhance all learning opportunities at the university. (https://www.library.vcu.edu/)"
	res := Evaluate(text, r, ExtractURLs(text))
	require.True(t, res.Found, "result %+v", res)
	assert.Equal(t, 100.0, res.Confidence)
}

func TestEvaluate_GatedSmallDenominator(t *testing.T) {
	// Only URL patterns: the divisor is the constant 2.
	r := &rules.Flat{
		URLPatterns:     rules.Patterns(`example\.edu`),
		RequiredPhrases: rules.Patterns(`required statement`),
		CheckURLs:       true,
		MinMatches:      1,
	}
	res := Evaluate("nothing", r, []string{"https://example.edu"})
	assert.Equal(t, 40.0, res.Confidence, "2/2*100 capped to 40")
}

func TestEvaluate_MinTextLength(t *testing.T) {
	r := &rules.Flat{
		PrimaryPatterns: rules.Patterns(`course\s+description`),
		MinMatches:      1,
		MinTextLength:   100,
	}
	res := Evaluate("Course description: tbd", r, nil)
	assert.False(t, res.Found, "short section should fail the length gate")

	long := "Course Description: " + strings.Repeat("Students study relational databases. ", 5)
	res = Evaluate(long, r, nil)
	assert.True(t, res.Found, "result %+v", res)
}

func TestLengthGate_PassesWithoutHits(t *testing.T) {
	assert.True(t, lengthGate("no hits here", rules.Patterns(`course\s+description`), 100))
}

func TestLengthGate_CountsCharacters(t *testing.T) {
	patterns := rules.Patterns(`course\s+description`)
	// 79 characters but 139 bytes.
	text := "course description " + strings.Repeat("é", 60)
	assert.False(t, lengthGate(text, patterns, 100))

	text = "course description " + strings.Repeat("é", 81)
	assert.True(t, lengthGate(text, patterns, 100))
}

func TestEvaluate_EvidenceTruncatedToThree(t *testing.T) {
	r := &rules.Flat{
		PrimaryPatterns: rules.Patterns(`alpha`, `beta`, `gamma`, `delta`, `epsilon`),
		MinMatches:      1,
	}
	res := Evaluate("alpha beta gamma delta epsilon", r, nil)
	assert.Equal(t, 5, res.Matches)
	assert.Len(t, res.Evidence, 3)
	assert.Equal(t, 100.0, res.Confidence, "capped at 100")
}

func TestEvaluate_Idempotent(t *testing.T) {
	text := sampleSyllabus
	urls := ExtractURLs(text)
	for _, e := range append(rules.Required(), rules.Recommended()...) {
		f, ok := e.Rule.(*rules.Flat)
		if !ok {
			continue
		}
		assert.Equal(t, Evaluate(text, f, urls), Evaluate(text, f, urls), e.ID)
	}
}

func TestEvaluate_PropertiesAcrossRules(t *testing.T) {
	texts := []string{
		"",
		"grading",
		"Policies: https://provost.vcu.edu/policies",
		sampleSyllabus,
		strings.ToUpper(sampleSyllabus),
	}
	for _, text := range texts {
		urls := ExtractURLs(text)
		for _, e := range append(rules.Required(), rules.Recommended()...) {
			var res Result
			switch r := e.Rule.(type) {
			case *rules.Flat:
				res = Evaluate(text, r, urls)
				gated := false
				for _, p := range r.RequiredPhrases {
					if !p.MatchString(text) {
						gated = true
					}
				}
				if gated {
					assert.LessOrEqual(t, res.Confidence, GatedCap, "%s: gated confidence above cap", e.ID)
				}
			case *rules.Composite:
				res = EvaluateComposite(text, r, urls, nil)
				require.NotNil(t, res.PartialCredit, "%s: composite without partial credit", e.ID)
				pc := *res.PartialCredit
				assert.GreaterOrEqual(t, pc, 0.0, e.ID)
				assert.LessOrEqual(t, pc, 1.0, e.ID)
				assert.Equal(t, pc >= 0.5, res.Found, "%s: partial credit %v", e.ID, pc)
			}
			assert.GreaterOrEqual(t, res.Confidence, 0.0, e.ID)
			assert.LessOrEqual(t, res.Confidence, 100.0, e.ID)
			if res.Found {
				assert.GreaterOrEqual(t, res.Confidence, FoundFloor, "%s: found with low confidence", e.ID)
			}
			assert.LessOrEqual(t, len(res.Evidence), MaxEvidence, e.ID)
		}
	}
}

const sampleSyllabus = `INFO 370-001: Database Systems
Fall 2025, 3 credit hours
Class meets Monday and Wednesday 10:00 am - 11:15 am, Room 2104 Snead Hall

Instructor: Jane Doe
Email: jdoe@vcu.edu  Phone: (804) 555-1234
Office Hours: Tuesday 2:00-4:00 pm or by appointment

Course Description
This course introduces students to the design and implementation of relational
database systems, covering data modeling, normalization, SQL, transactions and
an overview of emerging data platforms used across industry.

Prerequisites: INFO 202 and INFO 250 with a minimum grade of C.

Student Learning Outcomes
Upon successful completion of this course, students will be able to design,
analyze and evaluate relational schemas.

Required Textbook: Database System Concepts, 7th edition, ISBN 978-0078022159.

Course Schedule
Week 1 (Aug 25): Introduction. Reading due.
Week 2 (Sep 1): Relational model. Assignment 1 due 9/5.

Final Exam: Monday, December 8, 10:00 am

Grading Scale
A = 90-100
B = 80-89
C = 70-79

Grade Weights: Assignments 40%, Midterm exam 25%, Final exam 25%, Participation 10%.

Syllabus Policy Statements are on the Provost's website: https://provost.vcu.edu/faculty/syllabus/
Use VCU Libraries to find and access library resources, spaces, technology and services that support
and enhance all learning opportunities at the university. (https://www.library.vcu.edu/)

Attendance policy: attendance is expected; absences will be excused with documentation.
Technology policy: recording of class sessions requires permission. I respond to emails within 24 hours.
`
