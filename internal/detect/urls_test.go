package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractURLs_StripsTrailingPunctuation(t *testing.T) {
	text := "Policies: https://provost.vcu.edu/faculty/syllabus. Library (http://library.vcu.edu/)," +
		" and again https://provost.vcu.edu/faculty/syllabus!"
	assert.Equal(t, []string{
		"https://provost.vcu.edu/faculty/syllabus",
		"http://library.vcu.edu/",
		"https://provost.vcu.edu/faculty/syllabus",
	}, ExtractURLs(text))
}

func TestExtractURLs_CaseInsensitiveScheme(t *testing.T) {
	got := ExtractURLs("Visit HTTPS://Bulletin.VCU.edu/AZcourses/info/ today")
	require.Len(t, got, 1)
	// Host casing is not normalized.
	assert.Equal(t, "HTTPS://Bulletin.VCU.edu/AZcourses/info/", got[0])
}

func TestExtractURLs_StopsAtBracketsAndQuotes(t *testing.T) {
	got := ExtractURLs(`<a href="https://example.edu/a">x</a> [https://example.edu/b] {https://example.edu/c}`)
	assert.Equal(t, []string{"https://example.edu/a", "https://example.edu/b", "https://example.edu/c"}, got)
}

func TestExtractURLs_None(t *testing.T) {
	assert.Empty(t, ExtractURLs("no links here, just www.vcu.edu and ftp://files"))
}
