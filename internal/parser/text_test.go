package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextParser(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "utf8 with crlf",
			input: "Instructor: José Núñez\r\nOffice Hours: Mon 2–4pm\r\n",
			want:  "Instructor: José Núñez\nOffice Hours: Mon 2–4pm\n",
		},
		{
			name:  "bom stripped",
			input: "\ufeffCourse Syllabus",
			want:  "Course Syllabus",
		},
		{
			// 0x93/0x94 are curly quotes and 0xE9 is é in Windows-1252;
			// none are valid UTF-8 on their own.
			name:  "windows-1252 fallback",
			input: "\x93Caf\xe9 policy\x94 applies",
			want:  "“Café policy” applies",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TextParser{}
			doc, err := p.Parse(strings.NewReader(tt.input), "syllabus.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Text)
			assert.Equal(t, "txt", doc.Format)
		})
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"syllabus.rtf", "grades.csv", "noext"} {
		_, err := ForFile(name, Options{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestForFile_CaseInsensitiveExtension(t *testing.T) {
	p, err := ForFile("SYLLABUS.PDF", Options{PDFFallback: true})
	require.NoError(t, err)
	pdf, ok := p.(*PDFParser)
	require.True(t, ok, "got %T", p)
	assert.True(t, pdf.FallbackPdftotext, "fallback carried from options")
}

func TestIsSupportedExtension(t *testing.T) {
	cases := map[string]bool{
		"a.pdf": true, "a.DOCX": true, "a.txt": true, "a.md": true, "a.htm": true,
		"a.doc": false, "a.csv": false, "a": false,
	}
	for name, want := range cases {
		assert.Equal(t, want, IsSupportedExtension(name), name)
	}
}
