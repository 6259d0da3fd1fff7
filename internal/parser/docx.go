package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs, including those inside
// tables, become lines; hyperlinks keep their anchor text followed by the
// target URL.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "sylcheck-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, docxParagraphText(doc, v))
		case *docx.Table:
			lines = append(lines, docxTableLines(doc, v)...)
		}
	}

	return &Document{Text: joinLines(lines), Format: "docx", Pages: 1}, nil
}

func docxTableLines(doc *docx.Docx, tbl *docx.Table) []string {
	var lines []string
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(doc, para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
			for _, nested := range cell.Tables {
				lines = append(lines, docxTableLines(doc, nested)...)
			}
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return lines
}

func docxParagraphText(doc *docx.Docx, para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			writeRunText(&buf, &c.Run)
			// Internal anchors have no relationship entry.
			if target, err := doc.ReferTarget(c.ID); err == nil && target != "" {
				buf.WriteString(" (" + target + ")")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// writeRunText also emits field instructions, which carry HYPERLINK field
// targets and the display text of links written by go-docx itself.
func writeRunText(buf *strings.Builder, run *docx.Run) {
	if run.InstrText != "" {
		buf.WriteString(run.InstrText)
	}
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
}
