package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf and pdftotext both want a file on disk.
	tmp, err := os.CreateTemp("", "sylcheck-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, pages, err := extractPDFText(tmpPath)
	if (err != nil || strings.TrimSpace(text) == "") && p.FallbackPdftotext {
		if fb, fbErr := extractPdftotext(tmpPath); fbErr == nil {
			text, err = fb, nil
			pages = strings.Count(fb, "\f") + 1
			text = strings.ReplaceAll(text, "\f", "\n")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &Document{Text: text, Format: "pdf", Pages: pages}, nil
}

// extractPDFText joins page texts with newlines. Pages that fail to decode
// are skipped. Link annotation URIs are appended after their page's text.
func extractPDFText(path string) (string, int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var parts []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, ok := pageText(page)
		if !ok {
			continue
		}
		parts = append(parts, text)
		if links := pageLinks(page); len(links) > 0 {
			parts = append(parts, strings.Join(links, "\n"))
		}
	}
	return strings.Join(parts, "\n"), numPages, nil
}

// pageText recovers from decoder panics on malformed content streams.
func pageText(page pdflib.Page) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	t, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return t, true
}

func pageLinks(page pdflib.Page) (links []string) {
	defer func() {
		if recover() != nil {
			links = nil
		}
	}()
	annots := page.V.Key("Annots")
	for i := 0; i < annots.Len(); i++ {
		uri := annots.Index(i).Key("A").Key("URI").RawString()
		if strings.HasPrefix(strings.ToLower(uri), "http") {
			links = append(links, uri)
		}
	}
	return links
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
