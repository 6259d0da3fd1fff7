package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Link destinations
// follow their link text in parentheses.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	writeMarkdownText(&buf, doc, src)

	return &Document{
		Text:   joinLines(strings.Split(buf.String(), "\n")),
		Format: "markdown",
		Pages:  1,
	}, nil
}

// writeMarkdownText writes the text of n, ending each block with a newline.
func writeMarkdownText(buf *bytes.Buffer, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Text:
		buf.Write(node.Segment.Value(src))
		if node.HardLineBreak() || node.SoftLineBreak() {
			buf.WriteByte('\n')
		}
		return
	case *ast.String:
		buf.Write(node.Value)
		return
	case *ast.AutoLink:
		buf.Write(node.URL(src))
		return
	case *ast.Link:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			writeMarkdownText(buf, c, src)
		}
		buf.WriteString(" (" + string(node.Destination) + ")")
		return
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		buf.WriteByte('\n')
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeMarkdownText(buf, c, src)
	}
	if n.Type() == ast.TypeBlock {
		buf.WriteByte('\n')
	}
}
