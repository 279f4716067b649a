package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files with optional YAML front matter.
// Raw HTML is passed through so authors can write reference markers inline.
type MarkdownParser struct{}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			gmparser.WithAutoHeadingID(),
			gmparser.WithAttribute(),
		),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fm, body := splitFrontMatter(src)

	md := newMarkdown()
	astDoc := md.Parser().Parse(text.NewReader(body))

	var out bytes.Buffer
	if err := md.Renderer().Render(&out, body, astDoc); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	root, err := dom.ParseFragment(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}

	doc := &Document{FrontMatter: fm, Root: root}

	var meta struct {
		Title string `yaml:"title"`
	}
	if err := doc.Decode(&meta); err != nil {
		return nil, err
	}
	doc.Title = meta.Title
	if doc.Title == "" {
		doc.Title = firstHeading(astDoc, body)
	}
	if doc.Title == "" {
		doc.Title = Stem(filename)
	}

	return doc, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block.
func splitFrontMatter(src []byte) (fm, body []byte) {
	s := string(src)
	s = strings.TrimPrefix(s, "\ufeff")
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return nil, src
	}

	rest := s[strings.Index(s, "\n")+1:]
	end := -1
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		if strings.TrimRight(line, "\r\n") == "---" {
			end = offset
			break
		}
		offset += len(line)
	}
	if end < 0 {
		return nil, src
	}

	fm = []byte(rest[:end])
	after := rest[end:]
	if i := strings.Index(after, "\n"); i >= 0 {
		after = after[i+1:]
	} else {
		after = ""
	}
	return fm, []byte(after)
}

// firstHeading returns the text of the first level-1 heading.
func firstHeading(doc ast.Node, src []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return extractText(h, src)
		}
	}
	return ""
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
