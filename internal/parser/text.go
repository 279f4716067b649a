package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/cryptoresearch/labsite/internal/dom"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := &Document{
		Title: Stem(filename),
		Root:  dom.Element("div", nil),
	}

	// Each paragraph becomes a <p>.
	for _, para := range paragraphs {
		doc.Root.AppendChild(dom.Element("p", nil, dom.Text(para)))
	}

	return doc, nil
}
