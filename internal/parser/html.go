package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/cryptoresearch/labsite/internal/dom"
	"golang.org/x/net/html"
)

// frontMatterScriptID marks an embedded YAML block in standalone pages:
//
//	<script type="text/yaml" id="front-matter">title: ...</script>
const frontMatterScriptID = "front-matter"

// HTMLParser handles standalone HTML pages.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{
		Title: Stem(filename),
		Full:  root,
		Root:  dom.FindBody(root),
	}
	if doc.Root == nil {
		doc.Root = root
	}

	if title := dom.FindTitle(root); title != "" {
		doc.Title = title
	}

	if script := dom.FindByID(root, frontMatterScriptID); dom.IsElement(script, "script") {
		var buf strings.Builder
		for c := script.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
		}
		doc.FrontMatter = []byte(buf.String())
		script.Parent.RemoveChild(script)

		var meta struct {
			Title string `yaml:"title"`
		}
		if err := doc.Decode(&meta); err != nil {
			return nil, err
		}
		if meta.Title != "" {
			doc.Title = meta.Title
		}
	}

	return doc, nil
}
