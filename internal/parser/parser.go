package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cryptoresearch/labsite/internal/dom"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Document is a source file converted to an HTML tree.
type Document struct {
	Title       string     // From front matter, <title>, first heading or filename
	FrontMatter []byte     // Raw YAML, nil if none
	Root        *html.Node // Content container: a <div> around a fragment, or <body>
	Full        *html.Node // Whole document for standalone HTML pages, nil otherwise
}

// Decode unmarshals the front matter into v. No front matter is not an error.
func (d *Document) Decode(v any) error {
	if len(d.FrontMatter) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(d.FrontMatter, v); err != nil {
		return fmt.Errorf("front matter: %w", err)
	}
	return nil
}

// Text returns the plain text of the content.
func (d *Document) Text() string {
	if d.Root == nil {
		return ""
	}
	return dom.TextContent(d.Root)
}

// Body renders the content without its container.
func (d *Document) Body() (string, error) {
	if d.Root == nil {
		return "", nil
	}
	return dom.RenderChildren(d.Root)
}

// Parser converts raw source bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".txt":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Stem strips the directory and extension from a filename.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
