package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/parser"
)

// LegacyPage is a standalone HTML page published as-is after numbering.
type LegacyPage struct {
	Slug       string
	Title      string
	References biblio.Database
	Doc        *parser.Document
}

// URL is the site path of the page.
func (p LegacyPage) URL() string {
	return "/" + p.Slug + ".html"
}

// LoadLegacyPages parses every .html/.htm file directly in dir.
func LoadLegacyPages(dir string) ([]LegacyPage, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy pages: %w", err)
	}

	var pages []LegacyPage
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".html" && ext != ".htm") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		var meta struct {
			References biblio.Database `yaml:"references"`
		}
		if err := doc.Decode(&meta); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		pages = append(pages, LegacyPage{
			Slug:       parser.Stem(e.Name()),
			Title:      doc.Title,
			References: meta.References,
			Doc:        doc,
		})
	}
	return pages, nil
}
