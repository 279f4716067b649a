// Package biblio numbers bibliography citations in first-seen order.
package biblio

import (
	"errors"
	"fmt"
	"os"

	"github.com/cryptoresearch/labsite/internal/doctree"
	"gopkg.in/yaml.v3"
)

// Entry is one bibliography record. An entry with Content is rendered as a
// free-form footnote; otherwise Title, Author, Year and URL are used.
type Entry struct {
	Title   string `yaml:"title" json:"title,omitempty"`
	Author  string `yaml:"author" json:"author,omitempty"`
	Year    string `yaml:"year" json:"year,omitempty"`
	URL     string `yaml:"url" json:"url,omitempty"`
	Content string `yaml:"content" json:"content,omitempty"`
}

// IsFootnote reports whether the entry is free-form text.
func (e Entry) IsFootnote() bool {
	return e.Content != ""
}

// Database maps citation keys to entries.
type Database map[string]Entry

// LoadDatabase reads a YAML mapping of key -> entry.
// A missing file yields an empty database.
func LoadDatabase(path string) (Database, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Database{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bibliography %s: %w", path, err)
	}
	db := Database{}
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse bibliography %s: %w", path, err)
	}
	return db, nil
}

// Merge returns a new database with entries from other overriding db.
func (db Database) Merge(other Database) Database {
	out := make(Database, len(db)+len(other))
	for k, v := range db {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Item is a numbered bibliography entry.
type Item struct {
	Entry
	Key    string `json:"key"`
	Index  int    `json:"index"`  // 1-based
	Anchor string `json:"anchor"` // id of the citation that introduced it, e.g. "ref-smith20"
}

// CitationEdit tells the document boundary how to render one citation.
type CitationEdit struct {
	Index   int      `json:"index"`
	Keys    []string `json:"keys"`
	Numbers []int    `json:"numbers"`
	ID      string   `json:"id,omitempty"` // Set on the first citation led by a given key
}

// Bibliography is the numbered reference list for one document.
type Bibliography struct {
	Items     []Item         `json:"items"`
	Citations []CitationEdit `json:"citations"`
}

// Empty reports whether nothing was cited.
func (b *Bibliography) Empty() bool {
	return b == nil || len(b.Items) == 0
}

// Number assigns each distinct key a 1-based index in first-seen order across
// all citations, and maps every citation to the indices of its keys.
//
// Keys missing from db produce *doctree.UnresolvedReferenceError values,
// joined into the returned error. Unresolved keys are left out of the
// bibliography and their citations carry 0 for that key.
func Number(citations []doctree.Citation, db Database) (*Bibliography, error) {
	b := &Bibliography{Items: []Item{}, Citations: []CitationEdit{}}
	indexOf := make(map[string]int)
	anchored := make(map[string]bool)
	reported := make(map[string]bool)
	var errs []error

	for _, c := range citations {
		if len(c.Keys) == 0 {
			continue
		}
		edit := CitationEdit{Index: c.Index, Keys: c.Keys, Numbers: make([]int, len(c.Keys))}

		lead := c.Keys[0]
		if !anchored[lead] {
			anchored[lead] = true
			edit.ID = "ref-" + lead
		}

		for i, key := range c.Keys {
			if idx, ok := indexOf[key]; ok {
				edit.Numbers[i] = idx
				continue
			}
			entry, ok := db[key]
			if !ok {
				if !reported[key] {
					reported[key] = true
					errs = append(errs, &doctree.UnresolvedReferenceError{Kind: doctree.KindCitation, Key: key})
				}
				continue
			}
			idx := len(b.Items) + 1
			indexOf[key] = idx
			b.Items = append(b.Items, Item{Entry: entry, Key: key, Index: idx, Anchor: "ref-" + lead})
			edit.Numbers[i] = idx
		}
		b.Citations = append(b.Citations, edit)
	}

	return b, errors.Join(errs...)
}
