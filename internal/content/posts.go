package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/parser"
	"gopkg.in/yaml.v3"
)

// Post is a blog post authored in the posts directory.
type Post struct {
	Slug        string
	Title       string
	Author      string
	Date        time.Time
	Description string
	Numbered    bool            // Number sections and render a TOC
	References  biblio.Database // Per-post bibliography entries
	Doc         *parser.Document
}

// URL is the site path of the post.
func (p Post) URL() string {
	return BlogURL + "/" + p.Slug
}

type postMeta struct {
	Title       string          `yaml:"title"`
	Author      string          `yaml:"author"`
	Date        string          `yaml:"date"`
	Description string          `yaml:"description"`
	Numbered    bool            `yaml:"numbered"`
	Draft       bool            `yaml:"draft"`
	References  biblio.Database `yaml:"references"`
}

// LoadPosts parses every supported file in dir, skipping drafts, newest first.
// A missing directory yields no posts.
func LoadPosts(dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}

	var posts []Post
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := parseFile(path)
		if err != nil {
			return nil, err
		}

		var meta postMeta
		if err := doc.Decode(&meta); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if meta.Draft {
			continue
		}
		date, err := ParseDate(meta.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		title := meta.Title
		if title == "" {
			title = doc.Title
		}
		posts = append(posts, Post{
			Slug:        parser.Stem(e.Name()),
			Title:       title,
			Author:      meta.Author,
			Date:        date,
			Description: meta.Description,
			Numbered:    meta.Numbered,
			References:  meta.References,
			Doc:         doc,
		})
	}

	SortByDate(posts, func(p Post) time.Time { return p.Date })
	return posts, nil
}

// ExternalPost is a post published elsewhere and linked from the blog index.
type ExternalPost struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
	Link  string `yaml:"link"`
}

// LoadExternalPosts reads a YAML list of external posts. A missing file
// yields none.
func LoadExternalPosts(path string) ([]ExternalPost, error) {
	var posts []ExternalPost
	if err := loadYAML(path, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// IndexEntry is one line of the blog index.
type IndexEntry struct {
	Title       string
	Date        time.Time
	Href        string
	External    bool
	Author      string
	Description string
}

// BlogIndex merges internal and external posts, newest first.
func BlogIndex(posts []Post, external []ExternalPost, excerptWords int) ([]IndexEntry, error) {
	entries := make([]IndexEntry, 0, len(posts)+len(external))
	for _, p := range posts {
		desc := p.Description
		if desc == "" && p.Doc != nil {
			desc = Excerpt(p.Doc.Text(), excerptWords)
		}
		entries = append(entries, IndexEntry{
			Title:       p.Title,
			Date:        p.Date,
			Href:        p.URL(),
			Author:      p.Author,
			Description: desc,
		})
	}
	for _, e := range external {
		date, err := ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("external post %q: %w", e.Title, err)
		}
		entries = append(entries, IndexEntry{
			Title:    e.Title,
			Date:     date,
			Href:     e.Link,
			External: true,
		})
	}
	SortByDate(entries, func(e IndexEntry) time.Time { return e.Date })
	return entries, nil
}

// loadYAML unmarshals a YAML file into v, leaving v untouched if the file
// does not exist.
func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
