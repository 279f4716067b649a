// Package content loads the site's posts, bounties, publications, team and
// events from the content directory.
package content

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cryptoresearch/labsite/internal/parser"
)

// Site URLs.
const (
	HomeURL     = "/"
	BlogURL     = "/blog"
	ResearchURL = "/research"
	TeamURL     = "/team"
	EventsURL   = "/events"
	BountiesURL = "/bounties"
)

// NavLink is an entry of the top navigation.
type NavLink struct {
	Href string
	Text string
}

// NavLinks is the top navigation in display order.
var NavLinks = []NavLink{
	{Href: HomeURL, Text: "home"},
	{Href: BlogURL, Text: "blog"},
	{Href: ResearchURL, Text: "research"},
	{Href: BountiesURL, Text: "bounties"},
	{Href: TeamURL, Text: "team"},
	{Href: EventsURL, Text: "events"},
}

// ParseDate accepts "2006-01-02" and RFC 3339 dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// FormatDate renders a date as "August 4, 2022" in UTC.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("January 2, 2006")
}

// SortByDate sorts newest first. Equal dates keep their order.
func SortByDate[T any](items []T, date func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(date(b).UnixNano(), date(a).UnixNano())
	})
}

// parseFile opens and parses a content file with the parser for its extension.
func parseFile(path string) (*parser.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
