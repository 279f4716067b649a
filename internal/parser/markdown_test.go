package parser

import (
	"strings"
	"testing"

	"github.com/cryptoresearch/labsite/internal/dom"
	"golang.org/x/net/html"
)

func headings(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func TestMarkdownParser_FrontMatterAndHeadings(t *testing.T) {
	input := `---
title: Whisk in practice
author: Jane Doe
date: 2022-01-13
numbered: true
---

## Introduction

Intro text, see <span class="secref design"></span>.

### Background

Background text.

## Design {#design}

Design text.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "whisk.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Whisk in practice" {
		t.Errorf("expected title %q, got %q", "Whisk in practice", doc.Title)
	}

	var meta struct {
		Author   string `yaml:"author"`
		Numbered bool   `yaml:"numbered"`
	}
	if err := doc.Decode(&meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Author != "Jane Doe" || !meta.Numbered {
		t.Errorf("unexpected front matter %+v", meta)
	}

	hs := headings(doc.Root)
	if len(hs) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(hs))
	}
	wantTags := []string{"h2", "h3", "h2"}
	wantIDs := []string{"introduction", "background", "design"}
	for i := range hs {
		if hs[i].Data != wantTags[i] {
			t.Errorf("heading %d: expected %s, got %s", i, wantTags[i], hs[i].Data)
		}
		if got := dom.Attr(hs[i], "id"); got != wantIDs[i] {
			t.Errorf("heading %d: expected id %q, got %q", i, wantIDs[i], got)
		}
	}

	// Raw HTML markers survive rendering.
	marker := dom.Find(doc.Root, func(n *html.Node) bool { return dom.HasClass(n, "secref") })
	if marker == nil {
		t.Fatal("expected the secref marker to be kept")
	}

	if strings.Contains(doc.Text(), "numbered: true") {
		t.Error("front matter leaked into the body")
	}
}

func TestMarkdownParser_TitleFromHeading(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("# Legendre PRF\n\nSome text.\n"), "legendre.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Legendre PRF" {
		t.Errorf("expected title from h1, got %q", doc.Title)
	}
	if doc.FrontMatter != nil {
		t.Errorf("expected no front matter, got %q", doc.FrontMatter)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Root.FirstChild != nil {
		t.Errorf("expected no content for empty input")
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"posts/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		doc, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if doc.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, doc.Title)
		}
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantFM   string
		wantBody string
	}{
		{"none", "# Hi\n", "", "# Hi\n"},
		{"basic", "---\ntitle: x\n---\nbody\n", "title: x\n", "body\n"},
		{"crlf", "---\r\ntitle: x\r\n---\r\nbody", "title: x\r\n", "body"},
		{"unterminated", "---\ntitle: x\nbody", "", "---\ntitle: x\nbody"},
		{"eof", "---\ntitle: x\n---", "title: x\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := splitFrontMatter([]byte(tt.input))
			if string(fm) != tt.wantFM {
				t.Errorf("front matter: expected %q, got %q", tt.wantFM, fm)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body: expected %q, got %q", tt.wantBody, body)
			}
		})
	}
}
