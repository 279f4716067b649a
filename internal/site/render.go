package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/cryptoresearch/labsite/internal/annotate"
	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/content"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/parser"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Page is one rendered output file.
type Page struct {
	URL  string
	Path string // Relative to the output directory
	Body []byte
}

type job struct {
	url    string
	render func() ([]byte, error)
}

// siteContent is everything loaded from the content directory.
type siteContent struct {
	refs     biblio.Database
	posts    []content.Post
	external []content.ExternalPost
	bounties []content.Bounty
	pubs     []content.Publication
	team     []content.Member
	events   []content.Event
	legacy   []content.LegacyPage
	intros   map[string]template.HTML
}

var introPages = []string{"home", "research", "team", "bounties"}

func (b *Builder) load() (*siteContent, error) {
	var sc siteContent
	var err error

	if sc.refs, err = b.References(); err != nil {
		return nil, err
	}
	if sc.posts, err = content.LoadPosts(b.cfg.PostsDir()); err != nil {
		return nil, err
	}
	if sc.external, err = content.LoadExternalPosts(filepath.Join(b.cfg.DataDir(), "external_posts.yaml")); err != nil {
		return nil, err
	}
	if sc.bounties, err = content.LoadBounties(b.cfg.BountiesDir()); err != nil {
		return nil, err
	}
	sc.pubs, err = content.LoadPublications(filepath.Join(b.cfg.DataDir(), "publications.yaml"), content.PublicationOptions{
		StaticDir:        b.cfg.StaticDir(),
		PDFFallback:      b.cfg.PDFFallbackPdftotext,
		AbstractMaxWords: 120,
	})
	if err != nil {
		return nil, err
	}
	if sc.team, err = content.LoadTeam(filepath.Join(b.cfg.DataDir(), "team.csv")); err != nil {
		return nil, err
	}
	if sc.events, err = content.LoadEvents(filepath.Join(b.cfg.DataDir(), "events.yaml")); err != nil {
		return nil, err
	}
	if sc.legacy, err = content.LoadLegacyPages(b.cfg.LegacyDir()); err != nil {
		return nil, err
	}

	sc.intros = map[string]template.HTML{}
	for _, name := range introPages {
		path := filepath.Join(b.cfg.ContentDir, "pages", name+".md")
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		doc, err := (&parser.MarkdownParser{}).Parse(f, name+".md")
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("intro %s: %w", name, err)
		}
		body, err := doc.Body()
		if err != nil {
			return nil, err
		}
		sc.intros[name] = template.HTML(body)
	}

	return &sc, nil
}

// Render loads all content and renders every page in memory. Annotation
// problems are recorded in the report; only content and template failures
// return an error.
func (b *Builder) Render(ctx context.Context) ([]Page, *Report, error) {
	report := &Report{Diagnostics: []Diagnostic{}}

	sc, err := b.load()
	if err != nil {
		return nil, report, fmt.Errorf("load content: %w", err)
	}

	jobs, err := b.jobs(sc, report)
	if err != nil {
		return nil, report, err
	}

	pages := make([]Page, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.cfg.BuildWorkers))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			body, err := j.render()
			if err != nil {
				return fmt.Errorf("render %s: %w", j.url, err)
			}
			pages[i] = Page{URL: j.url, Path: outputPath(j.url), Body: body}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	for _, p := range pages {
		report.Pages = append(report.Pages, p.URL)
	}
	report.sort()
	return pages, report, nil
}

func (b *Builder) jobs(sc *siteContent, report *Report) ([]job, error) {
	site := b.siteData()
	var jobs []job

	templated := func(url, tmpl string, data pageData) job {
		data.Site = site
		return job{url: url, render: func() ([]byte, error) {
			var buf bytes.Buffer
			if err := b.tmpl.execute(&buf, tmpl, data); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}}
	}

	index, err := content.BlogIndex(sc.posts, sc.external, b.cfg.ExcerptWords)
	if err != nil {
		return nil, err
	}
	recent := index[:min(5, len(index))]

	jobs = append(jobs,
		templated(content.HomeURL, "home", pageData{
			Active: content.HomeURL,
			Data:   map[string]any{"Intro": sc.intros["home"], "Recent": recent},
		}),
		templated(content.BlogURL, "blog", pageData{
			Title:  "Blog",
			Active: content.BlogURL,
			Data:   map[string]any{"Entries": index},
		}),
		templated(content.ResearchURL, "research", pageData{
			Title:  "Research",
			Active: content.ResearchURL,
			Data:   map[string]any{"Intro": sc.intros["research"], "Publications": sc.pubs},
		}),
		templated(content.TeamURL, "team", pageData{
			Title:       "Team",
			Description: "About the team behind the group's cryptography research.",
			Active:      content.TeamURL,
			Data:        map[string]any{"Intro": sc.intros["team"], "Members": sc.team},
		}),
		templated(content.EventsURL, "events", pageData{
			Title:  "Events",
			Active: content.EventsURL,
			Data:   map[string]any{"Events": sc.events},
		}),
	)

	var top []content.Bounty
	for _, bt := range sc.bounties {
		if bt.TopLevel() {
			top = append(top, bt)
		}
	}
	jobs = append(jobs, templated(content.BountiesURL, "bounties", pageData{
		Title:  "Bounties",
		Active: content.BountiesURL,
		Data:   map[string]any{"Intro": sc.intros["bounties"], "Bounties": top},
	}))

	for _, p := range sc.posts {
		p := p
		jobs = append(jobs, job{url: p.URL(), render: func() ([]byte, error) {
			body, err := b.annotateDoc(p.URL(), p.Doc, sc.refs.Merge(p.References), p.Numbered, report)
			if err != nil {
				return nil, err
			}
			data := pageData{
				Site:        site,
				Title:       p.Title,
				Description: p.Description,
				Active:      content.BlogURL,
				Data: map[string]any{
					"Title":   p.Title,
					"Author":  p.Author,
					"Date":    p.Date,
					"Minutes": content.ReadingMinutes(p.Doc.Text()),
					"Body":    body,
				},
			}
			var buf bytes.Buffer
			if err := b.tmpl.execute(&buf, "post", data); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}})
	}

	for _, bt := range sc.bounties {
		bt := bt
		children := content.Children(sc.bounties, bt.Path)
		jobs = append(jobs, job{url: bt.URL(), render: func() ([]byte, error) {
			body, err := b.annotateDoc(bt.URL(), bt.Doc, sc.refs.Merge(bt.References), bt.Numbered, report)
			if err != nil {
				return nil, err
			}
			data := pageData{
				Site:        site,
				Title:       bt.Title,
				Description: bt.Description,
				Active:      content.BountiesURL,
				Data: map[string]any{
					"Title":       bt.Title,
					"TotalBounty": bt.TotalBounty,
					"Body":        body,
					"Children":    children,
				},
			}
			var buf bytes.Buffer
			if err := b.tmpl.execute(&buf, "bounty", data); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}})
	}

	for _, lp := range sc.legacy {
		lp := lp
		jobs = append(jobs, job{url: lp.URL(), render: func() ([]byte, error) {
			if _, err := b.annotateDoc(lp.URL(), lp.Doc, sc.refs.Merge(lp.References), true, report); err != nil {
				return nil, err
			}
			out, err := dom.Render(lp.Doc.Full)
			if err != nil {
				return nil, err
			}
			return []byte(out), nil
		}})
	}

	return jobs, nil
}

// annotateDoc numbers the document when requested and returns its rendered
// body. Unresolved references and outline warnings go to the report.
func (b *Builder) annotateDoc(page string, doc *parser.Document, refs biblio.Database, numbered bool, report *Report) (template.HTML, error) {
	opts := b.AnnotateOptions()
	root := doc.Root
	if doc.Full != nil {
		root = doc.Full
	}

	if !numbered {
		scan := annotate.Scan(root, opts)
		if n := len(scan.Markers) + len(scan.Citations); n > 0 {
			err := fmt.Errorf("%d reference marker(s) left as-is because numbering is off", n)
			report.add(page, SeverityWarning, err)
			b.log.Warn("reference markers on unnumbered page", "page", page, "markers", n)
		}
	} else {
		if doc.Full == nil {
			ensureContainers(doc.Root, opts)
		}
		res, err := annotate.Annotate(root, refs, opts)
		for _, w := range res.Warnings {
			report.add(page, SeverityWarning, w)
			b.log.Warn("outline warning", "page", page, "warning", w)
		}
		for _, e := range flatten(err) {
			report.add(page, SeverityError, e)
			b.log.Error("unresolved reference", "page", page, "error", e, "applied", res.Applied)
		}
		if res.Plan.Outline.Len() > 0 {
			b.log.Debug("numbered page", "page", page, "headings", res.Plan.Outline.Len(), "citations", len(res.Bibliography.Items))
		}
	}

	body, err := doc.Body()
	if err != nil {
		return "", err
	}
	return template.HTML(body), nil
}

// ensureContainers adds the TOC and bibliography containers to a fragment
// that does not carry its own. A heading whose id happens to be a container
// id does not count.
func ensureContainers(root *html.Node, opts annotate.Options) {
	scan := annotate.Scan(root, opts)
	if scan.TOC == nil {
		root.InsertBefore(dom.Element("div", []string{"id", annotate.TOCContainerID}), root.FirstChild)
	}
	if scan.References == nil {
		root.AppendChild(dom.Element("div", []string{"id", annotate.ReferenceContainerID}))
	}
}

// flatten unwraps joined errors into their leaves.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// outputPath maps a site URL to a file below the output directory.
func outputPath(url string) string {
	trimmed := strings.Trim(url, "/")
	if trimmed == "" {
		return "index.html"
	}
	if strings.HasSuffix(trimmed, ".html") {
		return filepath.FromSlash(trimmed)
	}
	return filepath.FromSlash(trimmed + "/index.html")
}
