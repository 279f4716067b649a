// Package site renders the whole website from the content directory.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cryptoresearch/labsite/internal/annotate"
	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/config"
	"github.com/cryptoresearch/labsite/internal/content"
)

// Severity of a build diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a problem found while rendering one page.
type Diagnostic struct {
	Page     string   `json:"page"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report summarises a build or check run.
type Report struct {
	Pages       []string      `json:"pages"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	Duration    time.Duration `json:"duration"`

	mu sync.Mutex
}

func (r *Report) add(page string, sev Severity, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Page: page, Severity: sev, Message: err.Error()})
}

// Errors returns the error diagnostics.
func (r *Report) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) sort() {
	sort.Strings(r.Pages)
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		return r.Diagnostics[i].Page < r.Diagnostics[j].Page
	})
}

// Builder renders the site.
type Builder struct {
	cfg  config.Config
	log  *slog.Logger
	tmpl templates
}

// New creates a Builder and parses the page templates.
func New(cfg config.Config, log *slog.Logger) (*Builder, error) {
	t, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg, log: log, tmpl: t}, nil
}

// AnnotateOptions returns the annotation settings derived from config.
func (b *Builder) AnnotateOptions() annotate.Options {
	return annotate.Options{
		SectionTag:    b.cfg.SectionTag,
		SubsectionTag: b.cfg.SubsectionTag,
		Strict:        b.cfg.StrictReferences,
	}
}

// References loads the site-wide bibliography.
func (b *Builder) References() (biblio.Database, error) {
	return biblio.LoadDatabase(b.cfg.ReferencesFile())
}

// Build renders every page and writes the output directory. It fails if any
// page has unresolved references and references are strict.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	pages, report, err := b.Render(ctx)
	if err != nil {
		return report, err
	}
	if err := b.failOnErrors(report); err != nil {
		return report, err
	}

	if err := writePages(b.cfg.OutputDir, pages); err != nil {
		return report, err
	}
	n, err := copyStatic(b.cfg.StaticDir(), b.cfg.OutputDir)
	if err != nil {
		return report, err
	}

	report.Duration = time.Since(start)
	b.log.Info("site built",
		"pages", len(pages),
		"static_files", n,
		"diagnostics", len(report.Diagnostics),
		"duration_ms", report.Duration.Milliseconds(),
		"output", b.cfg.OutputDir,
	)
	return report, nil
}

// Check renders every page without writing anything and reports all
// diagnostics. It fails on any error diagnostic regardless of strictness.
func (b *Builder) Check(ctx context.Context) (*Report, error) {
	start := time.Now()
	_, report, err := b.Render(ctx)
	if err != nil {
		return report, err
	}
	report.Duration = time.Since(start)
	if errs := report.Errors(); len(errs) > 0 {
		return report, fmt.Errorf("%d page error(s), first: %s: %s", len(errs), errs[0].Page, errs[0].Message)
	}
	return report, nil
}

func (b *Builder) failOnErrors(report *Report) error {
	errs := report.Errors()
	if len(errs) == 0 || !b.cfg.StrictReferences {
		return nil
	}
	return fmt.Errorf("%d page error(s), first: %s: %s", len(errs), errs[0].Page, errs[0].Message)
}

func (b *Builder) siteData() siteData {
	return siteData{
		Title:      b.cfg.SiteTitle,
		TitleShort: b.cfg.SiteTitleShort,
		BaseURL:    b.cfg.BaseURL,
		Nav:        content.NavLinks,
		Year:       time.Now().Year(),
	}
}
