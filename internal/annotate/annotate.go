// Package annotate applies section numbering, cross-reference links, the
// table of contents and the bibliography to a parsed HTML document.
package annotate

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/doctree"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/outline"
	"golang.org/x/net/html"
)

// Result describes what was done to a document.
type Result struct {
	Plan         *outline.Plan
	Bibliography *biblio.Bibliography
	Warnings     []error // Non-fatal outline and id problems
	Applied      bool
}

// Annotate scans root, computes the numbering and bibliography, and applies
// them. It must be called once per document.
//
// Unresolved section or citation references are returned as a joined error
// of *doctree.UnresolvedReferenceError. With opts.Strict the document is left
// untouched in that case; otherwise every resolvable edit is applied and
// unresolved markers render as "??".
func Annotate(root *html.Node, db biblio.Database, opts Options) (*Result, error) {
	doc := Scan(root, opts)

	plan, refErr := outline.NewPlan(doc.Headings, doc.Markers)
	bib, citeErr := biblio.Number(doc.Citations, db)
	err := errors.Join(refErr, citeErr)

	collisions := doc.idCollisions(plan.Headings)
	warnings := slices.Clone(plan.Warnings)
	for _, n := range collisions {
		warnings = append(warnings, &doctree.DuplicateIDWarning{ID: dom.Attr(n, "id"), Tag: n.Data})
	}

	res := &Result{Plan: plan, Bibliography: bib, Warnings: warnings}
	if err != nil && opts.Strict {
		return res, err
	}

	for _, n := range collisions {
		dom.RemoveAttr(n, "id")
	}
	doc.applyHeadings(plan.Headings)
	doc.applyMarkers(plan.Markers)
	doc.applyCitations(bib.Citations)

	if doc.TOC != nil {
		dom.RemoveChildren(doc.TOC)
		doc.TOC.AppendChild(RenderTOC(plan.TOC))
	}
	if doc.References != nil && !bib.Empty() {
		dom.RemoveChildren(doc.References)
		doc.References.AppendChild(RenderBibliography(bib))
	}

	res.Applied = true
	return res, err
}

// AnnotateHTML parses a full HTML document from r, annotates it and returns
// the rendered result. The rendered bytes are nil when nothing was applied.
func AnnotateHTML(r io.Reader, db biblio.Database, opts Options) ([]byte, *Result, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	res, err := Annotate(root, db, opts)
	if !res.Applied {
		return nil, res, err
	}
	out, renderErr := dom.Render(root)
	if renderErr != nil {
		return nil, res, fmt.Errorf("render html: %w", renderErr)
	}
	return []byte(out), res, err
}
