// Package outline numbers the sections and subsections of a document,
// resolves cross-references to them and builds the table of contents.
//
// Everything here is a pure function of the headings and markers passed in.
// Applying the result to a live document is the caller's job.
package outline

import "github.com/cryptoresearch/labsite/internal/doctree"

// Plan is the full set of instructions for one document render.
type Plan struct {
	Outline  *doctree.Outline
	Headings []HeadingEdit
	Markers  []MarkerEdit
	TOC      TOC
	Warnings []error // *doctree.MalformedOutlineWarning
}

// NewPlan scans, numbers, resolves and builds the TOC in that order.
// The returned error is non-nil only for unresolved references; the plan is
// always returned so callers may apply the resolvable parts.
func NewPlan(headings []doctree.Heading, markers []doctree.Marker) (*Plan, error) {
	o, warnings := Scan(headings)
	edits, err := Resolve(o, markers)
	return &Plan{
		Outline:  o,
		Headings: Number(o),
		Markers:  edits,
		TOC:      BuildTOC(o),
		Warnings: warnings,
	}, err
}
