package outline

import (
	"cmp"
	"slices"

	"github.com/cryptoresearch/labsite/internal/doctree"
)

// Scan groups headings into a numbered two-level outline.
//
// Headings are taken in Position order. Sections are numbered 1..N and the
// subsections of each section 1..k. A subsection always belongs to the
// nearest preceding section; subsections that appear before any section are
// kept aside as orphans, left unnumbered, and reported as
// *doctree.MalformedOutlineWarning.
func Scan(headings []doctree.Heading) (*doctree.Outline, []error) {
	ordered := slices.Clone(headings)
	slices.SortStableFunc(ordered, func(a, b doctree.Heading) int {
		return cmp.Compare(a.Position, b.Position)
	})

	o := &doctree.Outline{}
	var warnings []error

	for _, h := range ordered {
		switch h.Level {
		case doctree.Section:
			o.Sections = append(o.Sections, doctree.SectionEntry{
				Node: doctree.Node{
					Heading: h,
					Number:  doctree.Number{Section: len(o.Sections) + 1},
				},
			})

		case doctree.Subsection:
			if len(o.Sections) == 0 {
				o.Orphans = append(o.Orphans, h)
				warnings = append(warnings, &doctree.MalformedOutlineWarning{Heading: h})
				continue
			}
			parent := &o.Sections[len(o.Sections)-1]
			parent.Subsections = append(parent.Subsections, doctree.Node{
				Heading: h,
				Number: doctree.Number{
					Section:    parent.Number.Section,
					Subsection: len(parent.Subsections) + 1,
				},
			})
		}
	}

	return o, warnings
}

// HeadingEdit tells the document boundary how to label one heading.
type HeadingEdit struct {
	Position int
	Level    doctree.Level
	ID       string // Stable id, e.g. "subsec-2-3"
	Label    string // "2.3"
	Prefix   string // "2.3. "
	Text     string // Original heading text
}

// Number returns one edit per numbered heading, in document order.
// Orphans get no edit.
func Number(o *doctree.Outline) []HeadingEdit {
	nodes := o.Flatten()
	edits := make([]HeadingEdit, 0, len(nodes))
	for _, n := range nodes {
		edits = append(edits, HeadingEdit{
			Position: n.Position,
			Level:    n.Level,
			ID:       n.Number.ID(),
			Label:    n.Number.Label(),
			Prefix:   n.Number.Prefix(),
			Text:     n.Text,
		})
	}
	return edits
}
