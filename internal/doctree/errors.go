package doctree

import "fmt"

// Reference kinds reported by UnresolvedReferenceError.
const (
	KindSection  = "section"
	KindCitation = "citation"
)

// UnresolvedReferenceError reports a marker whose key matches no heading
// or bibliography entry.
type UnresolvedReferenceError struct {
	Kind string
	Key  string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s reference marker has no key", e.Kind)
	}
	return fmt.Sprintf("unresolved %s reference %q", e.Kind, e.Key)
}

// MalformedOutlineWarning reports a subsection with no preceding section.
// It is not fatal; the heading is left unnumbered.
type MalformedOutlineWarning struct {
	Heading Heading
}

func (w *MalformedOutlineWarning) Error() string {
	return fmt.Sprintf("subsection %q at position %d has no preceding section", w.Heading.Text, w.Heading.Position)
}

// DuplicateIDWarning reports an element whose id equals an id generated for
// a numbered heading. The element loses its id so deep links stay unique.
type DuplicateIDWarning struct {
	ID  string
	Tag string
}

func (w *DuplicateIDWarning) Error() string {
	return fmt.Sprintf("<%s> already uses generated heading id %q; its id was removed", w.Tag, w.ID)
}
