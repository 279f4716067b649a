package outline

import (
	"errors"

	"github.com/cryptoresearch/labsite/internal/doctree"
)

// MarkerEdit tells the document boundary how to rewrite one reference marker.
type MarkerEdit struct {
	Index int
	Key   string
	Href  string // "#sec-2"
	Label string // "2"
}

// Resolve maps each marker to the numbered heading carrying its key.
//
// Markers that resolve produce an edit. Every marker whose key matches no
// numbered heading produces a *doctree.UnresolvedReferenceError; those are
// joined into the returned error, and the edits for the other markers are
// still returned. Resolve has no side effects, so resolving the same marker
// twice yields the same label.
func Resolve(o *doctree.Outline, markers []doctree.Marker) ([]MarkerEdit, error) {
	index := keyIndex(o)

	var edits []MarkerEdit
	var errs []error
	for _, m := range markers {
		n, ok := index[m.Key]
		if !ok {
			errs = append(errs, &doctree.UnresolvedReferenceError{Kind: doctree.KindSection, Key: m.Key})
			continue
		}
		edits = append(edits, MarkerEdit{
			Index: m.Index,
			Key:   m.Key,
			Href:  "#" + n.Number.ID(),
			Label: n.Number.Label(),
		})
	}
	return edits, errors.Join(errs...)
}

// keyIndex maps author keys to nodes. With duplicate keys the first heading wins.
func keyIndex(o *doctree.Outline) map[string]doctree.Node {
	index := make(map[string]doctree.Node)
	for _, n := range o.Flatten() {
		if n.Key == "" {
			continue
		}
		if _, dup := index[n.Key]; !dup {
			index[n.Key] = n
		}
	}
	return index
}
