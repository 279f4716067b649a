package annotate

import (
	"strconv"
	"strings"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/doctree"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/outline"
)

const unresolvedClass = "unresolved"

// applyHeadings writes ids, classes and number prefixes. Not idempotent:
// a second call would prepend a second prefix.
func (d *Document) applyHeadings(edits []outline.HeadingEdit) {
	for _, e := range edits {
		n := d.headingNodes[e.Position]

		class, numberClass := "section-title", "title-number"
		if e.Level == doctree.Subsection {
			class, numberClass = "section-sub-title", "sub-title-number"
		}
		dom.AddClass(n, class, "section-label")

		if key := dom.Attr(n, "id"); key != "" && !dom.HasAttr(n, "data-key") {
			dom.SetAttr(n, "data-key", key)
		}
		dom.SetAttr(n, "id", e.ID)

		prefix := dom.Element("a", []string{"href", "#" + TOCContainerID, "class", numberClass},
			dom.Text(e.Label+"."),
		)
		space := dom.Text(" ")
		n.InsertBefore(space, n.FirstChild)
		n.InsertBefore(prefix, space)
	}
}

// applyMarkers replaces each marker's content with a link to its heading.
// Markers without an edit are marked unresolved.
func (d *Document) applyMarkers(edits []outline.MarkerEdit) {
	resolved := make(map[int]bool, len(edits))
	for _, e := range edits {
		resolved[e.Index] = true
		n := d.markerNodes[e.Index]
		dom.RemoveChildren(n)
		n.AppendChild(dom.Element("a", []string{"href", e.Href}, dom.Text(e.Label)))
	}
	for i, n := range d.markerNodes {
		if resolved[i] {
			continue
		}
		dom.RemoveChildren(n)
		dom.AddClass(n, unresolvedClass)
		n.AppendChild(dom.Text("??"))
	}
}

// applyCitations renders " [1, 2]" links and sets back-reference anchors.
func (d *Document) applyCitations(edits []biblio.CitationEdit) {
	for _, e := range edits {
		n := d.citationNodes[e.Index]
		if e.ID != "" {
			dom.SetAttr(n, "id", e.ID)
		}
		dom.RemoveChildren(n)
		n.AppendChild(dom.Element("a", []string{"href", "#" + ReferenceContainerID},
			dom.Text(" ["+citationLabel(e.Numbers)+"]"),
		))
	}
}

func citationLabel(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		if n == 0 {
			parts[i] = "??"
			continue
		}
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
