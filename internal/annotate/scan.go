package annotate

import (
	"strings"

	"github.com/cryptoresearch/labsite/internal/doctree"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/outline"
	"golang.org/x/net/html"
)

// Container ids the renderers write into.
const (
	TOCContainerID        = "toc"
	ReferenceContainerID  = "reference-container"
	sectionReferenceClass = "secref"
	citationClass         = "reference"
)

// Options controls which elements are treated as headings and how
// unresolved references are handled.
type Options struct {
	SectionTag    string // Default "h2"
	SubsectionTag string // Default "h3"
	Strict        bool   // Fail without touching the document on unresolved references
}

// DefaultOptions returns h2/h3 headings and strict resolution.
func DefaultOptions() Options {
	return Options{SectionTag: "h2", SubsectionTag: "h3", Strict: true}
}

func (o Options) withDefaults() Options {
	if o.SectionTag == "" {
		o.SectionTag = "h2"
	}
	if o.SubsectionTag == "" {
		o.SubsectionTag = "h3"
	}
	return o
}

// Document is the result of a single scan over an HTML tree. The exported
// slices are the immutable input to the numbering algorithm; the node slices
// are parallel to them and used only to apply the results.
type Document struct {
	Headings  []doctree.Heading
	Markers   []doctree.Marker
	Citations []doctree.Citation

	TOC        *html.Node // #toc, nil if absent
	References *html.Node // #reference-container, nil if absent

	headingNodes  []*html.Node
	markerNodes   []*html.Node
	citationNodes []*html.Node
	idNodes       []*html.Node // Every scanned element carrying an id
}

// Scan walks root once in document order.
func Scan(root *html.Node, opts Options) *Document {
	opts = opts.withDefaults()
	d := &Document{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "template":
				return
			}

			switch n.Data {
			case opts.SectionTag:
				d.addHeading(n, doctree.Section)
			case opts.SubsectionTag:
				d.addHeading(n, doctree.Subsection)
			default:
				// Headings are never containers, whatever their id.
				switch dom.Attr(n, "id") {
				case TOCContainerID:
					if d.TOC == nil {
						d.TOC = n
					}
					return // Rendered output, never scanned.
				case ReferenceContainerID:
					if d.References == nil {
						d.References = n
					}
					return
				}
			}
			if dom.HasAttr(n, "id") {
				d.idNodes = append(d.idNodes, n)
			}

			if dom.HasClass(n, sectionReferenceClass) {
				d.Markers = append(d.Markers, doctree.Marker{Index: len(d.Markers), Key: markerKey(n)})
				d.markerNodes = append(d.markerNodes, n)
				return
			}
			if dom.HasClass(n, citationClass) && dom.HasAttr(n, "refid") {
				d.Citations = append(d.Citations, doctree.Citation{
					Index: len(d.Citations),
					Keys:  strings.Fields(dom.Attr(n, "refid")),
				})
				d.citationNodes = append(d.citationNodes, n)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return d
}

func (d *Document) addHeading(n *html.Node, level doctree.Level) {
	key := dom.Attr(n, "data-key")
	if key == "" {
		key = dom.Attr(n, "id")
	}
	d.Headings = append(d.Headings, doctree.Heading{
		Text:     dom.TextContent(n),
		Level:    level,
		Key:      key,
		Position: len(d.Headings),
	})
	d.headingNodes = append(d.headingNodes, n)
}

// markerKey reads data-ref, falling back to the class token right after
// "secref". A marker with neither has an empty key.
func markerKey(n *html.Node) string {
	if k := dom.Attr(n, "data-ref"); k != "" {
		return k
	}
	classes := dom.Classes(n)
	for i, c := range classes {
		if c == sectionReferenceClass && i+1 < len(classes) && classes[i+1] != unresolvedClass {
			return classes[i+1]
		}
	}
	return ""
}

// idCollisions returns the scanned elements, other than the heading being
// numbered, whose id equals a generated heading id.
func (d *Document) idCollisions(edits []outline.HeadingEdit) []*html.Node {
	owner := make(map[string]*html.Node, len(edits))
	for _, e := range edits {
		owner[e.ID] = d.headingNodes[e.Position]
	}
	var out []*html.Node
	for _, n := range d.idNodes {
		if h, ok := owner[dom.Attr(n, "id")]; ok && h != n {
			out = append(out, n)
		}
	}
	return out
}
