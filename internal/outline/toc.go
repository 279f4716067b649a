package outline

import "github.com/cryptoresearch/labsite/internal/doctree"

// TOCLink is one navigable entry of the table of contents.
type TOCLink struct {
	Href  string `json:"href"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// TOCSection is a section link and its subsection links.
type TOCSection struct {
	TOCLink
	Subsections []TOCLink `json:"subsections,omitempty"`
}

// TOC is the two-level navigation built from an outline.
type TOC struct {
	Sections []TOCSection `json:"sections"`
}

// Empty reports whether the TOC has no entries.
func (t TOC) Empty() bool {
	return len(t.Sections) == 0
}

// BuildTOC walks the outline and produces the navigation links.
func BuildTOC(o *doctree.Outline) TOC {
	toc := TOC{Sections: []TOCSection{}}
	if o == nil {
		return toc
	}
	for _, s := range o.Sections {
		ts := TOCSection{TOCLink: link(s.Node)}
		for _, sub := range s.Subsections {
			ts.Subsections = append(ts.Subsections, link(sub))
		}
		toc.Sections = append(toc.Sections, ts)
	}
	return toc
}

func link(n doctree.Node) TOCLink {
	return TOCLink{
		Href:  "#" + n.Number.ID(),
		Label: n.Number.Label(),
		Text:  n.Text,
	}
}
