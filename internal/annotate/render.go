package annotate

import (
	"strconv"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/outline"
	"golang.org/x/net/html"
)

// RenderTOC builds the navigation widget for a TOC. An empty TOC renders
// the widget with no entries.
func RenderTOC(toc outline.TOC) *html.Node {
	sections := dom.Element("div", []string{"class", "toc-sections-container"})
	for _, s := range toc.Sections {
		sec := dom.Element("div", []string{"class", "toc-section"},
			dom.Element("div", []string{"class", "toc-section-title"},
				dom.Element("a", []string{"href", s.Href},
					dom.Element("span", []string{"class", "toc-section-number"}, dom.Text(s.Label+". ")),
					dom.Text(s.Text),
				),
			),
		)
		for _, sub := range s.Subsections {
			sec.AppendChild(dom.Element("div", []string{"class", "toc-sub-section"},
				dom.Element("div", []string{"class", "toc-sub-section-title"},
					dom.Element("a", []string{"href", sub.Href},
						dom.Element("span", []string{"class", "toc-sub-section-number"}, dom.Text(sub.Label+" ")),
						dom.Text(sub.Text),
					),
				),
			))
		}
		sections.AppendChild(sec)
	}

	return dom.Element("nav", []string{"class", "toc-container"},
		dom.Element("div", []string{"class", "toc-container-title"}, dom.Text("Table of contents")),
		sections,
	)
}

// RenderBibliography builds the reference list.
func RenderBibliography(b *biblio.Bibliography) *html.Node {
	container := dom.Element("div", []string{"class", "reference-container"},
		dom.Element("div", []string{"class", "footer-sub-title"}, dom.Text("References.")),
	)
	if b == nil {
		return container
	}
	for _, it := range b.Items {
		container.AppendChild(referenceItem(it))
	}
	return container
}

func referenceItem(it biblio.Item) *html.Node {
	number := dom.Element("div", []string{"class", "reference-item-number"},
		dom.Element("a", []string{"href", "#" + it.Anchor}, dom.Text("["+strconv.Itoa(it.Index)+"] ")),
	)

	var body *html.Node
	if it.IsFootnote() {
		body = dom.Element("div", []string{"class", "reference-item"}, dom.Text(it.Content))
	} else {
		details := dom.Element("div", []string{"class", "reference-details"}, dom.Text(it.Author+", "+it.Year))
		if it.URL != "" {
			details.AppendChild(dom.Element("span", nil,
				dom.Text(" "),
				dom.Element("a", []string{"href", it.URL, "target", "_blank"}, dom.Text("[Link]")),
			))
		}
		details.AppendChild(dom.Text("."))
		body = dom.Element("div", []string{"class", "reference-item"},
			dom.Element("div", []string{"class", "reference-title"}, dom.Text(it.Title)),
			details,
		)
	}

	return dom.Element("div", []string{"class", "reference-item-container", "id", "bib-" + strconv.Itoa(it.Index)},
		number,
		body,
	)
}
