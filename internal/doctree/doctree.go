package doctree

import "fmt"

// Level is the outline depth of a heading.
type Level int

const (
	Section    Level = 1
	Subsection Level = 2
)

func (l Level) String() string {
	switch l {
	case Section:
		return "section"
	case Subsection:
		return "subsection"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Heading is a heading discovered in a rendered document.
type Heading struct {
	Text     string `json:"text"` // Displayed heading text, without any number prefix
	Level    Level  `json:"level"`
	Key      string `json:"key,omitempty"` // Author-assigned id used by cross-references
	Position int    `json:"position"`    // Index in document order
}

// Number is the numeric position of a heading in the outline.
// Subsection is 0 for sections.
type Number struct {
	Section    int `json:"section"`
	Subsection int `json:"subsection,omitempty"`
}

// Label returns "2" for a section and "2.3" for a subsection.
func (n Number) Label() string {
	if n.Subsection == 0 {
		return fmt.Sprintf("%d", n.Section)
	}
	return fmt.Sprintf("%d.%d", n.Section, n.Subsection)
}

// Prefix is the text written in front of the heading, e.g. "2.3. ".
func (n Number) Prefix() string {
	return n.Label() + ". "
}

// ID is the stable element id derived from the number.
func (n Number) ID() string {
	if n.Subsection == 0 {
		return fmt.Sprintf("sec-%d", n.Section)
	}
	return fmt.Sprintf("subsec-%d-%d", n.Section, n.Subsection)
}

// Node is a numbered heading.
type Node struct {
	Heading
	Number Number `json:"number"`
}

// SectionEntry is a numbered section heading and its subsections in order.
type SectionEntry struct {
	Node
	Subsections []Node `json:"subsections,omitempty"`
}

// Outline is the two-level structure derived from a document's headings.
type Outline struct {
	Sections []SectionEntry `json:"sections"`
	Orphans  []Heading      `json:"orphans,omitempty"` // Subsections found before the first section
}

// Len returns the number of numbered headings.
func (o *Outline) Len() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, s := range o.Sections {
		n += 1 + len(s.Subsections)
	}
	return n
}

// Flatten returns every numbered heading in document order.
func (o *Outline) Flatten() []Node {
	if o == nil {
		return nil
	}
	nodes := make([]Node, 0, o.Len())
	for _, s := range o.Sections {
		nodes = append(nodes, s.Node)
		nodes = append(nodes, s.Subsections...)
	}
	return nodes
}

// Lookup finds a numbered heading by its author key.
func (o *Outline) Lookup(key string) (Node, bool) {
	if key == "" {
		return Node{}, false
	}
	for _, n := range o.Flatten() {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// Marker is an inline cross-reference to a heading.
type Marker struct {
	Index int    // Index among markers in document order
	Key   string // Target heading key
}

// Citation is an inline bibliography citation carrying one or more keys.
type Citation struct {
	Index int
	Keys  []string
}
