package annotate

import (
	"errors"
	"strings"
	"testing"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/doctree"
	"github.com/cryptoresearch/labsite/internal/dom"
	"github.com/cryptoresearch/labsite/internal/outline"
	"github.com/cryptoresearch/labsite/internal/parser"
	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html><head><title>Notes</title></head><body>
<div id="toc"></div>
<h2 id="intro">Intro</h2>
<p>See <span class="secref methods"></span> and <span class="secref" data-ref="background"></span>.
Cited <span class="reference" refid="a b"></span>, again <span class="reference" refid="b"></span>
and <span class="reference" refid="c"></span>.</p>
<h3 id="background">Background</h3>
<h2 id="methods">Methods</h2>
<div id="reference-container"></div>
</body></html>`

var testDB = biblio.Database{
	"a": {Title: "Paper A", Author: "Alice", Year: "2020"},
	"b": {Title: "Paper B", Author: "Bob", Year: "2021", URL: "https://example.org/b"},
	"c": {Content: "A footnote."},
}

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return root
}

func findAll(root *html.Node, fn func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if fn(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func TestAnnotate_EndToEnd(t *testing.T) {
	root := parse(t, page)

	res, err := Annotate(root, testDB, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected edits to be applied")
	}

	tests := []struct {
		id   string
		text string
	}{
		{"sec-1", "1. Intro"},
		{"subsec-1-1", "1.1. Background"},
		{"sec-2", "2. Methods"},
	}
	for _, tt := range tests {
		n := dom.FindByID(root, tt.id)
		if n == nil {
			t.Errorf("expected element with id %q", tt.id)
			continue
		}
		if got := dom.TextContent(n); got != tt.text {
			t.Errorf("id %s: expected %q, got %q", tt.id, tt.text, got)
		}
	}

	intro := dom.FindByID(root, "sec-1")
	if dom.Attr(intro, "data-key") != "intro" {
		t.Errorf("expected original id kept as data-key, got %q", dom.Attr(intro, "data-key"))
	}
	if !dom.HasClass(intro, "section-title") || !dom.HasClass(intro, "section-label") {
		t.Errorf("unexpected heading classes %q", dom.Attr(intro, "class"))
	}

	markers := findAll(root, func(n *html.Node) bool { return dom.HasClass(n, "secref") })
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	wantMarkers := []struct{ href, text string }{{"#sec-2", "2"}, {"#subsec-1-1", "1.1"}}
	for i, w := range wantMarkers {
		a := markers[i].FirstChild
		if !dom.IsElement(a, "a") || dom.Attr(a, "href") != w.href || dom.TextContent(a) != w.text {
			got, _ := dom.Render(markers[i])
			t.Errorf("marker %d: expected link %s %q, got %s", i, w.href, w.text, got)
		}
	}

	cites := findAll(root, func(n *html.Node) bool { return dom.HasClass(n, "reference") })
	wantCites := []string{"[1, 2]", "[2]", "[3]"}
	for i, w := range wantCites {
		if got := dom.TextContent(cites[i]); got != w {
			t.Errorf("citation %d: expected %q, got %q", i, w, got)
		}
	}
	if dom.Attr(cites[0], "id") != "ref-a" || dom.Attr(cites[1], "id") != "ref-b" {
		t.Errorf("unexpected citation anchors %q %q", dom.Attr(cites[0], "id"), dom.Attr(cites[1], "id"))
	}

	toc := dom.FindByID(root, TOCContainerID)
	links := findAll(toc, func(n *html.Node) bool { return dom.IsElement(n, "a") })
	var hrefs []string
	for _, l := range links {
		hrefs = append(hrefs, dom.Attr(l, "href"))
	}
	if got := strings.Join(hrefs, ","); got != "#sec-1,#subsec-1-1,#sec-2" {
		t.Errorf("unexpected TOC links %s", got)
	}

	refs := dom.FindByID(root, ReferenceContainerID)
	items := findAll(refs, func(n *html.Node) bool { return dom.HasClass(n, "reference-item-container") })
	if len(items) != 3 {
		t.Fatalf("expected 3 bibliography items, got %d", len(items))
	}
	if !strings.Contains(dom.TextContent(items[1]), "Paper B") || !strings.Contains(dom.TextContent(items[1]), "[Link]") {
		t.Errorf("unexpected second item %q", dom.TextContent(items[1]))
	}
	if !strings.Contains(dom.TextContent(items[2]), "A footnote.") {
		t.Errorf("unexpected footnote item %q", dom.TextContent(items[2]))
	}
}

func TestAnnotate_ResolutionSurvivesRescan(t *testing.T) {
	root := parse(t, page)
	first, err := Annotate(root, testDB, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again := Scan(root, DefaultOptions())
	o, _ := outline.Scan(again.Headings)
	edits, err := outline.Resolve(o, again.Markers)
	if err != nil {
		t.Fatalf("re-resolution failed: %v", err)
	}
	for i, e := range edits {
		if e.Label != first.Plan.Markers[i].Label {
			t.Errorf("marker %d: label changed from %q to %q", i, first.Plan.Markers[i].Label, e.Label)
		}
	}
}

func TestAnnotate_StrictUnresolvedLeavesDocument(t *testing.T) {
	src := `<html><body><h2 id="a">A</h2><p><span class="secref nowhere"></span></p></body></html>`
	root := parse(t, src)
	before, _ := dom.Render(root)

	res, err := Annotate(root, nil, DefaultOptions())
	var ure *doctree.UnresolvedReferenceError
	if !errors.As(err, &ure) {
		t.Fatalf("expected UnresolvedReferenceError, got %v", err)
	}
	if ure.Key != "nowhere" {
		t.Errorf("expected key nowhere, got %q", ure.Key)
	}
	if res.Applied {
		t.Error("strict mode must not apply edits")
	}
	after, _ := dom.Render(root)
	if before != after {
		t.Error("document changed despite strict failure")
	}
}

func TestAnnotate_LenientRendersPlaceholders(t *testing.T) {
	src := `<html><body><h2 id="a">A</h2>
<p><span class="secref a"></span> <span class="secref nowhere"></span> <span class="reference" refid="a ghost"></span></p>
</body></html>`
	root := parse(t, src)

	opts := DefaultOptions()
	opts.Strict = false
	res, err := Annotate(root, biblio.Database{"a": {Title: "A"}}, opts)
	if err == nil {
		t.Fatal("expected unresolved references to be reported")
	}
	if !res.Applied {
		t.Fatal("lenient mode should apply edits")
	}

	markers := findAll(root, func(n *html.Node) bool { return dom.HasClass(n, "secref") })
	if dom.TextContent(markers[0]) != "1" {
		t.Errorf("expected resolved marker label 1, got %q", dom.TextContent(markers[0]))
	}
	if dom.TextContent(markers[1]) != "??" || !dom.HasClass(markers[1], "unresolved") {
		t.Errorf("expected unresolved placeholder, got %q", dom.TextContent(markers[1]))
	}
	cite := findAll(root, func(n *html.Node) bool { return dom.HasClass(n, "reference") })[0]
	if dom.TextContent(cite) != "[1, ??]" {
		t.Errorf("expected [1, ??], got %q", dom.TextContent(cite))
	}
}

func TestAnnotate_ZeroHeadingsRendersEmptyTOC(t *testing.T) {
	root := parse(t, `<html><body><div id="toc"></div><p>Just text.</p></body></html>`)

	res, err := Annotate(root, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Plan.TOC.Empty() {
		t.Error("expected empty TOC")
	}
	toc := dom.FindByID(root, TOCContainerID)
	nav := toc.FirstChild
	if !dom.IsElement(nav, "nav") {
		t.Fatalf("expected nav widget, got %v", nav)
	}
	if links := findAll(nav, func(n *html.Node) bool { return dom.IsElement(n, "a") }); len(links) != 0 {
		t.Errorf("expected no links, got %d", len(links))
	}
}

func TestAnnotate_OrphanSubsectionWarns(t *testing.T) {
	root := parse(t, `<html><body><h3>Early</h3><h2>First</h2><h3>Child</h3></body></html>`)

	res, err := Annotate(root, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(res.Warnings))
	}
	h3s := findAll(root, func(n *html.Node) bool { return dom.IsElement(n, "h3") })
	if dom.TextContent(h3s[0]) != "Early" || dom.HasAttr(h3s[0], "id") {
		t.Errorf("orphan should be left alone, got %q", dom.TextContent(h3s[0]))
	}
	if dom.Attr(h3s[1], "id") != "subsec-1-1" {
		t.Errorf("expected subsec-1-1, got %q", dom.Attr(h3s[1], "id"))
	}
}

func TestScan_CustomTags(t *testing.T) {
	root := parse(t, `<html><body><h1>Top</h1><h2>Inner</h2><h3>Ignored</h3></body></html>`)

	doc := Scan(root, Options{SectionTag: "h1", SubsectionTag: "h2"})
	if len(doc.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(doc.Headings))
	}
	if doc.Headings[0].Level != doctree.Section || doc.Headings[1].Level != doctree.Subsection {
		t.Errorf("unexpected levels %v %v", doc.Headings[0].Level, doc.Headings[1].Level)
	}
}

func TestAnnotateHTML(t *testing.T) {
	out, res, err := AnnotateHTML(strings.NewReader(page), testDB, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Plan.Outline.Len() != 3 {
		t.Errorf("expected 3 numbered headings, got %d", res.Plan.Outline.Len())
	}
	if !strings.Contains(string(out), `id="subsec-1-1"`) {
		t.Errorf("expected rendered output to carry subsection id, got %s", out)
	}
}

func TestAnnotate_HeadingIDMatchingContainer(t *testing.T) {
	src := "## Intro\n\n## TOC\n\n## Methods\n\n## Reference Container\n"
	doc, err := (&parser.MarkdownParser{}).Parse(strings.NewReader(src), "post.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	res, err := Annotate(doc.Root, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Plan.Headings) != 4 {
		t.Fatalf("expected 4 numbered headings, got %d", len(res.Plan.Headings))
	}

	h2s := findAll(doc.Root, func(n *html.Node) bool { return dom.IsElement(n, "h2") })
	want := []struct{ id, key, text string }{
		{"sec-1", "intro", "1. Intro"},
		{"sec-2", "toc", "2. TOC"},
		{"sec-3", "methods", "3. Methods"},
		{"sec-4", "reference-container", "4. Reference Container"},
	}
	for i, w := range want {
		h := h2s[i]
		if dom.Attr(h, "id") != w.id || dom.Attr(h, "data-key") != w.key || dom.TextContent(h) != w.text {
			t.Errorf("heading %d: got id=%q key=%q text=%q", i, dom.Attr(h, "id"), dom.Attr(h, "data-key"), dom.TextContent(h))
		}
	}
	if navs := findAll(doc.Root, func(n *html.Node) bool { return dom.IsElement(n, "nav") }); len(navs) != 0 {
		t.Errorf("no container exists, expected no nav, got %d", len(navs))
	}
}

func TestScan_MarkerKey(t *testing.T) {
	tests := []struct {
		marker string
		want   string
	}{
		{`<span class="secref intro"></span>`, "intro"},
		{`<span class="secref intro unresolved"></span>`, "intro"},
		{`<span class="secref" data-ref="methods"></span>`, "methods"},
		{`<span class="highlight secref"></span>`, ""},
		{`<span class="secref unresolved"></span>`, ""},
	}
	for _, tt := range tests {
		doc := Scan(parse(t, "<html><body>"+tt.marker+"</body></html>"), DefaultOptions())
		if len(doc.Markers) != 1 {
			t.Fatalf("%s: expected 1 marker, got %d", tt.marker, len(doc.Markers))
		}
		if got := doc.Markers[0].Key; got != tt.want {
			t.Errorf("%s: expected key %q, got %q", tt.marker, tt.want, got)
		}
	}
}

func TestAnnotate_MarkerWithoutKey(t *testing.T) {
	root := parse(t, `<html><body><h2 id="highlight">A</h2><p><span class="highlight secref"></span></p></body></html>`)

	_, err := Annotate(root, nil, DefaultOptions())
	var ure *doctree.UnresolvedReferenceError
	if !errors.As(err, &ure) {
		t.Fatalf("expected UnresolvedReferenceError, got %v", err)
	}
	if ure.Error() != "section reference marker has no key" {
		t.Errorf("unexpected message %q", ure.Error())
	}
}

func TestAnnotate_GeneratedIDCollision(t *testing.T) {
	root := parse(t, `<html><body>
<h2>Intro</h2>
<h3>Child</h3>
<h4 id="sec-2">Sec 2</h4>
<p id="subsec-1-1">Aside</p>
<h2>Two</h2>
</body></html>`)

	res, err := Annotate(root, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, w := range res.Warnings {
		var dup *doctree.DuplicateIDWarning
		if errors.As(w, &dup) {
			got = append(got, dup.Tag+"#"+dup.ID)
		}
	}
	if joined := strings.Join(got, ","); joined != "h4#sec-2,p#subsec-1-1" {
		t.Errorf("unexpected collision warnings %q", joined)
	}

	for _, id := range []string{"sec-2", "subsec-1-1"} {
		owners := findAll(root, func(n *html.Node) bool { return n.Type == html.ElementNode && dom.Attr(n, "id") == id })
		if len(owners) != 1 {
			t.Fatalf("id %s: expected exactly one element, got %d", id, len(owners))
		}
		if tag := owners[0].Data; tag != "h2" && tag != "h3" {
			t.Errorf("id %s should belong to a heading, got <%s>", id, tag)
		}
	}
}

func TestAnnotate_CollisionLeftAloneWhenStrictFails(t *testing.T) {
	root := parse(t, `<html><body><h2>A</h2><p id="sec-1">x</p><span class="secref nowhere"></span></body></html>`)

	res, err := Annotate(root, nil, DefaultOptions())
	if err == nil || res.Applied {
		t.Fatal("expected strict failure")
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected the collision to be reported, got %v", res.Warnings)
	}
	p := findAll(root, func(n *html.Node) bool { return dom.IsElement(n, "p") })[0]
	if dom.Attr(p, "id") != "sec-1" {
		t.Error("document must be untouched on strict failure")
	}
}
