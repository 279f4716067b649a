package biblio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cryptoresearch/labsite/internal/doctree"
	"github.com/google/go-cmp/cmp"
)

func testDB() Database {
	return Database{
		"a": {Title: "Paper A", Author: "Alice", Year: "2020"},
		"b": {Title: "Paper B", Author: "Bob", Year: "2021", URL: "https://example.org/b"},
		"c": {Content: "A footnote."},
	}
}

func TestNumber_FirstSeenOrderDedup(t *testing.T) {
	citations := []doctree.Citation{
		{Index: 0, Keys: []string{"a", "b"}},
		{Index: 1, Keys: []string{"b"}},
		{Index: 2, Keys: []string{"c"}},
	}

	bib, err := Number(citations, testDB())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotIdx := map[string]int{}
	for _, it := range bib.Items {
		gotIdx[it.Key] = it.Index
	}
	if diff := cmp.Diff(map[string]int{"a": 1, "b": 2, "c": 3}, gotIdx); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if len(bib.Items) != 3 {
		t.Fatalf("expected 3 unique items, got %d", len(bib.Items))
	}

	wantNumbers := [][]int{{1, 2}, {2}, {3}}
	for i, c := range bib.Citations {
		if diff := cmp.Diff(wantNumbers[i], c.Numbers); diff != "" {
			t.Errorf("citation %d numbers mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestNumber_Anchors(t *testing.T) {
	citations := []doctree.Citation{
		{Index: 0, Keys: []string{"a", "b"}},
		{Index: 1, Keys: []string{"a"}},
		{Index: 2, Keys: []string{"b"}},
	}
	bib, err := Number(citations, testDB())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"ref-a", "", "ref-b"}
	for i, c := range bib.Citations {
		if c.ID != wantIDs[i] {
			t.Errorf("citation %d: expected id %q, got %q", i, wantIDs[i], c.ID)
		}
	}
	// b was introduced by the citation led by a.
	if bib.Items[1].Anchor != "ref-a" {
		t.Errorf("expected b anchor ref-a, got %q", bib.Items[1].Anchor)
	}
}

func TestNumber_UnresolvedKey(t *testing.T) {
	citations := []doctree.Citation{
		{Index: 0, Keys: []string{"a", "zzz"}},
		{Index: 1, Keys: []string{"zzz"}},
	}
	bib, err := Number(citations, testDB())

	var ure *doctree.UnresolvedReferenceError
	if !errors.As(err, &ure) {
		t.Fatalf("expected UnresolvedReferenceError, got %v", err)
	}
	if ure.Key != "zzz" || ure.Kind != doctree.KindCitation {
		t.Errorf("unexpected error %+v", ure)
	}
	joined := err.(interface{ Unwrap() []error })
	if n := len(joined.Unwrap()); n != 1 {
		t.Errorf("expected the missing key reported once, got %d", n)
	}
	if len(bib.Items) != 1 {
		t.Errorf("expected only the resolvable entry, got %d", len(bib.Items))
	}
	if diff := cmp.Diff([]int{1, 0}, bib.Citations[0].Numbers); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestNumber_NoCitations(t *testing.T) {
	bib, err := Number(nil, testDB())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bib.Empty() {
		t.Error("expected empty bibliography")
	}
}

func TestLoadDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "references.yaml")
	data := `boneh18:
  title: Verifiable Delay Functions
  author: Boneh, Bonneau, Bünz, Fisch
  year: "2018"
  url: https://eprint.iacr.org/2018/601
note1:
  content: See the appendix for the full derivation.
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := LoadDatabase(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db["boneh18"].Year != "2018" {
		t.Errorf("expected year 2018, got %q", db["boneh18"].Year)
	}
	if !db["note1"].IsFootnote() {
		t.Error("expected note1 to be a footnote")
	}

	missing, err := LoadDatabase(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected empty database, got %d entries", len(missing))
	}
}

func TestDatabase_Merge(t *testing.T) {
	base := Database{"a": {Title: "Old"}, "b": {Title: "B"}}
	merged := base.Merge(Database{"a": {Title: "New"}})
	if merged["a"].Title != "New" || merged["b"].Title != "B" {
		t.Errorf("unexpected merge result %+v", merged)
	}
	if base["a"].Title != "Old" {
		t.Error("merge must not mutate the receiver")
	}
}
