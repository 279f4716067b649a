package content

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/parser"
)

// Bounty is a bounty page. Pages nest: "rsa" is the RSA overview and
// "rsa/assumptions" one of its subpages.
type Bounty struct {
	Path        string // Slash-separated, without extension; "index" files take their directory's path
	Title       string
	PostedBy    string
	TotalBounty string
	Description string
	Order       int
	Numbered    bool
	References  biblio.Database
	Doc         *parser.Document
}

// URL is the site path of the bounty page.
func (b Bounty) URL() string {
	return BountiesURL + "/" + b.Path
}

// TopLevel reports whether the page is listed on the bounties index.
func (b Bounty) TopLevel() bool {
	return !strings.Contains(b.Path, "/")
}

type bountyMeta struct {
	Title       string          `yaml:"title"`
	PostedBy    string          `yaml:"posted_by"`
	TotalBounty string          `yaml:"total_bounty"`
	Description string          `yaml:"description"`
	Order       int             `yaml:"order"`
	Numbered    bool            `yaml:"numbered"`
	Draft       bool            `yaml:"draft"`
	References  biblio.Database `yaml:"references"`
}

// LoadBounties walks dir and returns every bounty page ordered by Order,
// then Path.
func LoadBounties(dir string) ([]Bounty, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var bounties []Bounty
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !parser.IsSupportedExtension(d.Name()) {
			return nil
		}

		doc, err := parseFile(p)
		if err != nil {
			return err
		}
		var meta bountyMeta
		if err := doc.Decode(&meta); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if meta.Draft {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		bp := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		if path.Base(bp) == "index" {
			bp = path.Dir(bp)
		}
		if bp == "." {
			return fmt.Errorf("%s: the bounties index page is generated and cannot be authored", p)
		}

		title := meta.Title
		if title == "" {
			title = doc.Title
		}
		bounties = append(bounties, Bounty{
			Path:        bp,
			Title:       title,
			PostedBy:    meta.PostedBy,
			TotalBounty: meta.TotalBounty,
			Description: meta.Description,
			Order:       meta.Order,
			Numbered:    meta.Numbered,
			References:  meta.References,
			Doc:         doc,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load bounties: %w", err)
	}

	slices.SortStableFunc(bounties, func(a, b Bounty) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	return bounties, nil
}

// Children returns the subpages directly below parent.
func Children(bounties []Bounty, parent string) []Bounty {
	var out []Bounty
	for _, b := range bounties {
		if path.Dir(b.Path) == parent {
			out = append(out, b)
		}
	}
	return out
}
