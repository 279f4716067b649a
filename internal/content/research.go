package content

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cryptoresearch/labsite/internal/parser"
)

// Publication is an entry of the research page.
type Publication struct {
	Title      string   `yaml:"title"`
	Authors    []string `yaml:"authors"`
	Conference string   `yaml:"conference"`
	Date       string   `yaml:"date"`
	Link       string   `yaml:"link"`
	PDF        string   `yaml:"pdf"` // Local PDF below the static directory
	Abstract   string   `yaml:"abstract"`
}

// AuthorList joins authors as "A, B and C".
func (p Publication) AuthorList() string {
	switch len(p.Authors) {
	case 0:
		return ""
	case 1:
		return p.Authors[0]
	}
	return strings.Join(p.Authors[:len(p.Authors)-1], ", ") + " and " + p.Authors[len(p.Authors)-1]
}

// PublicationOptions controls abstract extraction from local PDFs.
type PublicationOptions struct {
	StaticDir        string
	PDFFallback      bool
	AbstractMaxWords int
}

// LoadPublications reads the publication list, newest first. A publication
// without an abstract but with a local PDF gets its abstract from the PDF.
func LoadPublications(path string, opts PublicationOptions) ([]Publication, error) {
	var pubs []Publication
	if err := loadYAML(path, &pubs); err != nil {
		return nil, err
	}

	for i := range pubs {
		p := &pubs[i]
		if p.Abstract != "" || p.PDF == "" {
			continue
		}
		local := filepath.Join(opts.StaticDir, filepath.FromSlash(strings.TrimPrefix(p.PDF, "/")))
		text, err := parser.ExtractPDFText(local, opts.PDFFallback)
		if err != nil {
			return nil, fmt.Errorf("publication %q: %w", p.Title, err)
		}
		p.Abstract = parser.FirstParagraph(text, opts.AbstractMaxWords)
		if p.Link == "" {
			p.Link = p.PDF
		}
	}

	for _, p := range pubs {
		if _, err := ParseDate(p.Date); err != nil {
			return nil, fmt.Errorf("publication %q: %w", p.Title, err)
		}
	}
	SortByDate(pubs, func(p Publication) time.Time {
		d, _ := ParseDate(p.Date)
		return d
	})
	return pubs, nil
}

// Member is a team roster entry.
type Member struct {
	Name      string
	Link      string
	Interests string
}

// LoadTeam reads the team roster from a CSV file with a header row naming
// the columns name, link and interests in any order.
func LoadTeam(path string) ([]Member, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read team: %w", err)
	}
	defer f.Close()
	return parseTeam(f)
}

func parseTeam(r io.Reader) ([]Member, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// First row is headers.
	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol, ok := col["name"]
	if !ok {
		return nil, fmt.Errorf("parse csv: missing %q column", "name")
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var members []Member
	for _, row := range records[1:] {
		if nameCol >= len(row) || strings.TrimSpace(row[nameCol]) == "" {
			continue
		}
		members = append(members, Member{
			Name:      cell(row, "name"),
			Link:      cell(row, "link"),
			Interests: cell(row, "interests"),
		})
	}
	return members, nil
}

// Event is a workshop or conference the group ran or attended.
type Event struct {
	Conference  string `yaml:"conference"`
	Workshop    string `yaml:"workshop"`
	Link        string `yaml:"link"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
}

// LoadEvents reads the events list, newest first.
func LoadEvents(path string) ([]Event, error) {
	var events []Event
	if err := loadYAML(path, &events); err != nil {
		return nil, err
	}
	for _, e := range events {
		if _, err := ParseDate(e.Date); err != nil {
			return nil, fmt.Errorf("event %q: %w", e.Conference, err)
		}
	}
	SortByDate(events, func(e Event) time.Time {
		d, _ := ParseDate(e.Date)
		return d
	})
	return events, nil
}
