package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/cryptoresearch/labsite/internal/content"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = []string{"home", "blog", "post", "bounties", "bounty", "research", "team", "events"}

var funcs = template.FuncMap{
	"formatDate": content.FormatDate,
}

// templates holds one clone of the layout per page template.
type templates map[string]*template.Template

func loadTemplates() (templates, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	t := templates{}
	for _, name := range pageTemplates {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".tmpl"); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		t[name] = clone
	}
	return t, nil
}

func (t templates) execute(w io.Writer, name string, data pageData) error {
	tmpl, ok := t[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

type siteData struct {
	Title      string
	TitleShort string
	BaseURL    string
	Nav        []content.NavLink
	Year       int
}

type pageData struct {
	Site        siteData
	Title       string
	Description string
	Active      string // Nav href to highlight
	Data        any
}
