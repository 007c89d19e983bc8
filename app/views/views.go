// Package views holds the server-rendered HTML pages, embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"postboard/app/models"
)

//go:embed layout.html posts/*.html
var files embed.FS

// Page names.
const (
	List    = "list"
	Details = "details"
	Create  = "create"
	Modify  = "modify"
)

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// ListData is the model of the list and search pages.
type ListData struct {
	Posts    []*models.Post
	Category models.SearchCategory
	Keyword  string
}

type DetailsData struct {
	Post     *models.Post
	Comments []*models.Comment
}

type CreateData struct {
	Form  models.PostCreateRequest
	Error string
}

type ModifyData struct {
	Post  *models.Post
	Error string
}

// Templates is the parsed set of pages, each combined with the layout.
type Templates struct {
	pages map[string]*template.Template
}

// Load parses every page.
func Load() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template)}
	for _, page := range []string{List, Details, Create, Modify} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(files, "layout.html", "posts/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

// Render writes page to w. Nothing is written if execution fails.
func (t *Templates) Render(w io.Writer, page string, data interface{}) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
