// Package web holds the server-rendered HTML templates.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/yukikurage/todo-list/internal/models"
	"github.com/yukikurage/todo-list/internal/tagset"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"tagNames": func(tags []models.Tag) string {
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.Name
		}
		return tagset.Join(names)
	},
	"int":   func(p models.Priority) int { return int(p) },
	"lower": strings.ToLower,
}

// Templates parses the embedded templates. Each page is addressed by its
// file name, e.g. "list.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is like Templates but panics on a parse error.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}
