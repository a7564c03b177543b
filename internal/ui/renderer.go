package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

// Renderer executes page templates inside the shared layout.
type Renderer struct {
	layout *template.Template
}

// NewRenderer parses the layout and the shared partials. Page templates are
// parsed per render on a clone of the layout.
func NewRenderer() (*Renderer, error) {
	// Layout and partials reference helper funcs, so a default map must be
	// present at parse time. Render replaces it with the request's map.
	layout, err := template.New("layout").
		Funcs(GetFuncMap(time.UTC, nil)).
		ParseFS(templatesFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return &Renderer{layout: layout}, nil
}

// Render executes pageTemplateFile (relative to templates/) within the layout.
func (r *Renderer) Render(w io.Writer, pageTemplateFile string, data interface{}, funcMap template.FuncMap) error {
	// Clone the layout template to ensure thread safety and isolation
	tmpl, err := r.layout.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone layout: %w", err)
	}

	if funcMap != nil {
		tmpl.Funcs(funcMap)
	}

	_, err = tmpl.ParseFS(templatesFS, "templates/"+pageTemplateFile)
	if err != nil {
		return fmt.Errorf("failed to parse page template %s: %w", pageTemplateFile, err)
	}

	// Execute the "layout" template, which should include the "content" block defined in the page template
	return tmpl.ExecuteTemplate(w, "layout", data)
}
