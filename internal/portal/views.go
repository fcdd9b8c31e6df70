package portal

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	viewSchedule      = "schedule"
	viewConfirm       = "confirm"
	viewLoginRequired = "login_required"
	viewError         = "error"
)

var viewFuncs = template.FuncMap{
	"cancelPath":     CancelPath,
	"reschedulePath": ReschedulePath,
}

// Views holds one parsed template set per page, each sharing the layout.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses the embedded page templates.
func NewViews() (*Views, error) {
	names := []string{viewSchedule, viewConfirm, viewLoginRequired, viewError}
	v := &Views{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		tmpl, err := template.New(name).Funcs(viewFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("portal: parse template %s: %w", name, err)
		}
		v.pages[name] = tmpl
	}
	return v, nil
}

// Render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func (v *Views) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("portal: unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("portal: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
