package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/web"
)

// Engine renders HTML templates. Each page is parsed on top of a private
// clone of the layouts and partials so pages can share block names.
type Engine struct {
	pages map[string]*template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	Flashes     []shared.FlashMessage
	CurrentPath string
	Operator    shared.Identity
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	base, err := template.New("root").Funcs(FuncMap()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template)
	err = fs.WalkDir(web.Templates, "templates/pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		raw, err := fs.ReadFile(web.Templates, p)
		if err != nil {
			return err
		}
		tpl, err := base.Clone()
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "templates/")
		if _, err := tpl.New(name).Parse(string(raw)); err != nil {
			return fmt.Errorf("view: parse %s: %w", name, err)
		}
		pages[name] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Engine{pages: pages}, nil
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.pages[name]
	return ok
}

// Render executes a page template, for example "pages/home.html", with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.Execute(w, name, data)
}

// Execute writes a page to any writer, e.g. a buffer handed to the PDF renderer.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[name]
	if !ok {
		return errTemplateMissing(name)
	}
	if data.Flash == nil && len(data.Flashes) > 0 {
		data.Flash = &data.Flashes[0]
	}
	return tpl.ExecuteTemplate(w, name, data)
}

func errTemplateMissing(name string) error {
	return fmt.Errorf("view: template %q not found", name)
}

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"money":   FormatMoney,
		"number":  FormatNumber,
		"percent": FormatPercent,
		"add":     func(a, b int) int { return a + b },
		"dict":    dict,
		"hasPrefix": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},
		"flashClass": func(kind string) string {
			switch kind {
			case "danger", "error":
				return "alert-danger"
			case "warning":
				return "alert-warning"
			case "info":
				return "alert-info"
			}
			return "alert-success"
		},
	}
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("view: dict needs key/value pairs")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("view: dict key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
