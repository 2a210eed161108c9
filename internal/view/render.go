package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"

	"github.com/packagehub/hub-web/internal/hubapi"
)

//go:embed templates
var templatesFS embed.FS

// layoutTemplate is the entry point every page is executed through.
const layoutTemplate = "layout"

// Page is the data passed to every page template.
type Page struct {
	Title       string
	Path        string
	User        *hubapi.Profile
	Theme       string
	SelectedOrg string
	Notice      string
	Data        any
}

// LoggedIn reports whether the page is rendered for a signed-in user.
func (p Page) LoggedIn() bool { return p.User != nil }

// Renderer holds one template set per page, each made of the shared layout
// and partials plus the page's own "content" block. It implements gin's
// render.HTMLRender so handlers can call c.HTML with a page name.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templatesFS)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	base, err := template.New(layoutTemplate).Funcs(Funcs()).ParseFS(fsys, "templates/layout/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout templates: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing page templates: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning layout for %s: %w", file, err)
		}
		if _, err := t.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Execute renders the named page to w.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}
	return t.ExecuteTemplate(w, layoutTemplate, data)
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		return missingPage{name: name}
	}
	return render.HTML{Template: t, Name: layoutTemplate, Data: data}
}

type missingPage struct {
	name string
}

func (m missingPage) Render(w http.ResponseWriter) error {
	m.WriteContentType(w)
	return fmt.Errorf("unknown page template %q", m.name)
}

func (missingPage) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}

var _ render.HTMLRender = (*Renderer)(nil)
