package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/zfogg/blogicum/internal/models"
	"github.com/zfogg/blogicum/internal/util"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutFile   = "templates/base.html"
	includesGlob = "templates/includes/*.html"
	// rootTemplate is the entry point every page is executed through
	rootTemplate = "base"

	displayDateLayout = "2 January 2006, 15:04"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(displayDateLayout)
	},
	"truncatewords": util.TruncateWords,
	"truncatechars": util.TruncateChars,
	"paragraphs":    util.Paragraphs,
	"postURL":       postDetailURL,
	"profileURL":    profileURL,
	"pageURL": func(number int) string {
		return "?page=" + strconv.Itoa(number)
	},
	"isAuthor": func(post *models.Post, user *models.User) bool {
		return user != nil && post != nil && post.IsAuthoredBy(user.ID)
	},
	"loginURL": func(next string) string {
		return "/auth/login/?next=" + url.QueryEscape(next)
	},
}

// PageRenderer is a gin HTML renderer holding one template set per page,
// each made of the base layout, the shared includes and the page itself
type PageRenderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page template
func NewRenderer() (*PageRenderer, error) {
	base, err := template.New(path.Base(layoutFile)).Funcs(templateFuncs).ParseFS(templateFS, layoutFile, includesGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &PageRenderer{pages: make(map[string]*template.Template)}
	err = fs.WalkDir(templateFS, "templates", func(file string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(file, ".html") {
			return err
		}
		if file == layoutFile || strings.HasPrefix(file, "templates/includes/") {
			return nil
		}

		page, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := page.ParseFS(templateFS, file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}

		r.pages[strings.TrimPrefix(file, "templates/")] = page
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Instance implements render.HTMLRender
func (r *PageRenderer) Instance(name string, data any) render.Render {
	page, ok := r.pages[name]
	if !ok {
		return missingTemplate{name: name}
	}
	return render.HTML{Template: page, Name: rootTemplate, Data: data}
}

// Has reports whether a page template exists
func (r *PageRenderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

type missingTemplate struct {
	name string
}

func (m missingTemplate) Render(w http.ResponseWriter) error {
	return fmt.Errorf("html template %q is not defined", m.name)
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}
