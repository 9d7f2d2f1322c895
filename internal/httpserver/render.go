package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"booteh.app/web/internal/format"
	"booteh.app/web/internal/i18n"
	"booteh.app/web/internal/observability"
)

// Renderer executes the page and fragment templates under one directory:
// layouts/ and partials/ form the shared set, each file in pages/ is parsed
// into its own clone of it. In dev mode the tree is reparsed per render.
type Renderer struct {
	dir   string
	dev   bool
	funcs template.FuncMap

	mu  sync.RWMutex
	set *templateSet
}

type templateSet struct {
	root  *template.Template
	pages map[string]*template.Template
}

// NewRenderer parses the tree once so that broken templates fail at startup.
func NewRenderer(dir string, dev bool, bundle *i18n.Bundle) (*Renderer, error) {
	r := &Renderer{dir: dir, dev: dev, funcs: templateFuncs(bundle)}
	set, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.set = set
	return r, nil
}

func templateFuncs(bundle *i18n.Bundle) template.FuncMap {
	return template.FuncMap{
		"T":         bundle.T,
		"fmtDate":   format.FmtDate,
		"isoDate":   format.ISODate,
		"fmtNumber": func(n int, lang string) string { return format.FmtNumber(int64(n), lang) },
		"now":       time.Now,
		"dict":      dict,
		"seq":       seq,
		"jsonLD":    func(s string) template.JS { return template.JS(s) },
		"hasPrefix": strings.HasPrefix,
	}
}

func (r *Renderer) parse() (*templateSet, error) {
	shared, err := r.glob("layouts", "partials")
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("no templates found under %s", r.dir)
	}
	root, err := template.New("_root").Funcs(r.funcs).ParseFiles(shared...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	pageFiles, err := r.glob("pages")
	if err != nil {
		return nil, err
	}
	set := &templateSet{root: root, pages: make(map[string]*template.Template, len(pageFiles))}
	for _, file := range pageFiles {
		clone, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", file, err)
		}
		set.pages[strings.TrimSuffix(filepath.Base(file), ".tmpl")] = clone
	}
	return set, nil
}

// glob recursively collects .tmpl files below the given subdirectories.
func (r *Renderer) glob(subdirs ...string) ([]string, error) {
	var files []string
	for _, sub := range subdirs {
		root := filepath.Join(r.dir, sub)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (r *Renderer) current() (*templateSet, error) {
	if r.dev {
		return r.parse()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set, nil
}

// Page renders the base layout with the named page's content block.
func (r *Renderer) Page(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	set, err := r.current()
	if err != nil {
		r.fail(w, req, "template parse error", err)
		return
	}
	t, ok := set.pages[name]
	if !ok {
		r.fail(w, req, "template missing", fmt.Errorf("page %q", name))
		return
	}
	r.write(w, req, status, t, "base", data)
}

// Fragment renders a named partial without the layout.
func (r *Renderer) Fragment(w http.ResponseWriter, req *http.Request, name string, data any) {
	set, err := r.current()
	if err != nil {
		r.fail(w, req, "template parse error", err)
		return
	}
	r.write(w, req, http.StatusOK, set.root, name, data)
}

func (r *Renderer) write(w http.ResponseWriter, req *http.Request, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.fail(w, req, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (r *Renderer) fail(w http.ResponseWriter, req *http.Request, msg string, err error) {
	observability.FromContext(req.Context()).Error(msg, zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}

// seq returns 1..n.
func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
