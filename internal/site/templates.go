package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finitefield.org/hanko-blog/internal/format"
	"finitefield.org/hanko-blog/internal/i18n"
)

// Templates parses the *.tmpl layout files. In dev mode they are reparsed on every
// render.
type Templates struct {
	dir    string
	dev    bool
	bundle *i18n.Bundle

	mu     sync.RWMutex
	cached *template.Template
}

// NewTemplates parses dir once, failing early on broken templates even in dev mode.
func NewTemplates(dir string, dev bool, bundle *i18n.Bundle) (*Templates, error) {
	t := &Templates{dir: dir, dev: dev, bundle: bundle}
	tc, err := t.parse()
	if err != nil {
		return nil, err
	}
	t.cached = tc
	return t, nil
}

func (t *Templates) funcMap() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			if t.bundle == nil {
				return key
			}
			return t.bundle.T(lang, key)
		},
		"isoDate": format.ISODate,
		"add":     func(a, b int) int { return a + b },
	}
}

func (t *Templates) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(t.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", t.dir)
	}
	return template.New("_root").Funcs(t.funcMap()).ParseFiles(files...)
}

// Reload reparses the templates and swaps them in on success.
func (t *Templates) Reload() error {
	tc, err := t.parse()
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.cached = tc
	t.mu.Unlock()
	return nil
}

func (t *Templates) current() (*template.Template, error) {
	if t.dev {
		return t.parse()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cached, nil
}

// Render executes the named template into w. Output is buffered so a failing
// template never leaves a half-written page.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	tc, err := t.current()
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}
	var buf bytes.Buffer
	if err := tc.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("template exec error: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
