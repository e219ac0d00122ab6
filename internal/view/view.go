// Package view renders html/template pages for the browser surface. The
// same bill data binds three presentation modes (editor, preview, list
// view); rendering is side-effect-free so re-rendering unchanged data
// yields identical output.
package view

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the shared template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"rupees": func(d decimal.Decimal) string {
			return "₹" + d.StringFixed(2)
		},
	}
}

// Render executes a page template, wrapping it in layout.html unless the
// page is a full document (starts with <!doctype, e.g. the print view).
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}

	devMode := os.Getenv("DEV") == "1"
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok && t != nil {
			return t.Execute(w, data)
		}
	}

	mainPath := filepath.Join(baseDir, name)
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return err
	}

	var t *template.Template
	if bytes.Contains(bytes.ToLower(content[:min(len(content), 64)]), []byte("<!doctype")) {
		t, err = template.New(name).Funcs(Funcs()).ParseFiles(mainPath)
	} else {
		t, err = template.New("layout.html").Funcs(Funcs()).ParseFiles(filepath.Join(baseDir, "layout.html"), mainPath)
	}
	if err != nil {
		return err
	}
	if t == nil {
		return errors.New("template not parsed")
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t.Execute(w, data)
}
