package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// pages lists every template rendered inside base.html.
var pages = []string{
	"register.html",
	"login.html",
	"home.html",
	"dashboard.html",
	"transaction_form.html",
}

// page is the data every template receives.
type page struct {
	Title    string
	Session  *auth.Session
	Flashes  []Flash
	Currency string
	Data     any
}

// parseTemplates builds one template set per page so each page can define
// its own "content" block.
func parseTemplates(fsys fs.FS, currency string) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money": func(m core.Money) string { return m.Format(currency) },
	}

	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// render executes a page into a buffer first so a template error never
// produces a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, extra ...Flash) {
	t, ok := s.templates[name]
	if !ok {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	p := page{
		Title:    title,
		Flashes:  append(s.popFlashes(w, r), extra...),
		Currency: s.currency,
		Data:     data,
	}
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		p.Session = &sess
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, applog.FieldError, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirect queues a flash and sends the browser to target.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string, f Flash) {
	if f.Message != "" {
		s.addFlash(w, r, f)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
