package main

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/handlers"
	mw "finitefield.org/hanko-blog/internal/middleware"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/view"
)

// indexHandler renders the catalog index. Every full load starts from the initial
// view state.
func (a *app) indexHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	v, loaded := a.binder.Mount(r)
	renderer := a.binder.Renderer(r)
	if !a.binder.Bound() {
		// No fragment routes: serve plain links only.
		renderer = a.site.Renderer(lang, view.QueryLinks{}, nil)
	}
	data, err := a.site.Index(lang, r.URL.Path, renderer, v, loaded)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, data)
}

// postHandler renders /post?slug=. Missing posts and load failures render inside
// the layout with a matching status.
func (a *app) postHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	slug := r.URL.Query().Get("slug")
	data := a.site.Post(r.Context(), lang, r.URL.Path, slug, view.QueryLinks{})
	status := http.StatusOK
	if data.Post != nil && data.Post.Page.Status != 0 {
		status = data.Post.Page.Status
	}
	a.render(w, r, status, data)
}

func (a *app) render(w http.ResponseWriter, r *http.Request, status int, data handlers.PageData) {
	data.CSRFToken = mw.CSRFToken(r)
	var buf bytes.Buffer
	if err := a.site.Render(&buf, data); err != nil {
		a.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *app) renderError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("render page", zap.Error(err))
	mw.WriteError(w, r, http.StatusInternalServerError, "render failed")
}
