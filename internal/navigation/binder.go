package navigation

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/catalog"
	mw "finitefield.org/hanko-blog/internal/middleware"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/view"
)

var (
	// ErrNoSnapshot is returned by Bind when no catalog load has succeeded.
	ErrNoSnapshot = errors.New("navigation: catalog not loaded")
	// ErrAlreadyBound is returned when Bind is called twice.
	ErrAlreadyBound = errors.New("navigation: routes already bound")
)

// Binder attaches the catalog transitions to HTTP routes.
type Binder struct {
	holder    *catalog.Holder
	renderer  *view.Renderer
	opts      view.Options
	states    StateStore
	endpoints view.Endpoints
	translate func(*http.Request) func(string) string
	bound     atomic.Bool
}

// Option customises a Binder.
type Option func(*Binder)

// WithTranslator resolves the message translator for each request.
func WithTranslator(fn func(*http.Request) func(string) string) Option {
	return func(b *Binder) { b.translate = fn }
}

// WithEndpoints mounts the routes under a different prefix.
func WithEndpoints(ep view.Endpoints) Option {
	return func(b *Binder) { b.endpoints = ep }
}

// New builds a Binder. A nil states uses SessionStates.
func New(holder *catalog.Holder, renderer *view.Renderer, opts view.Options, states StateStore, options ...Option) *Binder {
	if states == nil {
		states = SessionStates{}
	}
	b := &Binder{
		holder:    holder,
		renderer:  renderer,
		opts:      opts,
		states:    states,
		endpoints: view.DefaultEndpoints,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Bind registers the transition routes once. It refuses when the catalog is not loaded.
func (b *Binder) Bind(r chi.Router) error {
	if b.holder.Load() == nil {
		return ErrNoSnapshot
	}
	if !b.bound.CompareAndSwap(false, true) {
		return ErrAlreadyBound
	}
	r.Route(b.endpoints.Prefix, func(r chi.Router) {
		r.Get("/search", b.transition("search", func(c *view.Controller, r *http.Request) error {
			c.ApplySearch(r.URL.Query().Get("q"))
			return nil
		}))
		r.Post("/page/{page}", b.transition("page", func(c *view.Controller, r *http.Request) error {
			n, err := strconv.Atoi(chi.URLParam(r, "page"))
			if err != nil {
				return errBadPage
			}
			c.ShowPage(n)
			return nil
		}))
		r.Post("/archive", b.transition("archive", func(c *view.Controller, r *http.Request) error {
			c.ToggleArchive()
			return nil
		}))
		r.Post("/prev", b.transition("prev", func(c *view.Controller, r *http.Request) error {
			c.PrevPage()
			return nil
		}))
		r.Post("/next", b.transition("next", func(c *view.Controller, r *http.Request) error {
			c.NextPage()
			return nil
		}))
	})
	return nil
}

var errBadPage = errors.New("page must be a number")

// Bound reports whether Bind has attached the routes.
func (b *Binder) Bound() bool { return b.bound.Load() }

// Mount starts a fresh view for a full index load. Query parameters page, view and q
// are applied as transitions so the page also works without scripts.
func (b *Binder) Mount(r *http.Request) (view.View, bool) {
	snap := b.holder.Load()
	if snap == nil {
		return view.View{}, false
	}
	c := view.NewController(snap, view.InitialState(), b.opts)
	q := r.URL.Query()
	if p := q.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			c.ShowPage(n)
		}
	}
	if view.ParseMode(q.Get("view")) == view.Archive {
		c.ToggleArchive()
	}
	if s := q.Get("q"); s != "" {
		c.ApplySearch(s)
	}
	b.states.Save(r, c.State())
	return c.View(), true
}

// Renderer returns the renderer bound to the request's language.
func (b *Binder) Renderer(r *http.Request) *view.Renderer {
	if b.translate == nil {
		return b.renderer
	}
	return b.renderer.WithTranslator(b.translate(r))
}

func (b *Binder) transition(name string, apply func(*view.Controller, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := observability.FromContext(r.Context())
		snap := b.holder.Load()
		if snap == nil {
			mw.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable")
			return
		}
		c := view.NewController(snap, b.states.Load(r), b.opts)
		before := c.State()
		if err := apply(c, r); err != nil {
			mw.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		after := c.State()
		b.states.Save(r, after)
		logger.Debug("catalog transition",
			zap.String("action", name),
			zap.String("mode", after.Mode.String()),
			zap.Int("page", after.Page),
			zap.Bool("changed", before != after),
		)

		out, err := b.Renderer(r).Region(c.View())
		if err != nil {
			logger.Error("render catalog region", zap.Error(err))
			mw.WriteError(w, r, http.StatusInternalServerError, "render failed")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(out))
	}
}
