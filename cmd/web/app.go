package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/config"
	"finitefield.org/hanko-blog/internal/content"
	"finitefield.org/hanko-blog/internal/i18n"
	mw "finitefield.org/hanko-blog/internal/middleware"
	"finitefield.org/hanko-blog/internal/navigation"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/site"
	"finitefield.org/hanko-blog/internal/source"
	"finitefield.org/hanko-blog/internal/view"
)

var supportedLangs = []string{"ko", "en"}

// app holds the process-wide dependencies shared by serve and build.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	src       source.Source
	store     *catalog.Store
	holder    *catalog.Holder
	templates *site.Templates
	site      *site.Site
	binder    *navigation.Binder

	routerOnce sync.Once
	router     http.Handler
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle, err := i18n.Load(cfg.Server.Locales, cfg.Site.Lang, supportedLangs)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	for _, lang := range bundle.Supported() {
		if missing := bundle.Missing(lang); len(missing) > 0 {
			logger.Warn("locale keys missing", zap.String("lang", lang), zap.Strings("keys", missing))
		}
	}
	tmpl, err := site.NewTemplates(cfg.Server.Templates, cfg.Server.Dev, bundle)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	src, err := source.Open(ctx, cfg.Catalog.Root)
	if err != nil {
		return nil, fmt.Errorf("open content root: %w", err)
	}

	mw.ConfigureSession(cfg.Session.SigningKey, cfg.Session.Secure)
	if mw.EphemeralSessionKey {
		logger.Warn("session signing key not configured; sessions reset on restart")
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		bundle:    bundle,
		src:       src,
		store:     catalog.NewStore(src, cfg.Catalog.Path),
		holder:    &catalog.Holder{},
		templates: tmpl,
	}
	if err := a.loadCatalog(ctx); err != nil {
		logger.Error("catalog load failed", zap.String("source", src.String()), zap.Error(err))
	}

	loader := content.NewLoader(src, content.WithSanitize(cfg.Content.Sanitize))
	a.site = site.New(site.Options{
		Config:    cfg,
		Bundle:    bundle,
		Holder:    a.holder,
		Store:     a.store,
		Fetcher:   loader,
		Templates: tmpl,
	})
	a.binder = navigation.New(
		a.holder,
		a.site.Renderer(bundle.Fallback(), view.QueryLinks{}, &view.DefaultEndpoints),
		a.site.ViewOptions(),
		navigation.SessionStates{},
		navigation.WithTranslator(func(r *http.Request) func(string) string {
			return a.site.Translator(mw.Lang(r))
		}),
	)
	return a, nil
}

func (a *app) loadCatalog(ctx context.Context) error {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	a.holder.Store(snap)
	a.logger.Info("catalog loaded", zap.String("source", a.src.String()), zap.Int("posts", snap.Len()))
	return nil
}

// reload re-reads templates and the catalog. A failed catalog load keeps the
// previous snapshot.
func (a *app) reload(ctx context.Context) error {
	var errs []error
	if err := a.templates.Reload(); err != nil {
		errs = append(errs, fmt.Errorf("templates: %w", err))
	}
	if err := a.loadCatalog(ctx); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}
	return errors.Join(errs...)
}

// localRoot is the catalog document's directory when it is read from disk.
func (a *app) localRoot() string {
	if d, ok := a.src.(*source.Dir); ok {
		return filepath.Join(d.Root(), filepath.FromSlash(path.Dir(a.store.Path())))
	}
	return ""
}

// watchRoots are the directories --watch observes. Locales load once at start-up
// and are not among them.
func (a *app) watchRoots() []string {
	roots := []string{a.cfg.Server.Templates}
	if dir := a.localRoot(); dir != "" {
		roots = append(roots, dir)
	}
	return roots
}

func (a *app) Close() error { return a.src.Close() }

// Router returns the HTTP handler, built on first use. Catalog routes are bound
// only when the initial load succeeded.
func (a *app) Router() http.Handler {
	a.routerOnce.Do(func() { a.router = a.buildRouter() })
	return a.router
}

func (a *app) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(observability.Trace)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(mw.Session)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(a.cfg.Server.Public, "assets")))
	r.Handle("/assets/*", assets)

	r.Get("/", a.indexHandler)
	r.Get("/post", a.postHandler)
	r.Get("/post.html", a.postHandler)

	switch err := a.binder.Bind(r); {
	case errors.Is(err, navigation.ErrNoSnapshot):
		a.logger.Warn("catalog routes not attached")
	case err != nil:
		a.logger.Error("bind catalog routes", zap.Error(err))
	}
	return r
}
