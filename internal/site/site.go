// Package site assembles full pages from the catalog, the view renderer and the
// layout templates. It is shared by the HTTP server and the static export.
package site

import (
	"context"
	"html/template"
	"io"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/catalog"
	"finitefield.org/hanko-blog/internal/config"
	"finitefield.org/hanko-blog/internal/detail"
	"finitefield.org/hanko-blog/internal/format"
	"finitefield.org/hanko-blog/internal/handlers"
	"finitefield.org/hanko-blog/internal/i18n"
	"finitefield.org/hanko-blog/internal/nav"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/seo"
	"finitefield.org/hanko-blog/internal/view"
)

// LayoutTemplate is the entry template of every page.
const LayoutTemplate = "base"

// Options wires a Site.
type Options struct {
	Config    config.Config
	Bundle    *i18n.Bundle
	Holder    *catalog.Holder
	Store     *catalog.Store
	Fetcher   detail.Fetcher
	Templates *Templates
}

// Site builds page view models and renders them.
type Site struct {
	cfg       config.Config
	bundle    *i18n.Bundle
	holder    *catalog.Holder
	store     *catalog.Store
	fetcher   detail.Fetcher
	templates *Templates
	tabs      []nav.Item
}

// New builds a Site.
func New(opts Options) *Site {
	s := &Site{
		cfg:       opts.Config,
		bundle:    opts.Bundle,
		holder:    opts.Holder,
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		templates: opts.Templates,
	}
	for _, tab := range opts.Config.Tabs {
		s.tabs = append(s.tabs, nav.Item{Path: tab.Href, LabelKey: tab.LabelKey, Label: tab.Label})
	}
	return s
}

// Holder returns the published snapshot holder.
func (s *Site) Holder() *catalog.Holder { return s.holder }

// ViewOptions maps configuration onto the view controller.
func (s *Site) ViewOptions() view.Options {
	return view.Options{
		PageSize:      s.cfg.Catalog.PageSize,
		GroupArchive:  s.cfg.Catalog.GroupArchive,
		CategoryOrder: s.cfg.Catalog.CategoryOrder,
		Uncategorized: s.cfg.Catalog.Uncategorized,
	}
}

// DetailOptions maps configuration onto the detail builder.
func (s *Site) DetailOptions() detail.Options {
	opts := detail.Options{
		GroupSidebar:  s.cfg.Catalog.GroupSidebar,
		CategoryOrder: s.cfg.Catalog.CategoryOrder,
		Uncategorized: s.cfg.Catalog.Uncategorized,
	}
	if s.store != nil {
		opts.Resolve = s.store.FragmentPath
	}
	return opts
}

// Translator returns the message function for lang.
func (s *Site) Translator(lang string) func(string) string {
	if s.bundle == nil {
		return func(key string) string { return key }
	}
	return s.bundle.Translator(lang)
}

// Renderer builds a view renderer for lang. Endpoints enable htmx attributes.
func (s *Site) Renderer(lang string, links view.Links, endpoints *view.Endpoints) *view.Renderer {
	return view.NewRenderer(view.Config{Links: links, Endpoints: endpoints, T: s.Translator(lang)})
}

func (s *Site) base(lang, path string, links view.Links) handlers.PageData {
	title := s.Translator(lang)("site.title")
	if s.cfg.Site.Title != "" {
		title = s.cfg.Site.Title
	}
	return handlers.PageData{
		Title:     title,
		SiteTitle: title,
		Lang:      lang,
		Path:      path,
		Links:     links,
		Nav:       nav.Build(path, links.Page(1), s.tabs),
		Analytics: handlers.NewAnalytics(s.cfg.Analytics.GA4MeasurementID, s.cfg.Analytics.Debug),
	}
}

// Index builds the catalog index page for v. When loaded is false the region is
// replaced by the load-failure placeholder.
func (s *Site) Index(lang, path string, r *view.Renderer, v view.View, loaded bool) (handlers.PageData, error) {
	data := s.base(lang, path, r.Links())
	data.Breadcrumbs = nav.HomeCrumbs(r.Links().Page(1))
	data.Interactive = loaded && r.Interactive()
	t := s.Translator(lang)
	canonical := seo.Absolute(s.cfg.Site.BaseURL, r.Links().Page(1))
	data.SEO = seo.Meta{
		Title:       data.SiteTitle,
		Description: t("site.description"),
		Canonical:   canonical,
		OG: seo.OpenGraph{
			Title:       data.SiteTitle,
			Description: t("site.description"),
			Type:        "website",
			URL:         canonical,
			SiteName:    data.SiteTitle,
			Locale:      seo.OGLocale(lang),
		},
		Twitter: seo.Twitter{Card: "summary"},
	}
	if v.Page > 1 && v.Mode == view.Paged && !v.Searching {
		data.SEO.Canonical = seo.Absolute(s.cfg.Site.BaseURL, r.Links().Page(v.Page))
	}
	data.SEO.JSONLD = []template.JS{seo.JSON(seo.Blog(data.SiteTitle, canonical, t("site.description"), lang))}
	if canonical != "" && r.Interactive() {
		data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.WebSite(data.SiteTitle, canonical, canonical+"?q=")))
	}

	idx := &handlers.IndexData{}
	data.Index = idx
	if !loaded {
		idx.Message = r.Message(view.KeyLoadFailed)
		return data, nil
	}
	search, err := r.Search(v.Query)
	if err != nil {
		return data, err
	}
	region, err := r.Region(v)
	if err != nil {
		return data, err
	}
	idx.Search = search
	idx.Region = region
	return data, nil
}

// Post builds the detail page for slug from the held snapshot.
func (s *Site) Post(ctx context.Context, lang, path, slug string, links view.Links) handlers.PageData {
	page := detail.Build(ctx, s.holder.Load(), slug, s.fetcher, s.DetailOptions())
	if page.Err != nil {
		level := zap.WarnLevel
		if page.Status >= 500 {
			level = zap.ErrorLevel
		}
		observability.FromContext(ctx).Log(level, "post page degraded",
			zap.String("slug", slug),
			zap.Int("status", page.Status),
			zap.Error(page.Err),
		)
	}

	data := s.base(lang, path, links)
	t := s.Translator(lang)
	post := &handlers.PostData{Page: page, Content: page.Content}
	data.Post = post
	if page.Message != "" {
		post.Message = template.HTML(`<p class="post-message" role="status">` + template.HTMLEscapeString(t(page.Message)) + `</p>`)
	}
	if !page.Found() {
		data.Title = t(page.Message) + " | " + data.SiteTitle
		data.SEO = seo.Meta{Title: data.Title, Robots: "noindex"}
		data.Breadcrumbs = nav.HomeCrumbs(links.Page(1))
		return data
	}

	rec := page.Post
	href := links.Post(rec.Slug)
	category := rec.CategoryOr(s.cfg.Catalog.Uncategorized)
	canonical := seo.Absolute(s.cfg.Site.BaseURL, href)
	home := seo.Absolute(s.cfg.Site.BaseURL, links.Page(1))
	data.Title = rec.Title + " | " + data.SiteTitle
	data.Breadcrumbs = nav.PostCrumbs(links.Page(1), category, rec.Title, href)
	data.SEO = seo.Meta{
		Title:       data.Title,
		Description: page.Description,
		Canonical:   canonical,
		OG: seo.OpenGraph{
			Title:       rec.Title,
			Description: page.Description,
			Type:        "article",
			URL:         canonical,
			SiteName:    data.SiteTitle,
			Locale:      seo.OGLocale(lang),
		},
		Twitter: seo.Twitter{Card: "summary"},
		JSONLD: []template.JS{
			seo.JSON(seo.BlogPosting{
				Headline:      rec.Title,
				URL:           canonical,
				Description:   page.Description,
				DatePublished: format.ISODate(rec.Date),
				Section:       category,
				Keywords:      rec.Tags,
				BlogName:      data.SiteTitle,
				BlogURL:       home,
				Lang:          lang,
			}.Schema()),
			seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
				{Name: t("breadcrumb.home"), Item: home},
				{Name: category},
				{Name: rec.Title, Item: canonical},
			})),
		},
	}
	if page.Status != http.StatusOK {
		data.SEO.Robots = "noindex"
	}
	return data
}

// Render writes data through the layout template.
func (s *Site) Render(w io.Writer, data handlers.PageData) error {
	return s.templates.Render(w, LayoutTemplate, data)
}
