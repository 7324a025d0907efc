package handlers

import (
	"html/template"

	"finitefield.org/hanko-blog/internal/detail"
	"finitefield.org/hanko-blog/internal/nav"
	"finitefield.org/hanko-blog/internal/seo"
	"finitefield.org/hanko-blog/internal/view"
)

// PageData is the view model every page passes to the shared layout.
type PageData struct {
	Title     string
	SiteTitle string
	Lang      string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Links       view.Links
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string
	// Interactive pages load htmx and send the CSRF header.
	Interactive bool

	Index *IndexData
	Post  *PostData
}

// IndexData is the catalog index payload.
type IndexData struct {
	Search template.HTML
	Region template.HTML
	// Message replaces the region when the catalog failed to load.
	Message template.HTML
}

// PostData is the detail page payload.
type PostData struct {
	Page    detail.Page
	Content template.HTML
	Message template.HTML
}
