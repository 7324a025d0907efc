package view

import (
	"bytes"
	"fmt"
	"html/template"

	"finitefield.org/hanko-blog/internal/catalog"
)

// Region is the DOM id of the swappable catalog region.
const Region = "catalog"

// Message keys rendered by the catalog views.
const (
	KeyLoadFailed  = "catalog.load_failed"
	KeyViewAll     = "catalog.view_all"
	KeyCollapse    = "catalog.collapse"
	KeyNoResults   = "catalog.no_results"
	KeySearch      = "catalog.search_placeholder"
	KeyPagination  = "catalog.pagination"
	KeyArchiveList = "catalog.archive"
)

const markup = `
{{define "posts"}}<div id="posts" class="posts{{if .ListMode}} list-mode{{end}}">
{{- range .Posts}}
<a class="post-link" href="{{postURL .Slug}}" data-slug="{{.Slug}}">
<article class="post-card">
{{- if .Date}}<div class="post-meta"><time datetime="{{.Date}}">{{.Date}}</time></div>{{end}}
<h2 class="post-title">{{.Title}}</h2>
{{- if not $.ListMode}}
{{- if .Summary}}<p class="post-summary">{{.Summary}}</p>{{end}}
{{- if .Tags}}<div class="tags">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>{{end}}
{{- end}}
</article>
</a>
{{- else}}
<p class="posts-empty">{{t "catalog.no_results"}}</p>
{{- end}}
</div>{{end}}

{{define "archive"}}<div id="posts" class="archive-list" aria-label="{{t "catalog.archive"}}">
{{- range .Groups}}
<details class="archive-category" data-category="{{.Name}}">
<summary class="archive-category-btn"><span class="archive-category-name">{{.Name}}</span> <span class="archive-count">{{len .Posts}}</span></summary>
<ul class="archive-category-list">
{{- range .Posts}}
<li><a class="post-link" href="{{postURL .Slug}}" data-slug="{{.Slug}}">{{.Title}}</a>{{if .Date}} <time datetime="{{.Date}}">{{.Date}}</time>{{end}}</li>
{{- end}}
</ul>
</details>
{{- end}}
</div>{{end}}

{{define "pagination"}}<div id="paginationWrapper" class="pagination-wrapper"{{if not .Show}} hidden{{end}}>
{{- if .Show}}
{{- if .PrevDisabled}}
<span class="page-arrow is-disabled" aria-disabled="true">«</span>
<span id="prevPage" class="page-arrow is-disabled" aria-disabled="true">‹</span>
{{- else}}
<a class="page-arrow" href="{{pageURL 1}}"{{if .Interactive}} hx-post="{{pageAction 1}}"{{end}}>«</a>
<a id="prevPage" class="page-arrow" href="{{pageURL .Prev}}"{{if .Interactive}} hx-post="{{prevAction}}"{{end}}>‹</a>
{{- end}}
<nav id="pagination" class="pagination" aria-label="{{t "catalog.pagination"}}">
{{- range .Pages}}
<a class="page-btn{{if eq . $.Page}} active{{end}}" href="{{pageURL .}}" data-page="{{.}}"{{if eq . $.Page}} aria-current="page"{{end}}{{if $.Interactive}} hx-post="{{pageAction .}}"{{end}}>{{.}}</a>
{{- end}}
</nav>
{{- if .NextDisabled}}
<span id="nextPage" class="page-arrow is-disabled" aria-disabled="true">›</span>
<span class="page-arrow is-disabled" aria-disabled="true">»</span>
{{- else}}
<a id="nextPage" class="page-arrow" href="{{pageURL .Next}}"{{if .Interactive}} hx-post="{{nextAction}}"{{end}}>›</a>
<a class="page-arrow" href="{{pageURL .Total}}"{{if .Interactive}} hx-post="{{pageAction .Total}}"{{end}}>»</a>
{{- end}}
{{- end}}
</div>{{end}}

{{define "toggle"}}<a id="allPostsBtn" class="all-posts-btn" href="{{.URL}}" data-mode="{{.Mode}}"{{if .Interactive}} hx-post="{{archiveAction}}"{{end}}>{{t .Label}}</a>{{end}}

{{define "region"}}<section id="catalog" class="catalog" data-mode="{{.View.Mode}}" data-page="{{.View.Page}}"{{if .View.Searching}} data-searching="true"{{end}}{{if .Interactive}} hx-target="#catalog" hx-swap="outerHTML"{{end}}>
<div class="catalog-actions">{{template "toggle" .Toggle}}</div>
{{if .View.Grouped}}{{template "archive" .View}}{{else}}{{template "posts" .List}}{{end}}
{{template "pagination" .Pager}}
</section>{{end}}

{{define "search"}}<form class="search-form" action="/" method="get" role="search" onsubmit="return false">
<input id="search" class="search-input" type="search" name="q" value="{{.Query}}" placeholder="{{t "catalog.search_placeholder"}}" autocomplete="off" hx-get="{{searchAction}}" hx-trigger="input" hx-target="#catalog" hx-swap="outerHTML">
</form>{{end}}

{{define "message"}}<p class="catalog-message" role="status">{{t .}}</p>{{end}}
`

var base = template.Must(template.New("view").Funcs(funcs(nil, Endpoints{}, nil)).Parse(markup))

// Config configures a Renderer.
type Config struct {
	// Links addresses posts and pages. Defaults to QueryLinks.
	Links Links
	// Endpoints enables htmx attributes when set.
	Endpoints *Endpoints
	// T translates message keys. Defaults to returning the key.
	T func(key string) string
}

// Renderer turns views into markup. It performs no I/O.
type Renderer struct {
	links     Links
	endpoints *Endpoints
	t         func(string) string
}

// NewRenderer builds a Renderer.
func NewRenderer(cfg Config) *Renderer {
	r := &Renderer{links: cfg.Links, endpoints: cfg.Endpoints, t: cfg.T}
	if r.links == nil {
		r.links = QueryLinks{}
	}
	if r.t == nil {
		r.t = func(key string) string { return key }
	}
	return r
}

// WithTranslator returns a copy of r translating through t.
func (r *Renderer) WithTranslator(t func(string) string) *Renderer {
	cp := *r
	if t != nil {
		cp.t = t
	}
	return &cp
}

// Interactive reports whether rendered markup carries htmx attributes.
func (r *Renderer) Interactive() bool { return r.endpoints != nil }

// Links returns the link scheme used by r.
func (r *Renderer) Links() Links { return r.links }

type listData struct {
	Posts    []catalog.PostRecord
	ListMode bool
}

type pagerData struct {
	Show         bool
	Interactive  bool
	Page         int
	Total        int
	Prev         int
	Next         int
	Pages        []int
	PrevDisabled bool
	NextDisabled bool
}

type toggleData struct {
	URL         string
	Label       string
	Mode        Mode
	Interactive bool
}

type regionData struct {
	View        View
	List        listData
	Pager       pagerData
	Toggle      toggleData
	Interactive bool
}

// Posts renders records as cards, or as compact links when listMode is set.
func (r *Renderer) Posts(records []catalog.PostRecord, listMode bool) (template.HTML, error) {
	return r.exec("posts", listData{Posts: records, ListMode: listMode})
}

// Archive renders category groups, each collapsed.
func (r *Renderer) Archive(groups []catalog.Group) (template.HTML, error) {
	return r.exec("archive", View{Mode: Archive, Groups: groups})
}

// Pagination renders the page controls for v.
func (r *Renderer) Pagination(v View) (template.HTML, error) {
	return r.exec("pagination", r.pager(v))
}

// Region renders the whole swappable catalog region for v.
func (r *Renderer) Region(v View) (template.HTML, error) {
	return r.exec("region", regionData{
		View:        v,
		List:        listData{Posts: v.Posts, ListMode: v.ListMode},
		Pager:       r.pager(v),
		Toggle:      r.toggle(v),
		Interactive: r.Interactive(),
	})
}

// Search renders the search input. Static renderers have none.
func (r *Renderer) Search(query string) (template.HTML, error) {
	if !r.Interactive() {
		return "", nil
	}
	return r.exec("search", struct{ Query string }{query})
}

// Message renders a single localized placeholder.
func (r *Renderer) Message(key string) template.HTML {
	out, err := r.exec("message", key)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(r.t(key)))
	}
	return out
}

func (r *Renderer) pager(v View) pagerData {
	p := pagerData{
		Show:         v.ShowPagination,
		Interactive:  r.Interactive(),
		Page:         v.Page,
		Total:        v.TotalPages,
		Prev:         v.Page - 1,
		Next:         v.Page + 1,
		PrevDisabled: v.PrevDisabled,
		NextDisabled: v.NextDisabled,
	}
	if p.Show {
		p.Pages = make([]int, v.TotalPages)
		for i := range p.Pages {
			p.Pages[i] = i + 1
		}
	}
	return p
}

func (r *Renderer) toggle(v View) toggleData {
	t := toggleData{Mode: v.Mode, Interactive: r.Interactive()}
	if v.Mode == Archive {
		t.Label = KeyCollapse
		t.URL = r.links.Page(v.Page)
	} else {
		t.Label = KeyViewAll
		t.URL = r.links.Archive()
	}
	return t
}

func (r *Renderer) exec(name string, data any) (template.HTML, error) {
	ep := Endpoints{}
	if r.endpoints != nil {
		ep = *r.endpoints
	}
	tmpl, err := base.Clone()
	if err != nil {
		return "", err
	}
	tmpl = tmpl.Funcs(funcs(r.links, ep, r.t))
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func funcs(links Links, ep Endpoints, t func(string) string) template.FuncMap {
	if links == nil {
		links = QueryLinks{}
	}
	if t == nil {
		t = func(key string) string { return key }
	}
	return template.FuncMap{
		"t":             t,
		"postURL":       links.Post,
		"pageURL":       links.Page,
		"archiveURL":    links.Archive,
		"pageAction":    ep.Page,
		"prevAction":    ep.Prev,
		"nextAction":    ep.Next,
		"archiveAction": ep.Archive,
		"searchAction":  ep.Search,
	}
}
