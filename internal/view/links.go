package view

import (
	"net/url"
	"strconv"
	"strings"
)

// Links maps catalog destinations to URLs.
type Links interface {
	Post(slug string) string
	Page(n int) string
	Archive() string
	Asset(name string) string
}

// QueryLinks addresses the served site: /post?slug=x and /?page=n.
type QueryLinks struct{}

func (QueryLinks) Post(slug string) string { return "/post?slug=" + url.QueryEscape(slug) }

func (QueryLinks) Page(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/?page=" + strconv.Itoa(n)
}

func (QueryLinks) Archive() string { return "/?view=archive" }

func (QueryLinks) Asset(name string) string { return "/assets/" + strings.TrimLeft(name, "/") }

// PathLinks addresses the exported static tree: /posts/x/ and /page/n/.
type PathLinks struct {
	Prefix string
}

func (l PathLinks) base() string { return strings.TrimRight(l.Prefix, "/") }

func (l PathLinks) Post(slug string) string {
	return l.base() + "/posts/" + url.PathEscape(slug) + "/"
}

func (l PathLinks) Page(n int) string {
	if n <= 1 {
		return l.base() + "/"
	}
	return l.base() + "/page/" + strconv.Itoa(n) + "/"
}

func (l PathLinks) Archive() string { return l.base() + "/archive/" }

func (l PathLinks) Asset(name string) string {
	return l.base() + "/assets/" + strings.TrimLeft(name, "/")
}

// Endpoints are the fragment routes an interactive region talks to.
type Endpoints struct {
	Prefix string
}

// DefaultEndpoints mounts the fragment routes under /catalog.
var DefaultEndpoints = Endpoints{Prefix: "/catalog"}

func (e Endpoints) base() string { return strings.TrimRight(e.Prefix, "/") }

func (e Endpoints) Search() string    { return e.base() + "/search" }
func (e Endpoints) Page(n int) string { return e.base() + "/page/" + strconv.Itoa(n) }
func (e Endpoints) Archive() string   { return e.base() + "/archive" }
func (e Endpoints) Prev() string      { return e.base() + "/prev" }
func (e Endpoints) Next() string      { return e.base() + "/next" }
