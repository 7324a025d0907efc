package nav

import (
	"strings"
)

// Item represents a top-level navigation tab.
type Item struct {
	Path     string // e.g. "/" or "https://apps.example.com/"
	LabelKey string // i18n key, e.g. "nav.posts"
	Label    string // literal label when LabelKey is empty
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
	External bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Posts is the catalog tab; it is always first.
var Posts = Item{Path: "/", LabelKey: "nav.posts"}

// Build renders the posts tab followed by extra tabs, marking the active one.
// home is the catalog's first page; a site exported under a path prefix passes
// that prefix here and currentPath is matched with it removed. Post pages keep
// the posts tab active.
func Build(currentPath, home string, extra []Item) []RenderedItem {
	posts := Posts
	if home != "" {
		posts.Path = home
	}
	if prefix := strings.TrimRight(home, "/"); prefix != "" &&
		(currentPath == prefix || strings.HasPrefix(currentPath, prefix+"/")) {
		currentPath = strings.TrimPrefix(currentPath, prefix)
	}
	if currentPath == "" {
		currentPath = "/"
	}
	all := append([]Item{posts}, extra...)
	items := make([]RenderedItem, 0, len(all))
	for i, it := range all {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Label:    it.Label,
			Active:   isActive(it.Path, currentPath, i == 0),
			External: isExternal(it.Path),
		})
	}
	return items
}

func isActive(itemPath, currentPath string, catalogTab bool) bool {
	if isExternal(itemPath) {
		return false
	}
	if catalogTab {
		return currentPath == "/" || isPostPath(currentPath) ||
			strings.HasPrefix(currentPath, "/page/") || strings.HasPrefix(currentPath, "/archive")
	}
	itemPath = strings.TrimRight(itemPath, "/")
	// match exact or prefix boundary: "/apps" or "/apps/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

func isPostPath(p string) bool {
	return p == "/post" || p == "/post.html" || strings.HasPrefix(p, "/posts/")
}

func isExternal(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// PostCrumbs builds Home > category > title for a post page. The category crumb has
// no link.
func PostCrumbs(homeHref, category, title, href string) []Crumb {
	if homeHref == "" {
		homeHref = "/"
	}
	crumbs := []Crumb{{Href: homeHref, LabelKey: "breadcrumb.home"}}
	if category != "" {
		crumbs = append(crumbs, Crumb{Label: category})
	}
	return append(crumbs, Crumb{Href: href, Label: title, Active: true})
}

// HomeCrumbs is the single active Home crumb.
func HomeCrumbs(homeHref string) []Crumb {
	if homeHref == "" {
		homeHref = "/"
	}
	return []Crumb{{Href: homeHref, LabelKey: "breadcrumb.home", Active: true}}
}
