package seo

import (
	"encoding/json"
	"html/template"
)

const schemaContext = "https://schema.org"

// JSON marshals v for a <script type="application/ld+json"> block. Unmarshalable
// values render as nothing.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// node carries the @context/@type pair. Nested nodes leave Context empty.
type node struct {
	Context string `json:"@context,omitempty"`
	Type    string `json:"@type"`
}

func root(typ string) node { return node{Context: schemaContext, Type: typ} }

// BlogSchema describes the catalog index, or the blog a post belongs to.
type BlogSchema struct {
	node
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	InLanguage  string `json:"inLanguage,omitempty"`
}

func Blog(name, url, description, lang string) BlogSchema {
	return BlogSchema{node: root("Blog"), Name: name, URL: url, Description: description, InLanguage: lang}
}

// WebSiteSchema advertises the catalog search box.
type WebSiteSchema struct {
	node
	Name            string        `json:"name"`
	URL             string        `json:"url,omitempty"`
	PotentialAction *SearchAction `json:"potentialAction,omitempty"`
}

type SearchAction struct {
	node
	Target     string `json:"target"`
	QueryInput string `json:"query-input"`
}

// WebSite builds the site schema; searchURL gets the search term appended.
func WebSite(name, url, searchURL string) WebSiteSchema {
	s := WebSiteSchema{node: root("WebSite"), Name: name, URL: url}
	if searchURL != "" {
		s.PotentialAction = &SearchAction{
			node:       node{Type: "SearchAction"},
			Target:     searchURL + "{search_term_string}",
			QueryInput: "required name=search_term_string",
		}
	}
	return s
}

// BreadcrumbItem is one crumb; Item is its absolute URL, empty for unlinked crumbs.
type BreadcrumbItem struct {
	Name string
	Item string
}

type BreadcrumbSchema struct {
	node
	ItemListElement []ListItem `json:"itemListElement"`
}

type ListItem struct {
	node
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item,omitempty"`
}

func BreadcrumbList(items []BreadcrumbItem) BreadcrumbSchema {
	list := BreadcrumbSchema{node: root("BreadcrumbList"), ItemListElement: make([]ListItem, len(items))}
	for i, it := range items {
		list.ItemListElement[i] = ListItem{node: node{Type: "ListItem"}, Position: i + 1, Name: it.Name, Item: it.Item}
	}
	return list
}

// BlogPosting collects what a post page knows about its post.
type BlogPosting struct {
	Headline      string
	URL           string
	Description   string
	DatePublished string
	Section       string
	Keywords      []string
	BlogName      string
	BlogURL       string
	Lang          string
}

type PostingSchema struct {
	node
	Headline         string      `json:"headline"`
	URL              string      `json:"url,omitempty"`
	MainEntityOfPage string      `json:"mainEntityOfPage,omitempty"`
	Description      string      `json:"description,omitempty"`
	DatePublished    string      `json:"datePublished,omitempty"`
	ArticleSection   string      `json:"articleSection,omitempty"`
	Keywords         []string    `json:"keywords,omitempty"`
	InLanguage       string      `json:"inLanguage,omitempty"`
	IsPartOf         *BlogSchema `json:"isPartOf,omitempty"`
}

func (p BlogPosting) Schema() PostingSchema {
	s := PostingSchema{
		node:             root("BlogPosting"),
		Headline:         p.Headline,
		URL:              p.URL,
		MainEntityOfPage: p.URL,
		Description:      p.Description,
		DatePublished:    p.DatePublished,
		ArticleSection:   p.Section,
		Keywords:         p.Keywords,
		InLanguage:       p.Lang,
	}
	if p.BlogName != "" {
		s.IsPartOf = &BlogSchema{node: node{Type: "Blog"}, Name: p.BlogName, URL: p.BlogURL}
	}
	return s
}
