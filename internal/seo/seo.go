package seo

import (
	"html/template"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Meta is the head metadata of one page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []template.JS
}

// Absolute joins base and path. It returns "" without a base so relative canonical
// links are never emitted.
func Absolute(base, path string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return ""
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// OGLocale maps a language to an OpenGraph locale.
func OGLocale(lang string) string {
	switch lang {
	case "ko":
		return "ko_KR"
	case "en":
		return "en_US"
	case "ja":
		return "ja_JP"
	}
	return ""
}
