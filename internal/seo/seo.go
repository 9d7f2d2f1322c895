// Package seo builds page metadata and schema.org payloads.
package seo

import (
	"net/url"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	Locale      string
}

// Alternate links a translation of the page.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Alternates  []Alternate
	JSONLD      []string
}

var ogLocales = map[string]string{"ar": "ar_AR", "en": "en_US"}

// NewMeta builds metadata for a page at path on baseURL, with hreflang
// alternates for every language in langs.
func NewMeta(baseURL, path, lang, title, description string, langs []string) Meta {
	canonical := absolute(baseURL, path, "")
	m := Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Type:        "website",
			Locale:      ogLocales[lang],
		},
	}
	for _, l := range langs {
		m.Alternates = append(m.Alternates, Alternate{Href: absolute(baseURL, path, l), Hreflang: l})
	}
	if len(langs) > 0 {
		m.Alternates = append(m.Alternates, Alternate{Href: canonical, Hreflang: "x-default"})
	}
	return m
}

func absolute(baseURL, path, lang string) string {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return path
	}
	if lang != "" {
		q := u.Query()
		q.Set("hl", lang)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
