// Package handlers holds the view models shared by every rendered page.
package handlers

import (
	"net/http"
	"net/url"
	"time"

	"booteh.app/web/internal/auth"
	mw "booteh.app/web/internal/middleware"
	"booteh.app/web/internal/nav"
	"booteh.app/web/internal/seo"
	"booteh.app/web/internal/session"
)

// Site is the process-wide page context.
type Site struct {
	Name      string
	BaseURL   string
	Langs     []string
	Analytics Analytics
}

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Dir       string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Locales     []LocaleLink

	User      *auth.Session
	CSRFToken string
	Flash     *session.Flash
	Year      int

	// Content is the per-page payload.
	Content any
}

// LocaleLink is one entry of the language switcher.
type LocaleLink struct {
	Lang   string
	Href   string
	Active bool
}

// NewPage builds the layout view model for r. title and description are
// already localized. A pending flash message is consumed.
func NewPage(r *http.Request, site Site, title, description string) PageData {
	loc := mw.LocaleFromContext(r.Context())
	user := auth.FromContext(r.Context())

	fullTitle := title
	if site.Name != "" && title != site.Name {
		fullTitle = title + " | " + site.Name
	}

	vm := PageData{
		Title:       title,
		Lang:        loc.Lang,
		Dir:         loc.Dir,
		SEO:         seo.NewMeta(site.BaseURL, r.URL.Path, loc.Lang, fullTitle, description, site.Langs),
		Analytics:   site.Analytics,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path, user),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Locales:     localeLinks(r.URL, site.Langs, loc.Lang),
		User:        user,
		CSRFToken:   mw.CSRFTokenFromContext(r.Context()),
		Year:        time.Now().Year(),
	}
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		vm.Flash = sess.PopFlash()
	}
	return vm
}

// localeLinks keeps the current query and swaps hl.
func localeLinks(u *url.URL, langs []string, current string) []LocaleLink {
	links := make([]LocaleLink, 0, len(langs))
	for _, lang := range langs {
		q := u.Query()
		q.Set("hl", lang)
		links = append(links, LocaleLink{
			Lang:   lang,
			Href:   u.Path + "?" + q.Encode(),
			Active: lang == current,
		})
	}
	return links
}
