package handlers

import (
	"strings"

	"booteh.app/web/internal/format"
	"booteh.app/web/internal/sections"
	"booteh.app/web/internal/seo"
)

// Home attaches the landing payload and its structured data to vm.
func Home(vm PageData, site Site, landing sections.Landing) PageData {
	vm.Content = landing
	base := strings.TrimRight(site.BaseURL, "/")
	vm.SEO.JSONLD = append(vm.SEO.JSONLD,
		seo.JSON(seo.Organization(site.Name, base, base+"/assets/logo.svg")),
		seo.JSON(seo.WebSite(site.Name, base, vm.Lang)),
	)
	if landing.Insights.State == sections.StateReady {
		entries := make([]map[string]any, 0, len(landing.Insights.Posts))
		for _, p := range landing.Insights.Posts {
			entries = append(entries, seo.Article(p.Title, base+"/blog/"+p.Slug, p.CoverImageURL, p.Author, format.ISODate(p.Date())))
		}
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.ItemList(entries)))
	}
	return vm
}
