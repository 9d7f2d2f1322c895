// Package nav builds the site navigation and breadcrumbs.
package nav

import (
	"path"
	"strings"

	"booteh.app/web/internal/auth"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string
	LabelKey string
	// Requires hides the item from sessions lacking the capability. Empty means public.
	Requires auth.Capability
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/about", LabelKey: "nav.about"},
	{Path: "/dashboard", LabelKey: "nav.dashboard", Requires: auth.CapDashboard},
	{Path: "/assessments", LabelKey: "nav.assessments", Requires: auth.CapAssessments},
	{Path: "/admin", LabelKey: "nav.admin", Requires: auth.CapAdminPanel},
}

// Build renders the items visible to sess with active state given the current path.
func Build(currentPath string, sess *auth.Session) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		if it.Requires != "" && !sess.Has(it.Requires) {
			continue
		}
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path, starting at home.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		if part == "" {
			continue
		}
		href += "/" + part
		crumb := Crumb{Href: href, Label: titleFromSegment(part), Active: i == len(parts)-1}
		crumb.LabelKey = labelKeyFor(href)
		crumbs = append(crumbs, crumb)
	}
	return crumbs
}

var extraLabels = map[string]string{
	"/privacy":          "nav.privacy",
	"/assessments/self": "self.title",
	"/login":            "nav.login",
	"/admin/login":      "login.admin_title",
}

func labelKeyFor(href string) string {
	for _, it := range Main {
		if it.Path == href {
			return it.LabelKey
		}
	}
	return extraLabels[href]
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
