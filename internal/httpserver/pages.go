package httpserver

import (
	"errors"
	"net/http"

	"booteh.app/web/internal/cms"
	"booteh.app/web/internal/handlers"
	mw "booteh.app/web/internal/middleware"
	"booteh.app/web/internal/sections"
	"booteh.app/web/internal/status"
)

type app struct {
	cfg    Config
	render *Renderer
	loader *sections.Loader
}

func (a *app) t(r *http.Request, key string) string {
	return a.cfg.Bundle.T(mw.LocaleFromContext(r.Context()).Lang, key)
}

func (a *app) page(r *http.Request, titleKey, descKey string) handlers.PageData {
	desc := ""
	if descKey != "" {
		desc = a.t(r, descKey)
	}
	return handlers.NewPage(r, a.cfg.Site, a.t(r, titleKey), desc)
}

func (a *app) home(w http.ResponseWriter, r *http.Request) {
	landing := a.loader.Landing(r.Context())
	vm := a.page(r, "brand.name", "brand.tagline")
	vm.Title = landing.Hero.Title
	vm = handlers.Home(vm, a.cfg.Site, landing)
	a.render.Page(w, r, http.StatusOK, "home", vm)
}

func (a *app) contentPage(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := mw.LocaleFromContext(r.Context()).Lang
		if a.cfg.Content == nil {
			a.notFound(w, r)
			return
		}
		pg, err := a.cfg.Content.Page(slug, lang)
		if errors.Is(err, cms.ErrNotFound) {
			a.notFound(w, r)
			return
		}
		if err != nil {
			vm := a.page(r, "errors.title", "")
			vm.Content = a.t(r, sections.ErrorKey)
			a.render.Page(w, r, http.StatusInternalServerError, "error", vm)
			return
		}
		vm := handlers.NewPage(r, a.cfg.Site, pg.Title, pg.Summary)
		if pg.SEO.Description != "" {
			vm.SEO.Description = pg.SEO.Description
			vm.SEO.OG.Description = pg.SEO.Description
		}
		if pg.SEO.OGImage != "" {
			vm.SEO.OG.Image = pg.SEO.OGImage
		}
		vm.SEO.OG.Type = "article"
		vm.Content = pg
		a.render.Page(w, r, http.StatusOK, "content", vm)
	}
}

func (a *app) insightsFragment(w http.ResponseWriter, r *http.Request) {
	lang := mw.LocaleFromContext(r.Context()).Lang
	a.render.Fragment(w, r, "insights", map[string]any{"Lang": lang, "Section": a.loader.Insights(r.Context())})
}

func (a *app) assessmentsFragment(w http.ResponseWriter, r *http.Request) {
	lang := mw.LocaleFromContext(r.Context()).Lang
	a.render.Fragment(w, r, "assessments", map[string]any{"Lang": lang, "Section": a.loader.Assessments(r.Context())})
}

// dashboardView is the signed-in landing of the application shell.
type dashboardView struct {
	Assessments sections.Assessments
	Insights    sections.Insights
}

func (a *app) dashboard(w http.ResponseWriter, r *http.Request) {
	landing := a.loader.Landing(r.Context())
	vm := a.page(r, "dashboard.title", "")
	vm.SEO.Robots = "noindex"
	vm.Content = dashboardView{Assessments: landing.Assessments, Insights: landing.Insights}
	a.render.Page(w, r, http.StatusOK, "dashboard", vm)
}

func (a *app) assessments(w http.ResponseWriter, r *http.Request) {
	vm := a.page(r, "assessments.title", "assessments.subtitle")
	vm.SEO.Robots = "noindex"
	vm.Content = a.loader.Assessments(r.Context())
	a.render.Page(w, r, http.StatusOK, "assessments", vm)
}

// adminView is the admin panel payload.
type adminView struct {
	Status status.Summary
}

func (a *app) admin(w http.ResponseWriter, r *http.Request) {
	vm := a.page(r, "admin.title", "")
	vm.SEO.Robots = "noindex"
	vm.Content = adminView{Status: a.cfg.Status.FetchSummary(r.Context())}
	a.render.Page(w, r, http.StatusOK, "admin", vm)
}

func (a *app) notFound(w http.ResponseWriter, r *http.Request) {
	vm := a.page(r, "errors.not_found_title", "")
	vm.SEO.Robots = "noindex"
	vm.Content = a.t(r, "errors.not_found")
	a.render.Page(w, r, http.StatusNotFound, "error", vm)
}
