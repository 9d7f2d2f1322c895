package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"booteh.app/web/internal/auth"
	"booteh.app/web/internal/backend"
	"booteh.app/web/internal/i18n"
	mw "booteh.app/web/internal/middleware"
	"booteh.app/web/internal/sections"
	"booteh.app/web/internal/session"
)

var site = Site{Name: "Booteh", BaseURL: "https://booteh.test", Langs: []string{"ar", "en"}}

func TestNewPageBuildsLayoutModel(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/assessments?tab=mine", nil)
	ctx := mw.WithLocale(req.Context(), i18n.Locale{Lang: "en", Dir: i18n.LTR})
	ctx = auth.WithSession(ctx, &auth.Session{Role: auth.RoleUser})
	req = req.WithContext(ctx)

	vm := NewPage(req, site, "Assessments", "Pick one")
	require.Equal(t, "en", vm.Lang)
	require.Equal(t, "ltr", vm.Dir)
	require.Equal(t, "Assessments | Booteh", vm.SEO.Title)
	require.Equal(t, "https://booteh.test/assessments", vm.SEO.Canonical)
	require.Len(t, vm.Locales, 2)
	require.Equal(t, "/assessments?hl=ar&tab=mine", vm.Locales[0].Href)
	require.True(t, vm.Locales[1].Active)

	var hrefs []string
	for _, it := range vm.Nav {
		hrefs = append(hrefs, it.Href)
	}
	require.Contains(t, hrefs, "/dashboard")
	require.NotContains(t, hrefs, "/admin")
}

func TestNewPageConsumesFlash(t *testing.T) {
	mgr, err := session.NewManager(session.Config{HashKey: session.GenerateKey(32)})
	require.NoError(t, err)

	var first, second *session.Flash
	h := mw.Session(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := mw.SessionFromContext(r.Context())
		sess.SetFlash("success", "flash.logged_in")
		first = NewPage(r, site, "Home", "").Flash
		second = NewPage(r, site, "Home", "").Flash
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, first)
	require.Equal(t, "flash.logged_in", first.Key)
	require.Nil(t, second)
}

func TestHomeAddsStructuredData(t *testing.T) {
	landing := sections.Landing{Insights: sections.Insights{
		State: sections.StateReady,
		Posts: []backend.BlogPost{{Title: "Trust", Slug: "trust", PublishedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)}},
	}}
	vm := Home(PageData{Lang: "ar"}, site, landing)
	require.Len(t, vm.SEO.JSONLD, 3)
	require.Contains(t, vm.SEO.JSONLD[1], `"inLanguage":"ar"`)
	require.True(t, strings.Contains(vm.SEO.JSONLD[2], `"datePublished":"2024-03-02"`))

	landing.Insights.State = sections.StateError
	require.Len(t, Home(PageData{}, site, landing).SEO.JSONLD, 2)
}
