package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"booteh.app/web/internal/testutil"
)

type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, h: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) setCookie(name, value string) {
	c.cookies[name] = &http.Cookie{Name: name, Value: value}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = &http.Cookie{Name: ck.Name, Value: ck.Value}
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) csrfToken(target string) string {
	c.t.Helper()
	rec := c.get(target)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	doc := testutil.ParseHTML(c.t, rec.Body.Bytes())
	token, ok := doc.Find(`main input[name="csrf_token"]`).First().Attr("value")
	require.True(c.t, ok, "csrf input missing")
	require.NotEmpty(c.t, token)
	return token
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	return testutil.ParseHTML(t, rec.Body.Bytes())
}

func TestLocaleToggleUpdatesTextAndDirection(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	require.Equal(t, "ar", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, "افهم نفسك بعمق أكبر", strings.TrimSpace(doc.Find(".hero h1").Text()))

	rec = c.get("/?hl=en")
	doc = document(t, rec)
	require.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "ltr", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, "Understand yourself more deeply", strings.TrimSpace(doc.Find(".hero h1").Text()))
	require.Equal(t, "en", rec.Header().Get("Content-Language"))

	// the choice sticks without the query
	doc = document(t, c.get("/"))
	require.Equal(t, "ltr", doc.Find("html").AttrOr("dir", ""))

	doc = document(t, c.get("/?hl=ar"))
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, "أحدث المقالات", strings.TrimSpace(doc.Find("#insights h2").Text()))
}

func TestLocaleSwitcherLinks(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	doc := document(t, c.get("/about?hl=en"))
	var hrefs []string
	doc.Find(".locale-switcher a").Each(func(_ int, s *goquery.Selection) {
		hrefs = append(hrefs, s.AttrOr("href", ""))
	})
	require.Equal(t, []string{"/about?hl=ar", "/about?hl=en"}, hrefs)
	require.Equal(t, "en", doc.Find(".locale-switcher a.active").AttrOr("data-locale", ""))
}

func TestAcceptLanguageWhenEnabled(t *testing.T) {
	api := testutil.NewBackend(t)
	h := testutil.NewHandler(t, api, testutil.WithAcceptLanguage())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "ltr", document(t, rec).Find("html").AttrOr("dir", ""))
}

func TestLandingSections(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	doc := document(t, c.get("/?hl=en"))
	require.Equal(t, "ready", doc.Find("#insights").AttrOr("data-state", ""))
	require.Equal(t, 2, doc.Find("#insights .post").Length())
	require.Contains(t, doc.Find("#insights .post").First().Text(), "Quiet strength")
	require.Equal(t, 0, doc.Find("#insights .post b").Length())
	require.Equal(t, "ready", doc.Find("#assessments").AttrOr("data-state", ""))
	require.Equal(t, "Big Five", strings.TrimSpace(doc.Find("#assessments .personality h4").Text()))
	require.Equal(t, "The Lighthouse", strings.TrimSpace(doc.Find("#assessments .mystery h4").Text()))
	require.Equal(t, 4, doc.Find(".feature").Length())

	blog := api.Requests(http.MethodGet, "/api/blog")
	require.Len(t, blog, 1)
	require.Equal(t, "limit=3", blog[0].Query)
	require.Equal(t, "en", blog[0].Header.Get("Accept-Language"))
}

func TestEmptyBlogRendersPlaceholder(t *testing.T) {
	api := testutil.NewBackend(t)
	api.Set(http.MethodGet, "/api/blog", http.StatusOK, map[string]any{"success": true, "data": []any{}})
	c := newClient(t, testutil.NewHandler(t, api))

	doc := document(t, c.get("/?hl=en"))
	require.Equal(t, "empty", doc.Find("#insights").AttrOr("data-state", ""))
	require.Equal(t, "No articles yet.", strings.TrimSpace(doc.Find("#insights .section-message").Text()))
}

func TestBackendFailureRendersGenericMessage(t *testing.T) {
	api := testutil.NewBackend(t)
	api.Fail(http.MethodGet, "/api/blog", http.StatusInternalServerError)
	api.Fail(http.MethodGet, "/api/mystery", http.StatusInternalServerError)
	c := newClient(t, testutil.NewHandler(t, api))

	rec := c.get("/?hl=en")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	generic := "We couldn't load this content. Please try again later."
	require.Equal(t, "error", doc.Find("#insights").AttrOr("data-state", ""))
	require.Equal(t, generic, strings.TrimSpace(doc.Find("#insights .section-message").Text()))
	require.Equal(t, "error", doc.Find("#assessments").AttrOr("data-state", ""))
	require.Equal(t, generic, strings.TrimSpace(doc.Find("#assessments .section-message").Text()))
	require.Equal(t, 0, doc.Find("#assessments .card").Length())
}

func TestFragmentsRequireHTMX(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	require.Equal(t, http.StatusNotFound, c.get("/fragments/insights").Code)

	req := httptest.NewRequest(http.MethodGet, "/fragments/insights?hl=en", nil)
	req.Header.Set("HX-Request", "true")
	rec := c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "<html")
	doc := document(t, rec)
	require.Equal(t, "Latest insights", strings.TrimSpace(doc.Find("#insights h2").Text()))

	api.Fail(http.MethodGet, "/api/personality-tests", http.StatusBadGateway)
	req = httptest.NewRequest(http.MethodGet, "/fragments/assessments", nil)
	req.Header.Set("HX-Request", "true")
	doc = document(t, c.do(req))
	require.Equal(t, "error", doc.Find("#assessments").AttrOr("data-state", ""))
}

func TestGuards(t *testing.T) {
	api := testutil.NewBackend(t)
	h := testutil.NewHandler(t, api)

	cases := []struct {
		name     string
		path     string
		cookie   string
		htmx     bool
		status   int
		location string
	}{
		{name: "dashboard anonymous", path: "/dashboard", status: http.StatusFound, location: "/login"},
		{name: "dashboard user", path: "/dashboard", cookie: "isLoggedIn", status: http.StatusOK},
		{name: "assessments anonymous", path: "/assessments", status: http.StatusFound, location: "/login"},
		{name: "assessments user", path: "/assessments", cookie: "isLoggedIn", status: http.StatusOK},
		{name: "admin anonymous", path: "/admin", status: http.StatusFound, location: "/admin/login"},
		{name: "admin as user", path: "/admin", cookie: "isLoggedIn", status: http.StatusFound, location: "/admin/login"},
		{name: "admin as admin", path: "/admin", cookie: "isAdminLoggedIn", status: http.StatusOK},
		{name: "admin implies user", path: "/dashboard", cookie: "isAdminLoggedIn", status: http.StatusOK},
		{name: "admin implies assessments", path: "/assessments", cookie: "isAdminLoggedIn", status: http.StatusOK},
		{name: "htmx anonymous", path: "/dashboard", htmx: true, status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: tc.cookie, Value: "true"})
			}
			if tc.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
			if tc.location != "" {
				require.Equal(t, tc.location, rec.Header().Get("Location"))
			}
			if tc.htmx {
				require.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
			}
		})
	}
}

func TestAdminShowsBackendStatus(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))
	c.setCookie("isAdminLoggedIn", "1")

	doc := document(t, c.get("/admin?hl=en"))
	require.Equal(t, "All systems operational", strings.TrimSpace(doc.Find(".status .state").Text()))
	require.Equal(t, 1, doc.Find(".status-operational.status").Length())

	api.Fail(http.MethodGet, "/api/health", http.StatusServiceUnavailable)
	doc = document(t, c.get("/admin?hl=en"))
	require.Equal(t, "Service unavailable", strings.TrimSpace(doc.Find(".status .state").Text()))
}

func TestSelfAssessmentSubmission(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))
	c.setCookie("isLoggedIn", "1")
	c.setCookie("authToken", "user-token")

	token := c.csrfToken("/assessments/self?hl=en")
	doc := document(t, c.get("/assessments/self"))
	require.Equal(t, 22, doc.Find("fieldset.question").Length())
	require.Equal(t, 5, doc.Find("fieldset#q1 input[type=radio]").Length())

	form := url.Values{"csrf_token": {token}}
	for i := 1; i <= 22; i++ {
		form.Set("q"+strconv.Itoa(i), "3")
	}
	form.Set("q2", "5")
	rec := c.post("/assessments/self", form)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/assessments", rec.Header().Get("Location"))

	posts := api.Requests(http.MethodPost, "/api")
	require.Len(t, posts, 1)
	require.Equal(t, "Bearer user-token", posts[0].Header.Get("Authorization"))
	var body struct {
		Answers map[string]int `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	require.Len(t, body.Answers, 22)
	require.Equal(t, 3, body.Answers["q1"])
	require.Equal(t, 5, body.Answers["q2"])

	doc = document(t, c.get("/assessments"))
	require.Equal(t, "Your answers were received. Thank you!", strings.TrimSpace(doc.Find(".flash").Text()))
	doc = document(t, c.get("/assessments"))
	require.Equal(t, 0, doc.Find(".flash").Length())
}

func TestSelfAssessmentValidation(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))
	c.setCookie("isLoggedIn", "1")

	token := c.csrfToken("/assessments/self?hl=en")
	rec := c.post("/assessments/self", url.Values{"csrf_token": {token}, "q1": {"3"}, "q2": {"9"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := document(t, rec)
	require.Equal(t, "Please answer every statement.", strings.TrimSpace(doc.Find(".form-error").Text()))
	_, checked := doc.Find(`input[name="q1"][value="3"]`).Attr("checked")
	require.True(t, checked)
	require.Empty(t, api.Requests(http.MethodPost, "/api"))

	api.Fail(http.MethodPost, "/api", http.StatusInternalServerError)
	form := url.Values{"csrf_token": {token}}
	for i := 1; i <= 22; i++ {
		form.Set("q"+strconv.Itoa(i), "4")
	}
	rec = c.post("/assessments/self", form)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Len(t, api.Requests(http.MethodPost, "/api"), 1)
}

func TestSubmissionRejectsMissingCSRF(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))
	c.setCookie("isLoggedIn", "1")

	rec := c.post("/assessments/self", url.Values{"q1": {"3"}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, api.Requests(http.MethodPost, "/api"))
}

func TestLoginSetsFlagAndToken(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	token := c.csrfToken("/login")
	rec := c.post("/login", url.Values{"csrf_token": {token}, "username": {"sara"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Equal(t, "user-token", c.cookies["authToken"].Value)
	require.NotEmpty(t, c.cookies["isLoggedIn"].Value)
	require.Equal(t, http.StatusOK, c.get("/dashboard").Code)

	rec = c.post("/logout", url.Values{"csrf_token": {token}})
	require.Equal(t, http.StatusForbidden, rec.Code, "pre-login token must not survive sign in")

	signedIn := c.csrfToken("/assessments/self")
	require.NotEqual(t, token, signedIn)
	rec = c.post("/logout", url.Values{"csrf_token": {signedIn}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.NotContains(t, c.cookies, "isLoggedIn")
	require.Equal(t, http.StatusFound, c.get("/dashboard").Code)

	rec = c.post("/login", url.Values{"csrf_token": {signedIn}, "username": {"sara"}, "password": {"secret"}})
	require.Equal(t, http.StatusForbidden, rec.Code, "signed-in token must not survive sign out")
}

func TestAdminLogin(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	token := c.csrfToken("/admin/login")
	rec := c.post("/admin/login", url.Values{"csrf_token": {token}, "username": {"root"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))
	require.Equal(t, "admin-token", c.cookies["authToken"].Value)
	require.Equal(t, http.StatusOK, c.get("/admin").Code)
}

func TestLoginFailure(t *testing.T) {
	api := testutil.NewBackend(t)
	api.Fail(http.MethodPost, "/api/auth/login", http.StatusUnauthorized)
	c := newClient(t, testutil.NewHandler(t, api))

	token := c.csrfToken("/login?hl=en")
	rec := c.post("/login", url.Values{"csrf_token": {token}, "username": {"sara"}, "password": {"bad"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	doc := document(t, rec)
	require.Contains(t, doc.Find(".form-error").Text(), "Sign in failed")
	require.Equal(t, "sara", doc.Find(`input[name="username"]`).AttrOr("value", ""))
	require.NotContains(t, c.cookies, "isLoggedIn")
}

func TestContentPages(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	doc := document(t, c.get("/about?hl=en"))
	require.Equal(t, "About Booteh", strings.TrimSpace(doc.Find("article h1").Text()))
	require.Equal(t, 3, doc.Find(".prose li").Length())
	require.Contains(t, doc.Find("title").Text(), "About Booteh | Booteh")

	doc = document(t, c.get("/privacy?hl=ar"))
	require.Equal(t, "سياسة الخصوصية", strings.TrimSpace(doc.Find("article h1").Text()))

	rec := c.get("/does-not-exist?hl=en")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Page not found", strings.TrimSpace(document(t, rec).Find("h1").Text()))
}

func TestSceneJSON(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	first := c.get("/background/scene.json?seed=5")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, first.Body.String(), c.get("/background/scene.json?seed=5").Body.String())

	var scene struct {
		Seed   int64 `json:"seed"`
		Shapes []struct {
			Kind string `json:"kind"`
		} `json:"shapes"`
		Particles []json.RawMessage `json:"particles"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &scene))
	require.Equal(t, int64(5), scene.Seed)
	require.Len(t, scene.Shapes, 18)
	require.Len(t, scene.Particles, 420)

	require.Equal(t, http.StatusBadRequest, c.get("/background/scene.json?seed=x").Code)
}

func TestHealthzAndMetrics(t *testing.T) {
	api := testutil.NewBackend(t)
	c := newClient(t, testutil.NewHandler(t, api))

	rec := c.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())

	c.get("/")
	rec = c.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `booteh_web_http_requests_total{method="GET",route="/",status_code="200"}`)
	require.Contains(t, rec.Body.String(), `booteh_web_backend_requests_total`)
}
