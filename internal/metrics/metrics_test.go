package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithRegistry(registry), WithNamespace("test"), WithHistogramBuckets([]float64{0.1, 1}))

		Convey("When backend calls are observed", func() {
			m.ObserveBackend("blog", nil, 10*time.Millisecond)
			m.ObserveBackend("blog", errors.New("boom"), 20*time.Millisecond)

			Convey("Then outcomes are counted separately", func() {
				So(testutil.ToFloat64(m.backendRequests.WithLabelValues("blog", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.backendRequests.WithLabelValues("blog", "error")), ShouldEqual, 1)
			})
		})

		Convey("When background resources come and go", func() {
			m.ResourceAllocated()
			m.ResourceAllocated()
			m.ResourceDisposed()

			Convey("Then the gauge tracks live resources", func() {
				So(testutil.ToFloat64(m.backgroundResources), ShouldEqual, 1)
				So(m.LiveBackgroundResources(), ShouldEqual, 1)
			})
		})

		Convey("When the middleware wraps a handler", func() {
			handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

			Convey("Then the request is exported", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(strings.Contains(rec.Body.String(), `test_web_http_requests_total{method="GET",route="/missing",status_code="404"} 1`), ShouldBeTrue)
			})
		})
	})
}
