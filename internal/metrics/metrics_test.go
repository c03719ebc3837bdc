package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsUseRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware())
	router.HandleFunc("/api/widgets/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(router)
	defer srv.Close()

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/widgets/{id}", "200"))

	for _, id := range []string{"1", "2", "abc"} {
		resp, err := http.Get(srv.URL + "/api/widgets/" + id)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
	}

	got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/widgets/{id}", "200"))
	if got-before != 3 {
		t.Fatalf("template-labeled counter advanced by %v, want 3", got-before)
	}

	// The raw paths must not have minted their own series.
	for _, raw := range []string{"/api/widgets/1", "/api/widgets/2", "/api/widgets/abc"} {
		if v := testutil.ToFloat64(httpRequests.WithLabelValues("GET", raw, "200")); v != 0 {
			t.Fatalf("raw path %s minted its own series (count %v)", raw, v)
		}
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware())
	router.HandleFunc("/api/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(router)
	defer srv.Close()

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/broken", "502"))

	resp, err := http.Get(srv.URL + "/api/broken")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/broken", "502"))
	if got-before != 1 {
		t.Fatalf("status-labeled counter advanced by %v, want 1", got-before)
	}
}
