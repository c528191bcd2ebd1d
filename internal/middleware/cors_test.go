package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	req := httptest.NewRequest(method, "/api/health", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	CORS(origins)(next).ServeHTTP(rr, req)
	return rr
}

func TestCORSWildcard(t *testing.T) {
	rr := serve([]string{"*"}, http.MethodGet, "http://ui.test")
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://ui.test" {
		t.Fatalf("unexpected allow origin: %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Fatal("credentials must not be allowed for wildcard")
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("request not forwarded: %d", rr.Code)
	}
}

func TestCORSExplicitOrigin(t *testing.T) {
	rr := serve([]string{"http://ui.test"}, http.MethodGet, "http://ui.test")
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials for explicit origin")
	}

	rr = serve([]string{"http://ui.test"}, http.MethodGet, "http://evil.test")
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be allowed")
	}
}

func TestCORSPreflight(t *testing.T) {
	rr := serve([]string{"*"}, http.MethodOptions, "http://ui.test")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
}
