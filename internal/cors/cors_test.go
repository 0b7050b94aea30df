package cors

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAllowOrigin(t *testing.T) {
	p := NewPolicy([]string{"https://app.example.com"})

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "", want: "*"},
		{origin: "https://app.example.com", want: "https://app.example.com"},
		{origin: "http://localhost:5173", want: "http://localhost:5173"},
		{origin: "http://localhost", want: "http://localhost"},
		{origin: "https://127.0.0.1:8443", want: "https://127.0.0.1:8443"},
		{origin: "https://evil.example.com", want: "null"},
		{origin: "http://localhost.evil.com", want: "null"},
	}
	for _, tt := range tests {
		if got := p.AllowOrigin(tt.origin); got != tt.want {
			t.Fatalf("AllowOrigin(%q) = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestAllowHeaders_UnionsRequested(t *testing.T) {
	p := NewPolicy(nil)
	got := p.AllowHeaders("X-Custom, content-type")
	if !strings.Contains(got, "X-Custom") {
		t.Fatalf("expected requested header in %q", got)
	}
	// Content-Type is in the default set; the requested lowercase copy
	// must not produce a duplicate.
	if strings.Count(strings.ToLower(got), "content-type") != 1 {
		t.Fatalf("expected exactly one content-type in %q", got)
	}
}

func newTestRouter(p Policy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(p))
	r.POST("/v1/calls/invite", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestMiddleware_PreflightLocalhost(t *testing.T) {
	r := newTestRouter(NewPolicy(nil))

	req := httptest.NewRequest(http.MethodOptions, "/v1/calls/invite", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials header, got %q", got)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("preflight must have no body")
	}
}

func TestMiddleware_DisallowedOriginStillGetsHeaders(t *testing.T) {
	r := newTestRouter(NewPolicy([]string{"https://app.example.com"}))

	req := httptest.NewRequest(http.MethodPost, "/v1/calls/invite", strings.NewReader("{}"))
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "null" {
		t.Fatalf(`expected "null" allow-origin, got %q`, got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("credentials must not be allowed for rejected origins, got %q", got)
	}
	if !strings.Contains(w.Header().Get("Vary"), "Origin") {
		t.Fatalf("expected Vary: Origin")
	}
}

func TestMiddleware_NoOriginMeansWildcard(t *testing.T) {
	r := newTestRouter(NewPolicy(nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/calls/invite", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("credentials must not accompany wildcard, got %q", got)
	}
}
