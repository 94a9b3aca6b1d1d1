package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func doSecured(t *testing.T, opt SecurityOptions, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	r := newMWEngine(t, SecurityHeaders(opt))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	w := doSecured(t, SecurityOptions{}, nil)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Errorf("Referrer-Policy = %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS must be off by default")
	}
}

func TestSecurityHeaders_PolicyHeadersOptIn(t *testing.T) {
	w := doSecured(t, SecurityOptions{EnablePolicy: true}, nil)
	if w.Header().Get("Permissions-Policy") == "" {
		t.Fatalf("Permissions-Policy missing")
	}

	w = doSecured(t, SecurityOptions{}, nil)
	if w.Header().Get("Permissions-Policy") != "" {
		t.Fatalf("Permissions-Policy must be opt-in")
	}
}

func TestSecurityHeaders_NoStore(t *testing.T) {
	w := doSecured(t, SecurityOptions{NoStore: true}, nil)
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}

	w := doSecured(t, opt, nil)
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be set on plain HTTP")
	}

	w = doSecured(t, opt, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "https")
	})
	got := w.Header().Get("Strict-Transport-Security")
	if !strings.Contains(got, "max-age=86400") {
		t.Fatalf("HSTS = %q", got)
	}
}
