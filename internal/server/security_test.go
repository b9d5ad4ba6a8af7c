package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultSecurityConfig()
	assert.True(t, cfg.EnableCORS)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodOptions}, cfg.AllowedMethods)
}

func TestSecurityMiddleware_HardeningHeaders(t *testing.T) {
	t.Parallel()
	called := false
	handler := SecurityMiddleware(SecurityConfig{}, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	for header, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	} {
		assert.Equal(t, want, rec.Header().Get(header), header)
	}
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), "CORS disabled")
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
	}{
		{"wildcard", []string{"*"}, "http://grafana.local", "*"},
		{"wildcard without origin", []string{"*"}, "", "*"},
		{"listed origin", []string{"http://a.local", "http://b.local"}, "http://b.local", "http://b.local"},
		{"unlisted origin", []string{"http://a.local"}, "http://evil.local", ""},
		{"missing origin", []string{"http://a.local"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := SecurityConfig{EnableCORS: true, AllowedOrigins: tt.allowed, AllowedMethods: []string{http.MethodGet}}
			handler := SecurityMiddleware(cfg, func(http.ResponseWriter, *http.Request) {})
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Equal(t, http.MethodGet, rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	t.Parallel()
	called := false
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(http.ResponseWriter, *http.Request) { called = true })
	req := httptest.NewRequest(http.MethodOptions, "/metrics", http.NoBody)
	req.Header.Set("Origin", "http://grafana.local")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.False(t, called, "preflight must not reach the handler")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestAllowedOrigin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		allowed []string
		origin  string
		want    string
		ok      bool
	}{
		{nil, "http://a.local", "", false},
		{[]string{"*"}, "", "*", true},
		{[]string{"http://a.local"}, "http://a.local", "http://a.local", true},
		{[]string{"http://a.local"}, "http://A.local", "", false},
	}
	for _, tt := range tests {
		got, ok := allowedOrigin(tt.allowed, tt.origin)
		assert.Equal(t, tt.ok, ok, "%v %q", tt.allowed, tt.origin)
		assert.Equal(t, tt.want, got)
	}
}
