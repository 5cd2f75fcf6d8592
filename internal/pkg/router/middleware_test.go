package router

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/storefront/internal/pkg/config"
)

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.ErrorContains(t, err, "not-an-ip")
}

func TestClientIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name   string
		remote string
		xff    string
		xrip   string
		want   string
	}{
		{name: "DirectPeer", remote: "203.0.113.9:5555", want: "203.0.113.9"},
		{name: "UntrustedPeerSpoofsHeader", remote: "203.0.113.9:5555", xff: "198.51.100.1", want: "203.0.113.9"},
		{name: "TrustedPeerForwards", remote: "10.0.0.2:443", xff: "198.51.100.1", want: "198.51.100.1"},
		{name: "SkipsTrustedHops", remote: "10.0.0.2:443", xff: "192.0.2.77, 198.51.100.1, 10.0.0.9", want: "198.51.100.1"},
		{name: "AllHopsTrusted", remote: "10.0.0.2:443", xff: "10.0.0.7", want: "10.0.0.7"},
		{name: "RealIPFallback", remote: "10.0.0.2:443", xrip: "198.51.100.4", want: "198.51.100.4"},
		{name: "IPv6Peer", remote: "[2001:db8::1]:8080", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xrip != "" {
				r.Header.Set("X-Real-IP", tt.xrip)
			}

			assert.Equal(t, tt.want, clientIP(r, trusted).String())
		})
	}
}

func TestMiddlewareMaintenance(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  maintenance:
    endpoints: "POST /api/v1/payment/checkouts, /api/v1/blog/posts"
`))
	require.NoError(t, err)

	h := middlewareMaintenance(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/v1/payment/checkouts", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/payment/checkouts", http.StatusNoContent},
		{http.MethodGet, "/api/v1/blog/posts", http.StatusServiceUnavailable},
		{http.MethodPost, "/api/v1/blog/posts", http.StatusServiceUnavailable},
		{http.MethodGet, "/readyz", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusServiceUnavailable {
				assert.Equal(t, "120", rec.Header().Get("Retry-After"))
			}
		})
	}

	assert.Nil(t, middlewareMaintenance(nil))
}

func TestCorrelationIDValue(t *testing.T) {
	assert.Equal(t, "cid-123", correlationID("cid-123"))
	assert.Empty(t, correlationID("bad id"))
	assert.Empty(t, correlationID("line\r\nbreak"))
	assert.Len(t, correlationID(strings.Repeat("a", 200)), maxCorrelationIDLen)
}

func TestMiddlewareRecoverer(t *testing.T) {
	h := middlewareRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())

	abort := middlewareRecoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestBodyMasker(t *testing.T) {
	m := newBodyMasker(nil)

	got := m.body("application/json", []byte(`{"identity":"a@b.c","code":"123456","nested":[{"password":"x"}]}`))
	assert.Equal(t, map[string]any{
		"identity": "a@b.c",
		"code":     maskedValue,
		"nested":   []any{map[string]any{"password": maskedValue}},
	}, got)

	assert.Equal(t, map[string]any{"email": "a@b.c", "password": maskedValue},
		m.body("application/x-www-form-urlencoded", []byte("email=a%40b.c&password=secret")))
	assert.Equal(t, "<multipart/form-data omitted>", m.body("multipart/form-data; boundary=x", []byte("--x")))
	assert.Equal(t, "<html omitted>", m.body("text/html; charset=utf-8", []byte("<html></html>")))
	assert.Nil(t, m.body("application/json", nil))

	h := m.headers(http.Header{"Authorization": {"Bearer t"}, "Accept": {"*/*"}})
	assert.Equal(t, map[string]string{"Authorization": maskedValue, "Accept": "*/*"}, h)
}
