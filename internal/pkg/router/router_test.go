package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/shandysiswandi/storefront/internal/pkg/authz"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
)

type fixture struct {
	router   *Router
	jwt      *jwt.Symmetric
	denylist *jwt.MemoryDenylist
	clock    *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("s", 64)),
		Issuer: "storefront",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer([]string{"p, editor, blog:post, write"})
	require.NoError(t, err)

	deny := jwt.NewMemoryDenylist(clk)

	r := NewRouter(Config{
		UUID:        uid.NewUUID(),
		JWT:         j,
		Denylist:    deny,
		Instrument:  instrument.NewNoop(),
		Enforcer:    enforcer,
		RateLimiter: NewRateLimiter(rate.Limit(1), 2),
	})

	return &fixture{router: r, jwt: j, denylist: deny, clock: clk}
}

func (f *fixture) token(t *testing.T, role string, stepUp bool) (string, jwt.Claims) {
	t.Helper()

	tok, clm, err := f.jwt.Generate(jwt.Subject{UserID: 7, Email: "ana@example.com", Role: role, Method: jwt.MethodPassword})
	require.NoError(t, err)

	if stepUp {
		clm = clm.WithStepUp()
		tok, err = f.jwt.Sign(clm)
		require.NoError(t, err)
	}

	return tok, clm
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

type cookieResp struct {
	OK bool `json:"ok"`
}

func (cookieResp) Cookies() []*http.Cookie {
	return []*http.Cookie{SessionCookie("tok", time.Now().Add(time.Hour), false)}
}

func (cookieResp) StatusCode() int { return http.StatusCreated }

func whoami(r *Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return map[string]any{"authenticated": false}, nil
	}
	return map[string]any{"authenticated": true, "email": clm.UserEmail, "step_up": clm.StepUp}, nil
}

func TestRouter_Welcome(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Storefront API", decodeMessage(t, rec))
}

func TestRouter_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Authentication(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/api/v1/identity/session", whoami)

	t.Run("missing token", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		tok, _ := f.token(t, "customer", false)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
	})

	t.Run("session cookie", func(t *testing.T) {
		tok, _ := f.token(t, "customer", true)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
		rec := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"step_up":true`)
	})

	t.Run("revoked token", func(t *testing.T) {
		tok, clm := f.token(t, "customer", false)
		require.NoError(t, f.denylist.Revoke(t.Context(), clm.ID, clm.ExpiresAt.Time))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, _ := f.token(t, "customer", false)
		f.clock.Advance(2 * time.Hour)
		defer f.clock.Advance(-2 * time.Hour)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/identity/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouter_PublicEndpointOptionalAuth(t *testing.T) {
	f := newFixture(t)
	f.router.PublicGET("/api/v1/blog/posts", whoami)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/blog/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/blog/posts", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	tok, _ := f.token(t, "customer", false)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/blog/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
}

func TestRouter_ProtectedByDefault(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/api/v1/blog/drafts", whoami)
	f.router.PublicGET("/api/v1/blog/posts", whoami)

	assert.Equal(t, http.StatusUnauthorized, f.do(httptest.NewRequest(http.MethodGet, "/api/v1/blog/drafts", nil)).Code)
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/api/v1/blog/posts", nil)).Code)
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRequireStepUp(t *testing.T) {
	f := newFixture(t)
	f.router.POST("/api/v1/payment/checkouts", whoami, RequireStepUp())

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/v1/payment/checkouts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _ := f.token(t, "customer", false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/checkouts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = f.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Step-up verification required", decodeMessage(t, rec))

	tok, _ = f.token(t, "customer", true)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/payment/checkouts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireStepUpPage(t *testing.T) {
	f := newFixture(t)
	f.router.PublicGET("/payment/checkout", whoami, RequireStepUpPage("/auth/signin", "/auth/verify"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/payment/checkout?plan=pro", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/signin?next=%2Fpayment%2Fcheckout%3Fplan%3Dpro", rec.Header().Get("Location"))

	tok, _ := f.token(t, "customer", false)
	req := httptest.NewRequest(http.MethodGet, "/payment/checkout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
	rec = f.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/verify?next=%2Fpayment%2Fcheckout", rec.Header().Get("Location"))

	tok, _ = f.token(t, "customer", true)
	req = httptest.NewRequest(http.MethodGet, "/payment/checkout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
	rec = f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Authorize(t *testing.T) {
	f := newFixture(t)
	f.router.POST("/api/v1/blog/posts", whoami, f.router.Authorize("blog:post", "write"))

	tok, _ := f.token(t, "customer", false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusForbidden, f.do(req).Code)

	tok, _ = f.token(t, "editor", false)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/blog/posts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestRouter_Throttle(t *testing.T) {
	f := newFixture(t)
	f.router.PublicPOST("/api/v1/identity/signin", whoami, f.router.Throttle())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/identity/signin", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		codes = append(codes, f.do(req).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/identity/signin", nil)
	req.RemoteAddr = "198.51.100.1:5555"
	assert.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestRouter_Codecs(t *testing.T) {
	f := newFixture(t)
	f.router.PublicPOST("/api/v1/identity/signin", func(*Request) (any, error) { return cookieResp{OK: true}, nil })
	f.router.PublicGET("/readyz", func(*Request) (any, error) {
		return nil, goerror.NewUnavailable(assert.AnError, "Dependency unavailable")
	})

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/v1/identity/signin", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, SessionCookieName, rec.Result().Cookies()[0].Name)
	assert.True(t, rec.Result().Cookies()[0].HttpOnly)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Dependency unavailable", decodeMessage(t, rec))
}

func TestRouter_CorrelationID(t *testing.T) {
	f := newFixture(t)
	f.router.PublicGET("/readyz", func(r *Request) (any, error) {
		return map[string]string{"cid": instrument.GetCorrelationID(r.Context())}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.Header.Set(HeaderCorrelationID, "cid-123")
	rec := f.do(req)

	assert.Equal(t, "cid-123", rec.Header().Get(HeaderCorrelationID))
	assert.Contains(t, rec.Body.String(), `"cid":"cid-123"`)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mw("a"), nil, mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "h"}, order)
}

func TestRequest_RawBody(t *testing.T) {
	r := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"evt_1"}`))}
	body, err := r.RawBody(64)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"evt_1"}`, string(body))

	r = &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 65)))}
	_, err = r.RawBody(64)
	assert.Equal(t, goerror.CodeInvalidFormat, goerror.CodeOf(err))
}

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		Identity string `json:"identity"`
		Code     string `json:"code"`
	}

	tests := []struct {
		name  string
		body  string
		code  goerror.Code
		field string
	}{
		{name: "Valid", body: `{"identity":"a@b.c","code":"123456"}`},
		{name: "UnknownField", body: `{"identity":"a@b.c","otp":"1"}`, code: goerror.CodeInvalidFormat},
		{name: "TrailingDocument", body: `{"identity":"a@b.c"} {"code":"1"}`, code: goerror.CodeInvalidFormat},
		{name: "WrongType", body: `{"identity":"a@b.c","code":123456}`, code: goerror.CodeInvalidInput, field: "code"},
		{name: "Empty", body: ``, code: goerror.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}

			var dst payload
			err := r.DecodeBody(&dst)
			if tt.name == "Valid" {
				require.NoError(t, err)
				assert.Equal(t, payload{Identity: "a@b.c", Code: "123456"}, dst)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.code, goerror.CodeOf(err))
			if tt.field != "" {
				var ge *goerror.Error
				require.ErrorAs(t, err, &ge)
				assert.Contains(t, ge.Fields(), tt.field)
			}
		})
	}
}

func TestRequest_GetQueryInt32(t *testing.T) {
	r := &Request{Request: httptest.NewRequest(http.MethodGet, "/?page=3&size=abc", nil)}

	page, err := r.GetQueryInt32("page")
	require.NoError(t, err)
	assert.Equal(t, int32(3), page)

	missing, err := r.GetQueryInt32("cursor")
	require.NoError(t, err)
	assert.Zero(t, missing)

	_, err = r.GetQueryInt32("size")
	assert.Equal(t, goerror.CodeInvalidInput, goerror.CodeOf(err))
}
