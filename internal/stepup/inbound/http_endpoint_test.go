package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
	"github.com/shandysiswandi/storefront/internal/stepup/outbound/cache"
	"github.com/shandysiswandi/storefront/internal/stepup/usecase"
)

type fixedCode string

func (c fixedCode) Generate() (string, error) { return string(c), nil }

type discard struct{}

func (discard) PublishPasscodeIssued(context.Context, entity.Passcode) error { return nil }

type unreachableStore struct{}

func (unreachableStore) SavePasscode(context.Context, string, string, time.Duration) error {
	return errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func (unreachableStore) ConsumePasscode(context.Context, string, string, int) (entity.ConsumeResult, error) {
	return entity.ConsumeAbsent, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func setup(t *testing.T) (*router.Router, *jwt.Symmetric) {
	t.Helper()
	return setupWithStore(t, nil)
}

// setupWithStore wires the endpoints over store, or over a memory store when nil.
func setupWithStore(t *testing.T, store interface {
	SavePasscode(ctx context.Context, identity, digest string, ttl time.Duration) error
	ConsumePasscode(ctx context.Context, identity, digest string, maxAttempts int) (entity.ConsumeResult, error)
}) (*router.Router, *jwt.Symmetric) {
	t.Helper()

	clk := clock.NewFake(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("z", 64)),
		Issuer: "storefront",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	r := router.NewRouter(router.Config{
		UUID:       uid.NewUUID(),
		JWT:        j,
		Denylist:   jwt.NewMemoryDenylist(clk),
		Instrument: instrument.NewNoop(),
	})

	if store == nil {
		store = cache.NewMemory(clk)
	}

	gm := goroutine.NewManager(2)
	t.Cleanup(func() { _ = gm.Wait() })

	RegisterHTTPEndpoint(r, usecase.New(usecase.Dependency{
		RepoCache:     store,
		RepoMessaging: discard{},
		OTP:           fixedCode("482913"),
		HMAC:          hash.NewHMACSHA256("secret"),
		JWT:           j,
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
		Goroutine:     gm,
	}), true)

	return r, j
}

func call(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Message string `json:"message"`
	Data    struct {
		Verified    bool   `json:"verified"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

func TestHTTPEndpoint_IssueVerify(t *testing.T) {
	r, j := setup(t)

	token, _, err := j.Generate(jwt.Subject{UserID: 9, Email: "user@example.com", Method: jwt.MethodPassword})
	require.NoError(t, err)

	rec := call(r, http.MethodPost, "/api/v1/stepup/otp/issue", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "issue needs a session")

	rec = call(r, http.MethodPost, "/api/v1/stepup/otp/issue", token, "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"code":"48291"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"code":"000000"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var miss envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&miss))
	assert.False(t, miss.Data.Verified)
	assert.Empty(t, rec.Result().Cookies())

	rec = call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"identity":"user@example.com","code":"482913"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var hit envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&hit))
	assert.True(t, hit.Data.Verified)

	clm, err := j.Verify(hit.Data.AccessToken)
	require.NoError(t, err)
	assert.True(t, clm.StepUp)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, router.SessionCookieName, cookies[0].Name)
	assert.Equal(t, hit.Data.AccessToken, cookies[0].Value)
	assert.True(t, cookies[0].Secure)

	rec = call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"code":"482913"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "passcode is single use")
}

func TestHTTPEndpoint_IdentityMismatch(t *testing.T) {
	r, j := setup(t)

	token, _, err := j.Generate(jwt.Subject{UserID: 9, Email: "user@example.com"})
	require.NoError(t, err)

	rec := call(r, http.MethodPost, "/api/v1/stepup/otp/issue", token, `{"identity":"other@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHTTPEndpoint_VerifyLockout(t *testing.T) {
	r, j := setup(t)

	token, _, err := j.Generate(jwt.Subject{UserID: 9, Email: "user@example.com"})
	require.NoError(t, err)

	require.Equal(t, http.StatusAccepted, call(r, http.MethodPost, "/api/v1/stepup/otp/issue", token, "").Code)

	codes := make([]int, 0, 5)
	for range 5 {
		codes = append(codes, call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"code":"000000"}`).Code)
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
	}, codes)

	rec := call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"code":"482913"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "the locked passcode is burned")
}

func TestHTTPEndpoint_StoreUnavailable(t *testing.T) {
	r, j := setupWithStore(t, unreachableStore{})

	token, _, err := j.Generate(jwt.Subject{UserID: 9, Email: "user@example.com"})
	require.NoError(t, err)

	rec := call(r, http.MethodPost, "/api/v1/stepup/otp/issue", token, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = call(r, http.MethodPost, "/api/v1/stepup/otp/verify", token, `{"code":"482913"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.False(t, env.Data.Verified)
	assert.Empty(t, rec.Result().Cookies())
}
