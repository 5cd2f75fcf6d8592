package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/goroutine"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/stepup/entity"
	"github.com/shandysiswandi/storefront/internal/stepup/outbound/cache"
)

type codeSeq struct {
	mu    sync.Mutex
	codes []string
}

func (c *codeSeq) Generate() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.codes) == 0 {
		return "", errors.New("no codes left")
	}
	code := c.codes[0]
	c.codes = c.codes[1:]
	return code, nil
}

type publisher struct {
	mu   sync.Mutex
	sent []entity.Passcode
	err  error
}

func (p *publisher) PublishPasscodeIssued(_ context.Context, pc entity.Passcode) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sent = append(p.sent, pc)
	return p.err
}

type brokenStore struct{ err error }

func (b brokenStore) SavePasscode(context.Context, string, string, time.Duration) error { return b.err }

func (b brokenStore) ConsumePasscode(context.Context, string, string, int) (entity.ConsumeResult, error) {
	return entity.ConsumeAbsent, b.err
}

type hangingStore struct{ calls atomic.Int32 }

func (h *hangingStore) SavePasscode(ctx context.Context, _, _ string, _ time.Duration) error {
	h.calls.Inc()
	<-ctx.Done()
	return ctx.Err()
}

func (h *hangingStore) ConsumePasscode(ctx context.Context, _, _ string, _ int) (entity.ConsumeResult, error) {
	h.calls.Inc()
	<-ctx.Done()
	return entity.ConsumeAbsent, ctx.Err()
}

type fixture struct {
	uc    *Usecase
	clock *clock.Fake
	jwt   *jwt.Symmetric
	store *cache.Memory
	pub   *publisher
	gm    *goroutine.Manager
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()

	clk := clock.NewFake(time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("x", 64)),
		Issuer: "storefront",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	f := &fixture{
		clock: clk,
		jwt:   j,
		store: cache.NewMemory(clk),
		pub:   &publisher{},
		gm:    goroutine.NewManager(4),
	}

	var gen otp.Generator = &codeSeq{codes: codes}
	if len(codes) == 0 {
		gen, err = otp.NewNumeric(otp.DefaultDigits)
		require.NoError(t, err)
	}

	f.uc = New(Dependency{
		RepoCache:     f.store,
		RepoMessaging: f.pub,
		OTP:           gen,
		HMAC:          hash.NewHMACSHA256("passcode-secret"),
		JWT:           j,
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.gm,
	})

	return f
}

func (f *fixture) session(t *testing.T, email string) context.Context {
	t.Helper()

	_, clm, err := f.jwt.Generate(jwt.Subject{UserID: 42, Email: email, Role: "customer", Method: jwt.MethodPassword})
	require.NoError(t, err)

	return jwt.SetAuth(context.Background(), clm)
}

func TestIssueThenVerify_SingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pc, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Len(t, pc.Code, 6)
	assert.GreaterOrEqual(t, pc.Code, "100000")
	assert.Equal(t, f.clock.Now().Add(300*time.Second), pc.ExpiresAt)

	ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", pc.Code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.uc.VerifyPasscode(ctx, "user@example.com", pc.Code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_NeverIssued(t *testing.T) {
	f := newFixture(t)

	ok, err := f.uc.VerifyPasscode(context.Background(), "nobody@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_Expired(t *testing.T) {
	f := newFixture(t, "654321")
	ctx := context.Background()

	_, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	f.clock.Advance(301 * time.Second)

	ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "654321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_JustBeforeExpiry(t *testing.T) {
	f := newFixture(t, "654321")
	ctx := context.Background()

	_, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	f.clock.Advance(299 * time.Second)

	ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "654321")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIssueTwice_OnlyLatestValid(t *testing.T) {
	f := newFixture(t, "111111", "222222")
	ctx := context.Background()

	_, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)
	_, err = f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "111111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.uc.VerifyPasscode(ctx, "user@example.com", "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_ConcurrentCorrectCode(t *testing.T) {
	f := newFixture(t, "777777")
	ctx := context.Background()

	_, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	var verified atomic.Int32
	start := make(chan struct{})
	var wg sync.WaitGroup
	for range 2 {
		wg.Go(func() {
			<-start
			ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "777777")
			assert.NoError(t, err)
			if ok {
				verified.Inc()
			}
		})
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), verified.Load())
}

func TestVerify_Example(t *testing.T) {
	f := newFixture(t, "482913", "482913")
	ctx := context.Background()

	_, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "482913")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	ok, err = f.uc.VerifyPasscode(ctx, "user@example.com", "000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	store := &hangingStore{}
	f := newFixture(t)
	f.uc.repoCache = store

	for _, code := range []string{"", "12345", "1234567", "12a456", " 12345", "１２３４５６"} {
		ok, err := f.uc.VerifyPasscode(context.Background(), "user@example.com", code)
		assert.False(t, ok)
		assert.Equal(t, goerror.CodeInvalidFormat, goerror.CodeOf(err), code)
	}

	assert.Zero(t, store.calls.Load(), "malformed input never reaches the store")
}

func TestVerify_Lockout(t *testing.T) {
	f := newFixture(t, "135790")
	ctx := context.Background()

	_, err := f.uc.IssuePasscode(ctx, "user@example.com")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "000000")
		require.NoError(t, err)
		require.False(t, ok)
	}

	_, err = f.uc.VerifyPasscode(ctx, "user@example.com", "000000")
	assert.Equal(t, goerror.CodeTooManyRequest, goerror.CodeOf(err))

	ok, err := f.uc.VerifyPasscode(ctx, "user@example.com", "135790")
	require.NoError(t, err)
	assert.False(t, ok, "passcode burned")
}

func TestStoreUnavailable(t *testing.T) {
	f := newFixture(t, "123456")
	f.uc.repoCache = brokenStore{err: errors.New("dial tcp: connection refused")}

	_, err := f.uc.IssuePasscode(context.Background(), "user@example.com")
	assert.Equal(t, goerror.CodeUnavailable, goerror.CodeOf(err))

	_, err = f.uc.VerifyPasscode(context.Background(), "user@example.com", "123456")
	assert.Equal(t, goerror.CodeUnavailable, goerror.CodeOf(err))
}

func TestStoreTimeout(t *testing.T) {
	f := newFixture(t, "123456")
	f.uc.repoCache = &hangingStore{}
	f.uc.storeTimeout = 20 * time.Millisecond

	_, err := f.uc.IssuePasscode(context.Background(), "user@example.com")
	assert.Equal(t, goerror.CodeUnavailable, goerror.CodeOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew_Config(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  stepup:
    passcode_ttl: 120
    store_timeout: 30
    max_attempts: 3
`))
	require.NoError(t, err)

	uc := New(Dependency{Config: cfg})

	assert.Equal(t, 120*time.Second, uc.passcodeTTL)
	assert.Equal(t, 5*time.Second, uc.storeTimeout, "clamped to the upper bound")
	assert.Equal(t, 3, uc.maxAttempts)

	uc = New(Dependency{})
	assert.Equal(t, 300*time.Second, uc.passcodeTTL)
	assert.Equal(t, 3*time.Second, uc.storeTimeout)
	assert.Equal(t, 5, uc.maxAttempts)
}

func TestIssue_Session(t *testing.T) {
	f := newFixture(t, "246810")

	_, err := f.uc.Issue(context.Background(), IssueInput{})
	assert.Equal(t, goerror.CodeUnauthorized, goerror.CodeOf(err))

	ctx := f.session(t, "user@example.com")

	_, err = f.uc.Issue(ctx, IssueInput{Identity: "someone@example.com"})
	assert.Equal(t, goerror.CodeForbidden, goerror.CodeOf(err))

	out, err := f.uc.Issue(ctx, IssueInput{})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(300*time.Second), out.ExpiresAt)

	require.NoError(t, f.gm.Wait())
	require.Len(t, f.pub.sent, 1)
	assert.Equal(t, entity.Passcode{Identity: "user@example.com", Code: "246810", ExpiresAt: out.ExpiresAt}, f.pub.sent[0])
}

func TestIssue_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, "246810")
	f.pub.err = errors.New("broker down")

	_, err := f.uc.Issue(f.session(t, "user@example.com"), IssueInput{})
	require.NoError(t, err)

	require.NoError(t, f.gm.Wait())
	assert.Len(t, f.pub.sent, 1)
}

func TestVerify_Session(t *testing.T) {
	f := newFixture(t, "482913")
	ctx := f.session(t, "user@example.com")
	before := jwt.GetAuth(ctx)

	_, err := f.uc.Issue(ctx, IssueInput{Identity: "user@example.com"})
	require.NoError(t, err)

	out, err := f.uc.Verify(ctx, VerifyInput{Code: "000000"})
	require.NoError(t, err)
	assert.False(t, out.Verified)
	assert.Empty(t, out.AccessToken)

	out, err = f.uc.Verify(ctx, VerifyInput{Code: "482913"})
	require.NoError(t, err)
	require.True(t, out.Verified)
	assert.WithinDuration(t, before.ExpiresAt.Time, out.ExpiresAt, 0)

	after, err := f.jwt.Verify(out.AccessToken)
	require.NoError(t, err)
	assert.True(t, after.StepUp)
	assert.Equal(t, "STEPPED_UP", after.State())
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.UserEmail, after.UserEmail)
	// token times parse back in time.Local, so compare instants
	assert.WithinDuration(t, before.IssuedAt.Time, after.IssuedAt.Time, 0)
	assert.WithinDuration(t, before.ExpiresAt.Time, after.ExpiresAt.Time, 0)
	assert.Equal(t, before.Method, after.Method)
}

func TestVerify_SteppedUpSessionCanReverify(t *testing.T) {
	f := newFixture(t, "112233")
	_, clm, err := f.jwt.Generate(jwt.Subject{UserID: 1, Email: "user@example.com"})
	require.NoError(t, err)
	ctx := jwt.SetAuth(context.Background(), clm.WithStepUp())

	_, err = f.uc.Issue(ctx, IssueInput{})
	require.NoError(t, err)

	out, err := f.uc.Verify(ctx, VerifyInput{Code: "112233"})
	require.NoError(t, err)
	assert.True(t, out.Verified)

	after, err := f.jwt.Verify(out.AccessToken)
	require.NoError(t, err)
	assert.True(t, after.StepUp)
}

type failingSigner struct{ jwt.JWT }

func (failingSigner) Sign(jwt.Claims) (string, error) { return "", errors.New("signer offline") }

func TestVerify_ResignFailure(t *testing.T) {
	f := newFixture(t, "482913")
	ctx := f.session(t, "user@example.com")
	f.uc.jwt = failingSigner{JWT: f.jwt}

	_, err := f.uc.Issue(ctx, IssueInput{})
	require.NoError(t, err)

	_, err = f.uc.Verify(ctx, VerifyInput{Code: "482913"})
	assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
}
