package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/hash"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
	"github.com/shandysiswandi/storefront/internal/pkg/validator"
)

type mockDB struct{ mock.Mock }

func (m *mockDB) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockDB) CreateUser(ctx context.Context, user entity.NewUser, hash string) error {
	return m.Called(ctx, user, hash).Error(0)
}

func (m *mockDB) UpsertProviderUser(ctx context.Context, user entity.NewUser) (*entity.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockDB) UpdateUserPassword(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) SaveOAuthState(ctx context.Context, state, provider string, ttl time.Duration) error {
	return m.Called(ctx, state, provider, ttl).Error(0)
}

func (m *mockCache) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	args := m.Called(ctx, state)
	return args.String(0), args.Error(1)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/auth?state=" + state
}

func (m *mockProvider) Exchange(ctx context.Context, code string) (*entity.OAuthProfile, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*entity.OAuthProfile)
	return p, args.Error(1)
}

type fixture struct {
	uc       *Usecase
	db       *mockDB
	cache    *mockCache
	provider *mockProvider
	jwt      *jwt.Symmetric
	deny     *jwt.MemoryDenylist
	bcrypt   *hash.Bcrypt
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := clock.NewFake(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("i", 64)),
		Issuer: "storefront",
		TTL:    2 * time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sf, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	f := &fixture{
		db:       &mockDB{},
		cache:    &mockCache{},
		provider: &mockProvider{},
		jwt:      j,
		deny:     jwt.NewMemoryDenylist(clk),
		bcrypt:   hash.NewBcrypt(4, "pepper"),
	}

	f.uc = New(Dependency{
		RepoDB:     f.db,
		RepoCache:  f.cache,
		Providers:  map[string]OAuthProvider{"google": f.provider},
		Validator:  v,
		Bcrypt:     f.bcrypt,
		UID:        sf,
		JWT:        j,
		Denylist:   f.deny,
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})

	t.Cleanup(func() {
		f.db.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.provider.AssertExpectations(t)
	})

	return f
}

func (f *fixture) user(t *testing.T, status entity.UserStatus) *entity.User {
	t.Helper()

	hashed, err := f.bcrypt.Hash("correct horse")
	require.NoError(t, err)

	return &entity.User{ID: 77, Email: "ana@example.com", Role: entity.RoleCustomer, Status: status, Password: string(hashed)}
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	f.db.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(f.user(t, entity.UserStatusActive), nil)

	sess, err := f.uc.SignIn(context.Background(), SignInInput{Email: "  Ana@Example.com ", Password: "correct horse"})
	require.NoError(t, err)

	clm, err := f.jwt.Verify(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", clm.UserEmail)
	assert.Equal(t, int64(77), clm.UserID)
	assert.False(t, clm.StepUp)
	assert.Equal(t, "AUTHENTICATED", clm.State())
	assert.Equal(t, jwt.MethodPassword, clm.Method)
	assert.WithinDuration(t, clm.ExpiresAt.Time, sess.ExpiresAt, 0)
}

func TestSignIn_RehashesOutdatedCost(t *testing.T) {
	f := newFixture(t)

	old, err := hash.NewBcrypt(5, "pepper").Hash("correct horse")
	require.NoError(t, err)
	user := &entity.User{ID: 77, Email: "ana@example.com", Role: entity.RoleCustomer, Status: entity.UserStatusActive, Password: string(old)}

	f.db.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(user, nil)
	f.db.On("UpdateUserPassword", mock.Anything, int64(77), mock.MatchedBy(func(h string) bool {
		return !f.bcrypt.NeedsRehash(h) && f.bcrypt.Verify(h, "correct horse")
	})).Return(errors.New("conn refused"))

	sess, err := f.uc.SignIn(context.Background(), SignInInput{Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err, "a failed rehash does not fail the sign-in")
	assert.NotEmpty(t, sess.AccessToken)
}

func TestSignIn_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		password string
		code     goerror.Code
	}{
		{
			name: "unknown email",
			setup: func(f *fixture) {
				f.db.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(nil, goerror.ErrNotFound)
			},
			password: "correct horse",
			code:     goerror.CodeUnauthorized,
		},
		{
			name: "wrong password",
			setup: func(f *fixture) {
				f.db.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(f.user(t, entity.UserStatusActive), nil)
			},
			password: "battery staple",
			code:     goerror.CodeUnauthorized,
		},
		{
			name: "inactive",
			setup: func(f *fixture) {
				f.db.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(f.user(t, entity.UserStatusInactive), nil)
			},
			password: "correct horse",
			code:     goerror.CodeForbidden,
		},
		{
			name: "database down",
			setup: func(f *fixture) {
				f.db.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(nil, errors.New("conn refused"))
			},
			password: "correct horse",
			code:     goerror.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			_, err := f.uc.SignIn(context.Background(), SignInInput{Email: "ana@example.com", Password: tt.password})
			assert.Equal(t, tt.code, goerror.CodeOf(err))
		})
	}
}

func TestSignIn_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SignIn(context.Background(), SignInInput{Email: "not-an-email"})
	assert.Equal(t, goerror.CodeInvalidInput, goerror.CodeOf(err))
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Session(context.Background())
	assert.Equal(t, goerror.CodeUnauthorized, goerror.CodeOf(err))
	assert.Equal(t, goerror.CodeUnauthorized, goerror.CodeOf(f.uc.SignOut(context.Background())))

	_, clm, err := f.jwt.Generate(jwt.Subject{UserID: 77, Email: "ana@example.com"})
	require.NoError(t, err)
	ctx := jwt.SetAuth(context.Background(), clm.WithStepUp())

	out, err := f.uc.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "STEPPED_UP", out.State)

	require.NoError(t, f.uc.SignOut(ctx))

	revoked, err := f.deny.IsRevoked(ctx, clm.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestOAuthStart(t *testing.T) {
	f := newFixture(t)
	f.cache.On("SaveOAuthState", mock.Anything, mock.AnythingOfType("string"), "google", 10*time.Minute).Return(nil)

	out, err := f.uc.OAuthStart(context.Background(), OAuthStartInput{Provider: "google"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.URL, "https://accounts.example.com/o/auth?state="))

	state := f.cache.Calls[0].Arguments.String(1)
	assert.Len(t, state, 26)
	assert.True(t, strings.HasSuffix(out.URL, state))

	_, err = f.uc.OAuthStart(context.Background(), OAuthStartInput{Provider: "myspace"})
	assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
}

func TestOAuthCallback(t *testing.T) {
	f := newFixture(t)
	f.cache.On("ConsumeOAuthState", mock.Anything, "st-1").Return("google", nil)
	f.provider.On("Exchange", mock.Anything, "code-1").Return(&entity.OAuthProfile{Provider: "google", Email: "Ana@Example.com", Name: "Ana"}, nil)
	f.db.On("UpsertProviderUser", mock.Anything, mock.MatchedBy(func(u entity.NewUser) bool {
		return u.Email == "ana@example.com" && u.Provider == "google" && u.Role == entity.RoleCustomer
	})).Return(&entity.User{ID: 5, Email: "ana@example.com", Role: entity.RoleEditor, Status: entity.UserStatusActive}, nil)

	sess, err := f.uc.OAuthCallback(context.Background(), OAuthCallbackInput{Provider: "google", Code: "code-1", State: "st-1"})
	require.NoError(t, err)

	clm, err := f.jwt.Verify(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, jwt.MethodGoogle, clm.Method)
	assert.Equal(t, entity.RoleEditor, clm.Role)
	assert.False(t, clm.StepUp)
}

func TestOAuthCallback_BadState(t *testing.T) {
	f := newFixture(t)
	f.cache.On("ConsumeOAuthState", mock.Anything, "reused").Return("", goerror.ErrNotFound)
	f.cache.On("ConsumeOAuthState", mock.Anything, "github-state").Return("github", nil)

	_, err := f.uc.OAuthCallback(context.Background(), OAuthCallbackInput{Provider: "google", Code: "c", State: "reused"})
	assert.Equal(t, goerror.CodeUnauthorized, goerror.CodeOf(err))

	_, err = f.uc.OAuthCallback(context.Background(), OAuthCallbackInput{Provider: "google", Code: "c", State: "github-state"})
	assert.Equal(t, goerror.CodeUnauthorized, goerror.CodeOf(err))
}

func TestUserCreate(t *testing.T) {
	f := newFixture(t)
	f.db.On("GetUserByEmail", mock.Anything, "editor@example.com").Return(nil, goerror.ErrNotFound).Once()
	f.db.On("CreateUser", mock.Anything, mock.MatchedBy(func(u entity.NewUser) bool {
		return u.Email == "editor@example.com" && u.Role == entity.RoleEditor && u.Status == entity.UserStatusActive
	}), mock.MatchedBy(func(h string) bool {
		return f.bcrypt.Verify(h, "s3cret-pass")
	})).Return(nil)

	id, err := f.uc.UserCreate(context.Background(), UserCreateInput{
		Email:    "Editor@example.com",
		Password: "s3cret-pass",
		FullName: "Eddie",
		Role:     entity.RoleEditor,
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	f.db.On("GetUserByEmail", mock.Anything, "editor@example.com").Return(&entity.User{ID: id}, nil).Once()
	_, err = f.uc.UserCreate(context.Background(), UserCreateInput{
		Email:    "editor@example.com",
		Password: "s3cret-pass",
		FullName: "Eddie",
		Role:     entity.RoleEditor,
	})
	assert.Equal(t, goerror.CodeConflict, goerror.CodeOf(err))

	_, err = f.uc.UserCreate(context.Background(), UserCreateInput{Email: "x@example.com", Password: "short", FullName: "X", Role: "root"})
	assert.Equal(t, goerror.CodeInvalidInput, goerror.CodeOf(err))
}
