package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// Auth methods recorded in Claims.Method.
const (
	MethodPassword = "password"
	MethodGoogle   = "google"
	MethodGitHub   = "github"
)

// JWT defines the session token operations used by the app.
type JWT interface {
	// Generate creates a fresh session token for subject with step_up unset.
	Generate(sub Subject) (string, Claims, error)
	// Sign re-signs existing claims as they are.
	Sign(clm Claims) (string, error)
	// Verify parses and validates the token and returns claims.
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the token time-to-live.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Subject describes who a session is issued for.
type Subject struct {
	UserID int64
	Email  string
	Role   string
	Method string
}

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is the authenticated user identifier.
	UserID int64 `json:"user_id,string"`
	// UserEmail is the identity the session belongs to.
	UserEmail string `json:"user_email"`
	// Role is the authorization subject used by policy checks.
	Role string `json:"role,omitempty"`
	// Method records how primary authentication happened.
	Method string `json:"amr,omitempty"`
	// StepUp is true once a passcode was verified for this session.
	StepUp bool `json:"step_up"`
}

// WithStepUp returns a copy of the claims with the step_up flag set. Every other
// claim, including the token ID and expiry, is left untouched.
func (c Claims) WithStepUp() Claims {
	c.StepUp = true
	return c
}

// State is the session state name derived from the claims.
func (c Claims) State() string {
	if c.StepUp {
		return "STEPPED_UP"
	}
	return "AUTHENTICATED"
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
