package jwt

import (
	"errors"
	"strconv"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric implements JWT signing and verification using an HMAC secret.
type Symmetric struct {
	cfg Config
}

// NewHS512 constructs a Symmetric JWT implementation using HS512.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < 64 {
		return nil, ErrSigningKeyTooShort
	}

	return &Symmetric{cfg: cfg}, nil
}

// Generate creates a signed session token for sub with step_up set to false.
func (s *Symmetric) Generate(sub Subject) (string, Claims, error) {
	now := s.cfg.Clock.Now()

	clm := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   strconv.FormatInt(sub.UserID, 10),
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		UserID:    sub.UserID,
		UserEmail: sub.Email,
		Role:      sub.Role,
		Method:    sub.Method,
		StepUp:    false,
	}

	token, err := s.Sign(clm)
	if err != nil {
		return "", Claims{}, err
	}

	return token, clm, nil
}

// Sign signs clm with the same secret and algorithm as Generate.
func (s *Symmetric) Sign(clm Claims) (string, error) {
	if clm.ID == "" || clm.ExpiresAt == nil {
		return "", ErrInvalidToken
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, clm).SignedString(s.cfg.Secret)
}

// Verify parses and validates a JWT string.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(t *libJWT.Token) (any, error) {
			if t.Method != libJWT.SigningMethodHS512 {
				return nil, ErrInvalidSigningMethod
			}
			return s.cfg.Secret, nil
		},
		libJWT.WithIssuer(s.cfg.Issuer),
		libJWT.WithAudience(s.cfg.Audiences...),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.cfg.Clock.Now),
	)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
