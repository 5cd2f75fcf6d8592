package inbound

import (
	"github.com/shandysiswandi/storefront/internal/identity/entity"
	"github.com/shandysiswandi/storefront/internal/identity/usecase"
	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for sign-in and session workflows.
type HTTPEndpoint struct {
	uc           uc
	secureCookie bool
}

func (h *HTTPEndpoint) sessionResponse(sess *entity.Session) SignInResponse {
	return SignInResponse{
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.ExpiresAt,
		cookie:      router.SessionCookie(sess.AccessToken, sess.ExpiresAt, h.secureCookie),
	}
}

// SignIn authenticates email and password and starts an AUTHENTICATED session.
func (h *HTTPEndpoint) SignIn(r *router.Request) (any, error) {
	var req SignInRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	sess, err := h.uc.SignIn(r.Context(), usecase.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return h.sessionResponse(sess), nil
}

// SignOut revokes the current session and clears the cookie.
func (h *HTTPEndpoint) SignOut(r *router.Request) (any, error) {
	if err := h.uc.SignOut(r.Context()); err != nil {
		return nil, err
	}

	return SignOutResponse{cookie: router.ClearSessionCookie(h.secureCookie)}, nil
}

// Session describes the current session and its step-up state.
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		UserID:    resp.UserID,
		Identity:  resp.Identity,
		Role:      resp.Role,
		Method:    resp.Method,
		State:     resp.State,
		StepUp:    resp.StepUp,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// OAuthStart returns the consent URL of the provider.
func (h *HTTPEndpoint) OAuthStart(r *router.Request) (any, error) {
	resp, err := h.uc.OAuthStart(r.Context(), usecase.OAuthStartInput{Provider: r.GetParam("provider")})
	if err != nil {
		return nil, err
	}

	return OAuthStartResponse{URL: resp.URL}, nil
}

// OAuthCallback completes a provider sign-in.
func (h *HTTPEndpoint) OAuthCallback(r *router.Request) (any, error) {
	sess, err := h.uc.OAuthCallback(r.Context(), usecase.OAuthCallbackInput{
		Provider: r.GetParam("provider"),
		Code:     r.GetQuery("code"),
		State:    r.GetQuery("state"),
	})
	if err != nil {
		return nil, err
	}

	return h.sessionResponse(sess), nil
}
