package inbound

import (
	"github.com/shandysiswandi/storefront/internal/pkg/router"
	"github.com/shandysiswandi/storefront/internal/stepup/usecase"
)

// HTTPEndpoint exposes the passcode step-up handlers.
type HTTPEndpoint struct {
	uc           uc
	secureCookie bool
}

// Issue sends a passcode to the session identity.
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if r.ContentLength != 0 {
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{Identity: req.Identity})
	if err != nil {
		return nil, err
	}

	return IssueResponse{ExpiresAt: resp.ExpiresAt}, nil
}

// Verify checks a passcode. On success the response carries the stepped-up
// session token, both in the body and as the session cookie.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Identity: req.Identity,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Verified {
		return VerifyResponse{Verified: false}, nil
	}

	return newVerifiedResponse(resp.AccessToken, resp.ExpiresAt, h.secureCookie), nil
}
