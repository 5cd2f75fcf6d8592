package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/router"
)

type IssueRequest struct {
	Identity string `json:"identity"`
}

type IssueResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (IssueResponse) StatusCode() int { return http.StatusAccepted }

func (IssueResponse) Message() string {
	return "A passcode has been sent"
}

type VerifyRequest struct {
	Identity string `json:"identity"`
	Code     string `json:"code"`
}

type VerifyResponse struct {
	Verified    bool       `json:"verified"`
	AccessToken string     `json:"access_token,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	cookie *http.Cookie
}

func (v VerifyResponse) StatusCode() int {
	if !v.Verified {
		return http.StatusUnauthorized
	}
	return http.StatusOK
}

func (v VerifyResponse) Message() string {
	if !v.Verified {
		return "Invalid or expired passcode"
	}
	return "Passcode verified"
}

func (v VerifyResponse) Cookies() []*http.Cookie {
	if v.cookie == nil {
		return nil
	}
	return []*http.Cookie{v.cookie}
}

func newVerifiedResponse(token string, exp time.Time, secure bool) VerifyResponse {
	return VerifyResponse{
		Verified:    true,
		AccessToken: token,
		ExpiresAt:   &exp,
		cookie:      router.SessionCookie(token, exp, secure),
	}
}
