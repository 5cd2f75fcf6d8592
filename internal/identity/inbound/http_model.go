package inbound

import (
	"net/http"
	"time"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`

	cookie *http.Cookie
}

func (r SignInResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

type SignOutResponse struct {
	cookie *http.Cookie
}

func (SignOutResponse) Message() string {
	return "Signed out"
}

func (r SignOutResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

type SessionResponse struct {
	UserID    int64     `json:"user_id,string"`
	Identity  string    `json:"identity"`
	Role      string    `json:"role"`
	Method    string    `json:"method"`
	State     string    `json:"state"`
	StepUp    bool      `json:"step_up"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OAuthStartResponse struct {
	URL string `json:"url"`
}
