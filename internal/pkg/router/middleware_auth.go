package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
)

// sessionToken reads the token from "Authorization: Bearer" or the session cookie.
func sessionToken(r *http.Request) string {
	if p := strings.Fields(r.Header.Get("Authorization")); len(p) == 2 && strings.EqualFold(p[0], "Bearer") {
		return p[1]
	}

	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}

	return ""
}

// middlewareAuthentication attaches verified, non-revoked claims to the request
// context. Public endpoints pass through without a session; every other endpoint
// answers 401.
func middlewareAuthentication(verifier jwt.JWT, denylist jwt.Denylist, isPublic func(method, route string) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			public := isPublic(r.Method, matchedRoutePath(r))

			reject := func(msg string, code int) {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				writeJSON(w, errorResponse{Message: msg}, code)
			}

			token := sessionToken(r)
			if token == "" {
				reject("Authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reject("Invalid or expired token", http.StatusUnauthorized)
				return
			}

			if denylist != nil {
				revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					slog.ErrorContext(r.Context(), "failed to check token revocation", "jti", claims.ID, "error", err)
					reject("Session store unavailable", http.StatusServiceUnavailable)
					return
				}
				if revoked {
					reject("Session has been signed out", http.StatusUnauthorized)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
