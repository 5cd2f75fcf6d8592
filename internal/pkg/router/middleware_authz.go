package router

import (
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
)

// Authorize allows the request when the session role may perform act on obj.
func (r *Router) Authorize(obj, act string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			clm := jwt.GetAuth(req.Context())
			if clm == nil {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			if r.enforcer == nil {
				writeJSON(w, errorResponse{Message: "Forbidden"}, http.StatusForbidden)
				return
			}

			ok, err := r.enforcer.Enforce(clm.Role, obj, act)
			if err != nil {
				slog.ErrorContext(req.Context(), "failed to enforce policy", "role", clm.Role, "obj", obj, "act", act, "error", err)
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}
			if !ok {
				writeJSON(w, errorResponse{Message: "Forbidden"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
