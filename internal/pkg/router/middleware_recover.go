package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/storefront/internal/pkg/stacktrace"
)

// middlewareRecoverer converts a handler panic into the standard 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel panic value
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			stack := debug.Stack()
			var trace any = string(stack)
			if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
				trace = frames
			}

			slog.ErrorContext(r.Context(), "recovered from handler panic",
				"panic", rvr,
				"method", r.Method,
				"route", matchedRoutePath(r),
				"stack", trace,
			)

			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
