package router

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/shandysiswandi/storefront/internal/pkg/config"
)

const maintenanceRetryAfter = 120

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints. An entry is a route pattern such as
// "/api/v1/payment/checkouts", optionally prefixed by a method
// ("POST /api/v1/payment/checkouts"). The list is read on every request so a
// reloaded config takes effect immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	if cfg == nil {
		return nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if underMaintenance(cfg.GetArray("app.maintenance.endpoints"), r.Method, matchedRoutePath(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(maintenanceRetryAfter))
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(entries []string, method, route string) bool {
	return lo.SomeBy(entries, func(entry string) bool {
		m, path, ok := strings.Cut(strings.TrimSpace(entry), " ")
		if !ok {
			return m == route
		}
		return strings.EqualFold(m, method) && strings.TrimSpace(path) == route
	})
}
