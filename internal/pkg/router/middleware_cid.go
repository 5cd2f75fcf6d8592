package router

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is echoed on every response and carried into
	// published messages.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted from proxies that do not set HeaderCorrelationID.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// correlationID returns v when it is printable ASCII without whitespace,
// truncated to maxCorrelationIDLen. Anything else is discarded.
func correlationID(v string) string {
	if len(v) > maxCorrelationIDLen {
		v = v[:maxCorrelationIDLen]
	}
	for i := 0; i < len(v); i++ {
		if v[i] <= ' ' || v[i] > '~' {
			return ""
		}
	}
	return v
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := lo.CoalesceOrEmpty(
				correlationID(r.Header.Get(HeaderCorrelationID)),
				correlationID(r.Header.Get(HeaderRequestID)),
			)
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
