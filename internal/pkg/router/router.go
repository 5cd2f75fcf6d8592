package router

import (
	"net/http"
	"net/netip"

	"github.com/casbin/casbin/v3"
	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/storefront/internal/pkg/config"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/uid"
)

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// JWT validates and parses session tokens.
	JWT jwt.JWT
	// Denylist reports session tokens revoked by sign-out.
	Denylist jwt.Denylist
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
	// Enforcer applies role policies for Authorize.
	Enforcer *casbin.Enforcer
	// RateLimiter throttles the endpoints registered with Throttle.
	RateLimiter *RateLimiter
	// TrustedProxies are the peers allowed to set forwarding headers.
	TrustedProxies []netip.Prefix
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr       *httprouter.Router
	mws      []Middleware
	public   map[string]map[string]bool
	enforcer *casbin.Enforcer
	limiter  *RateLimiter
}

// NewRouter builds the default application router with standard middleware.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"message": "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"message": "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"message": "Welcome to Storefront API"}, http.StatusOK)
	})

	ro := &Router{
		hr:       hr,
		public:   map[string]map[string]bool{},
		enforcer: cfg.Enforcer,
		limiter:  cfg.RateLimiter,
	}
	ro.mws = []Middleware{
		middlewareRecoverer,
		middlewareIP(cfg.TrustedProxies),
		middlewareCorrelationID(cfg.UUID),
		middlewareObservability(cfg.Config, cfg.Instrument),
		middlewareMaintenance(cfg.Config),
		middlewareAuthentication(cfg.JWT, cfg.Denylist, ro.isPublic),
	}

	return ro
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint using the application Handler signature.
func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

// PublicGET registers a GET endpoint that is served without a session. A valid
// session still attaches its claims.
func (r *Router) PublicGET(path string, h Handler, mws ...Middleware) {
	r.markPublic(http.MethodGet, path)
	r.endpoint(http.MethodGet, path, h, mws...)
}

// PublicPOST registers a POST endpoint that is served without a session.
func (r *Router) PublicPOST(path string, h Handler, mws ...Middleware) {
	r.markPublic(http.MethodPost, path)
	r.endpoint(http.MethodPost, path, h, mws...)
}

// markPublic must only be called during route registration, before serving.
func (r *Router) markPublic(method, path string) {
	if r.public[method] == nil {
		r.public[method] = map[string]bool{}
	}
	r.public[method][path] = true
}

func (r *Router) isPublic(method, route string) bool {
	return r.public[method][route]
}

// Throttle returns the configured per-IP rate limit middleware, or nil (which
// Chain skips) when no limiter is configured.
func (r *Router) Throttle() Middleware {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Middleware()
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	mw := make([]Middleware, 0, len(r.mws)+len(mws))
	mw = append(mw, r.mws...)
	mw = append(mw, mws...)

	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		resp, err := h(&Request{Request: re})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			encodeError(w, err)
			return
		}
		encodeSuccess(w, resp)
	}), mw...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}
