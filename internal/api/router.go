package api

import (
	"net/http"

	mw "github.com/abaplens/abaplens/internal/api/middleware"
	"github.com/abaplens/abaplens/internal/api/response"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Limiter is satisfied by both the cache-backed and the in-process rate limiters.
type Limiter interface {
	Limit(next http.Handler) http.Handler
}

// Dependencies holds all handler and middleware dependencies for the router.
// A nil Auth or RateLimit disables that middleware.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit Limiter

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler
	AnalyzeHandler http.HandlerFunc
	ListAnalyses   http.HandlerFunc
	GetAnalysis    http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)

	// Public
	r.Get("/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
		}
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/analyze", orNotImplemented(deps.AnalyzeHandler))
		r.Get("/analyses", orNotImplemented(deps.ListAnalyses))
		r.Get("/analyses/{id}", orNotImplemented(deps.GetAnalysis))
	})

	return otelhttp.NewHandler(r, "abaplens.http")
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not implemented")
	}
}
