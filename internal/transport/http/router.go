// Package httptransport assembles the HTTP surface: middleware stack, public
// probes, and the authenticated API routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	boosthandler "github.com/learningeconomy/consentflow/internal/boost/handler"
	consenthandler "github.com/learningeconomy/consentflow/internal/consent/handler"
	contracthandler "github.com/learningeconomy/consentflow/internal/contract/handler"
	"github.com/learningeconomy/consentflow/internal/platform/health"
	"github.com/learningeconomy/consentflow/internal/platform/middleware"
	resolverhandler "github.com/learningeconomy/consentflow/internal/resolver/handler"
)

// Deps carries everything the router mounts. Nil handlers are skipped so
// partial deployments (no boost issuer configured, say) still route.
type Deps struct {
	Contracts *contracthandler.Handler
	Consents  *consenthandler.Handler
	Flows     *resolverhandler.Handler
	Boosts    *boosthandler.Handler
	Health    *health.Handler
	Auth      middleware.TokenValidator
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(deps Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	// Public surface: probes and metrics stay outside auth.
	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.Auth, logger))

		if deps.Contracts != nil {
			deps.Contracts.Register(r)
		}
		if deps.Consents != nil {
			deps.Consents.Register(r)
		}
		if deps.Flows != nil {
			deps.Flows.Register(r)
		}
		if deps.Boosts != nil {
			deps.Boosts.Register(r)
		}
	})

	return r
}
