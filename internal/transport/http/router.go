// Package httptransport assembles the HTTP surface: middleware, public and
// authenticated route groups, probes and metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	batchhandler "agriqcert/internal/batch/handler"
	credhandler "agriqcert/internal/credential/handler"
	"agriqcert/internal/platform/health"
	verifyhandler "agriqcert/internal/verification/handler"
	"agriqcert/pkg/platform/middleware/auth"
	"agriqcert/pkg/platform/middleware/request"
	"agriqcert/pkg/platform/middleware/requesttime"
)

// maxBodyBytes bounds JSON bodies. Credential uploads enforce their own limit.
const maxBodyBytes = 2 << 20

// Handlers groups the domain handlers mounted by NewRouter.
type Handlers struct {
	Batches      *batchhandler.Handler
	Credentials  *credhandler.Handler
	Verification *verifyhandler.Handler
	Health       *health.Handler
}

// Deps carries the cross-cutting pieces the middleware stack needs.
type Deps struct {
	Logger    *slog.Logger
	Validator auth.ActorValidator
	Metrics   *request.Metrics
	Gatherer  prometheus.Gatherer
}

// NewRouter wires all endpoints with middleware.
func NewRouter(h Handlers, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(d.Logger))
	r.Use(requesttime.Middleware)
	if d.Metrics != nil {
		r.Use(request.Latency(d.Metrics))
	}
	r.Use(request.BodyLimit(maxBodyBytes))
	r.Use(auth.SigningToken)

	if h.Health != nil {
		h.Health.Register(r)
	}
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(d.Validator, d.Logger))
		h.Verification.RegisterPublic(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.Validator, d.Logger))
		h.Batches.Register(r)
		h.Credentials.Register(r)
		h.Verification.RegisterAuthenticated(r)
	})

	return r
}
