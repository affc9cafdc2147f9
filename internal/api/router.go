package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minimalapi/fornecedor/internal/api/handler"
	"github.com/minimalapi/fornecedor/internal/api/middleware"
	"github.com/minimalapi/fornecedor/internal/auth"
	"github.com/minimalapi/fornecedor/internal/supplier"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	Suppliers   *supplier.Service
	Accounts    *auth.Service
	Issuer      *auth.Issuer
	Policies    *auth.Policies
	OpenAPISpec []byte

	// Metrics is optional; when set, requests are instrumented and the
	// registry is exposed on /metrics.
	Metrics *prometheus.Registry

	// LoginRatePerSecond and LoginRateBurst throttle /Api/Registro and
	// /Api/Login per client IP. A zero rate disables throttling.
	LoginRatePerSecond float64
	LoginRateBurst     int
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	if deps.Metrics != nil {
		r.Use(middleware.NewMetrics(deps.Metrics).Instrument)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Get("/", handler.Hello)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	policies := deps.Policies
	if policies == nil {
		policies = auth.DefaultPolicies()
	}

	r.Route("/Api", func(r chi.Router) {
		if deps.Accounts != nil && deps.Issuer != nil {
			accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Issuer)
			limiter := middleware.NewRateLimiter(deps.LoginRatePerSecond, deps.LoginRateBurst)
			r.With(limiter.Handler).Post("/Registro", accountHandler.Register)
			r.With(limiter.Handler).Post("/Login", accountHandler.Login)
		}

		if deps.Suppliers != nil && deps.Issuer != nil {
			supplierHandler := handler.NewSupplierHandler(deps.Suppliers)
			authenticated := middleware.Require(policies, auth.CapabilityAuthenticated)

			r.Route("/Fornecedor", func(r chi.Router) {
				r.Use(middleware.Authenticate(deps.Issuer))
				r.Get("/", supplierHandler.List)
				r.With(authenticated).Post("/", supplierHandler.Create)
				r.With(authenticated).Get("/{id}", supplierHandler.GetByID)
				r.With(authenticated).Put("/{id}", supplierHandler.Update)
				r.With(middleware.Require(policies, auth.CapabilityDeleteSupplier)).Delete("/{id}", supplierHandler.Delete)
			})
		}
	})

	return r
}
