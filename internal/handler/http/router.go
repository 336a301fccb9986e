package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tiwac100/hydrogen/internal/service"
	"github.com/tiwac100/hydrogen/internal/session"
	"github.com/tiwac100/hydrogen/pkg/health"
	"github.com/tiwac100/hydrogen/pkg/logger"
	"github.com/tiwac100/hydrogen/pkg/middleware"
)

// localePattern matches storefront locale prefixes such as "en-us".
const localePattern = "/{locale:[a-zA-Z]{2}-[a-zA-Z]{2}}"

// RouterDeps holds everything the router mounts.
type RouterDeps struct {
	ServiceName    string
	AddressService *service.AddressService
	Sessions       *session.Manager
	SessionTTL     time.Duration
	Health         *health.Handler
	// RateLimiter guards mutation routes. Nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all storefront account routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.Tracing(deps.ServiceName))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics(deps.ServiceName))

	// Health and metrics endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	addressHandler := NewAddressHandler(deps.AddressService, deps.Logger)
	sessionHandler := NewSessionHandler(deps.Sessions, deps.SessionTTL, deps.Logger)

	account := func(r chi.Router) {
		r.Use(deps.Sessions.Middleware(deps.Logger))
		accountRoutes(r, addressHandler, sessionHandler, deps.RateLimiter)
	}

	r.Group(account)
	r.Route(localePattern, func(r chi.Router) {
		r.Use(withLocale)
		account(r)
	})

	return r
}

func accountRoutes(r chi.Router, addresses *AddressHandler, sessions *SessionHandler, limiter *middleware.RateLimiter) {
	mutate := r
	if limiter != nil {
		mutate = r.With(limiter.Handler)
	}

	r.Get("/account/addresses", addresses.ListAddresses)
	r.Get("/account/addresses/{id}", addresses.GetAddressForm)
	mutate.Post("/account/addresses", addresses.SubmitAddress)
	mutate.Post("/account/addresses/{id}", addresses.SubmitAddress)
	mutate.Delete("/account/addresses/{id}", addresses.SubmitAddress)

	mutate.Post("/account/session", sessions.CreateSession)
	r.Delete("/account/session", sessions.DeleteSession)
}

// withLocale records the route locale on the context and the request-scoped logger.
func withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := chi.URLParam(r, "locale")
		ctx := logger.WithLocale(r.Context(), locale)
		ctx = logger.NewContext(ctx, logger.FromContext(ctx, nil).With(slog.String("locale", locale)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
