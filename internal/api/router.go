package api

import (
	"net/http"
	"time"
	"vaccitrack/internal/api/handler"
	"vaccitrack/internal/api/middleware"
	"vaccitrack/internal/app/service"
	"vaccitrack/internal/common/security"
	"vaccitrack/internal/domain/repository"
	"vaccitrack/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type RouterDeps struct {
	AuthService  *service.AuthService
	StatsService *service.StatsService
	UserRepo     repository.UserRepository
	Issuer       *security.TokenIssuer
	Metrics      *metrics.Metrics // optional
	Logger       *zap.Logger
	CORSOrigins  []string
}

func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	// Verifies a token from the session cookie or a Bearer header and puts
	// it in the context; Authenticator decides whether it is required.
	r.Use(jwtauth.Verify(deps.Issuer.Auth(), middleware.TokenFromAuthCookie, jwtauth.TokenFromHeader))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	authn := middleware.Authenticator(deps.UserRepo, logger)

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService)
		authHandler.RegisterRoutes(v1, authn)

		statsHandler := handler.NewStatsHandler(deps.StatsService)
		v1.Route("/stats", statsHandler.RegisterRoutes)
	})

	return r
}
