package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// RateLimit - запросов в секунду с одного IP; 0 отключает ограничение.
	RateLimit float64
	RateBurst int
	// TrustProxyHeaders - брать адрес клиента из X-Forwarded-For / X-Real-IP.
	// Включать только за доверенным прокси: иначе клиент подставит любой адрес
	// и обойдет ограничение частоты.
	TrustProxyHeaders bool
}

// Server - REST API витрины объявлений.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты и middleware. Вынесен отдельно для тестов.
func NewRouter(cfg ServerConfig, handlers *PropertyHandlers, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", SessionHeader, traceIDHeader},
		ExposedHeaders: []string{SessionHeader, traceIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware)
	}

	r.Get("/healthz", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", handlers.GetListings)
			r.Get("/search", handlers.SearchListings)
			r.Get("/search/latest", handlers.LatestSearch)
			r.Get("/featured", handlers.GetFeaturedListings)
			r.Get("/types", handlers.GetPropertyTypes)
			r.Get("/stats", handlers.GetPropertyStats)
			r.Get("/{id}", handlers.GetListingDetails)
		})
		r.Get("/filters/options", handlers.GetFilterOptions)
	})

	return r
}

// NewServer создает новый экземпляр сервера.
func NewServer(cfg ServerConfig, handlers *PropertyHandlers, baseLogger port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, handlers, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(port.Fields{"component": "rest_server"}),
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
