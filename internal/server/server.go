package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/middleware"
)

type Server struct {
	config      *config.Config
	router      *gin.Engine
	handlers    *handlers.Handlers
	httpServer  *http.Server
	rateLimiter *middleware.RateLimiter
	logger      *zap.Logger
}

// New builds the router for h. gatherer serves /metrics.
func New(h *handlers.Handlers, cfg *config.Config, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if cfg.Stage == config.StageProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.CorrelationID(), middleware.RequestLogger(logger.Named("http")))
	router.SetHTMLTemplate(handlers.Templates())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger,
	}

	if cfg.RateLimit.RequestsPerSecond > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger.Named("ratelimit"))
		router.Use(s.rateLimiter.Middleware())
	}

	s.setupRoutes(gatherer)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if s.config.Features.EnableDebugEndpoint {
		s.router.GET("/debug", s.handlers.Debug)
	}

	s.router.GET("/", s.handlers.Index)
	s.router.POST("/", s.handlers.SubmitIndex)

	v1 := s.router.Group("/api/v1", cors.Default())
	{
		v1.POST("/tax/calculate", s.handlers.CalculateTax)
		v1.GET("/tax/calculate", s.handlers.CalculateTaxQuery)
		v1.GET("/tax/slabs", s.handlers.ListSlabs)
	}
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
