// Package api serves the reconciliation workflow over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/homebudget-guard/internal/api/handlers"
	"github.com/eshaffer321/homebudget-guard/internal/api/middleware"
	"github.com/eshaffer321/homebudget-guard/internal/application/reconcile"
	"github.com/eshaffer321/homebudget-guard/internal/application/records"
	"github.com/eshaffer321/homebudget-guard/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	records    *records.Service
	reconcile  *reconcile.Service
}

// NewServer creates a new API server.
func NewServer(cfg Config, repo storage.Repository, recordsSvc *records.Service, reconcileSvc *reconcile.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:    cfg,
		router:    gin.New(),
		logger:    logger,
		repo:      repo,
		records:   recordsSvc,
		reconcile: reconcileSvc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())

	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger, "/health"))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.repo)
	s.router.GET("/health", healthHandler.Get)

	// API routes require a user identity
	api := s.router.Group("/api", middleware.Owner())

	// Transactions
	txHandler := handlers.NewTransactionsHandler(s.records, s.logger)
	api.POST("/transactions", txHandler.Create)
	api.GET("/transactions", txHandler.List)
	api.GET("/transactions/:id", txHandler.Get)
	api.PUT("/transactions/:id", txHandler.Update)
	api.DELETE("/transactions/:id", txHandler.Delete)

	// Bank transactions
	bankHandler := handlers.NewBankTransactionsHandler(s.records, s.logger)
	api.POST("/bank-transactions", bankHandler.Create)
	api.POST("/bank-transactions/bulk", bankHandler.CreateBulk)
	api.POST("/bank-transactions/upload", bankHandler.Upload)
	api.POST("/bank-transactions/preview", bankHandler.Preview)
	api.GET("/bank-transactions", bankHandler.List)
	api.GET("/bank-transactions/unmatched/report", bankHandler.UnmatchedReport)
	api.GET("/bank-transactions/:id", bankHandler.Get)
	api.PUT("/bank-transactions/:id", bankHandler.Update)
	api.DELETE("/bank-transactions/:id", bankHandler.Delete)

	// Matching
	matchHandler := handlers.NewMatchingHandler(s.reconcile, s.logger)
	matching := api.Group("/matching")
	matching.POST("/match", matchHandler.Propose)
	matching.GET("/matches", matchHandler.ListCandidates)
	matching.POST("/matches/:id/confirm", matchHandler.Confirm)
	matching.DELETE("/matches/:id", matchHandler.Delete)
	matching.GET("/confirmed", matchHandler.ListConfirmed)
	matching.GET("/suggestions", matchHandler.Suggestions)
	matching.GET("/potential/:id", matchHandler.Potential)
	matching.POST("/confirm", matchHandler.CreateMatch)
	matching.POST("/unmatch/:id", matchHandler.Unmatch)
	matching.GET("/summary", matchHandler.Summary)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
