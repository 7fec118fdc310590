package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valpere/frank/internal/config"
)

// Server wraps the HTTP server and provides lifecycle management
type Server struct {
	router *gin.Engine
	config config.ServerConfig
	server *http.Server
	logger *slog.Logger
}

// NewServer creates the gin engine with frank's middleware and routes.
func NewServer(cfg config.ServerConfig, h *Handler, logger *slog.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(RequestID(), RequestLogger(logger), gin.Recovery())
	SetupRoutes(router, h)

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
	}
}

// Router returns the Gin router for registering handlers
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting server", "addr", s.config.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
