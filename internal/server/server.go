// Package server provides the HTTP API for railsathi.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/config"
	"github.com/safarlabs/railsathi/internal/session"
)

// Server exposes the assistant over HTTP.
type Server struct {
	echo     *echo.Echo
	sessions *session.Store
	logger   *zap.Logger
	config   config.ServerConfig
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(sessions *session.Store, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/reset", s.handleReset)
}

// ChatRequest is the request body for POST /api/chat. An empty
// sessionId starts a new conversation.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatResponse is the response body for POST /api/chat. The client
// echoes sessionId back on the next turn.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
	Stage     string `json:"stage"`
}

// ResetRequest is the request body for POST /api/reset.
type ResetRequest struct {
	SessionID string `json:"sessionId"`
}

// ResetResponse is the response body for POST /api/reset.
type ResetResponse struct {
	OK bool `json:"ok"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: s.sessions.Len()})
}

// handleChat runs one dialogue turn for the request's session.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}

	sess, err := s.sessions.GetOrCreate(req.SessionID)
	if err != nil {
		s.logger.Error("session create failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create session")
	}

	reply := sess.Process(c.Request().Context(), req.Message)
	stage := string(sess.Stage())
	chatTurns.WithLabelValues(stage).Inc()

	return c.JSON(http.StatusOK, ChatResponse{
		Reply:     reply,
		SessionID: sess.ID,
		Stage:     stage,
	})
}

// handleReset drops the session so the next chat call starts fresh.
func (s *Server) handleReset(c echo.Context) error {
	var req ResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sessionId field is required")
	}

	if s.sessions.Delete(req.SessionID) {
		resets.Inc()
	}
	return c.JSON(http.StatusOK, ResetResponse{OK: true})
}

// ServeHTTP makes the server usable directly with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
