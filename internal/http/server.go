// Package http provides the HTTP API for docqd.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/docqd/internal/qa"
	"github.com/fyrsmithlabs/docqd/internal/retrieval"
)

// QuestionService answers one question about one document.
type QuestionService interface {
	Ask(ctx context.Context, q retrieval.Question) (qa.Result, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RateLimitRPS caps sustained requests per second per client IP.
	// Zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server provides HTTP endpoints for docqd.
type Server struct {
	echo    *echo.Echo
	service QuestionService
	logger  *zap.Logger
	config  *Config
}

// QuestionRequest is the request body for POST /question.
type QuestionRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"documentId"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewServer creates a new HTTP server.
func NewServer(service QuestionService, logger *zap.Logger, cfg *Config) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("question service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metricsMiddleware())
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
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimitRPS),
				Burst:     cfg.RateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			},
		)))
	}

	s := &Server{
		echo:    e,
		service: service,
		logger:  logger,
		config:  cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.POST("/question", s.handleQuestion)
}

// errorHandler renders every error as the {"error": ...} envelope so
// clients parse one failure shape regardless of where the error arose.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Int("status", status), zap.Error(err))
		}

		if writeErr := c.JSON(status, ErrorResponse{Error: message}); writeErr != nil {
			logger.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleQuestion answers a question about a single document.
//
// Only request validation failures produce a non-200 status. Every
// downstream failure is absorbed by the pipeline into a canned answer
// and still returns 200, so clients handle exactly one error shape.
func (s *Server) handleQuestion(c echo.Context) error {
	start := time.Now()

	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid question request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.service.Ask(c.Request().Context(), retrieval.Question{
		Text:       req.Question,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		if errors.Is(err, retrieval.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("question pipeline failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	QuestionsTotal.WithLabelValues(string(result.Outcome)).Inc()
	QuestionDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("question answered",
		zap.String("document_id", req.DocumentID),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("sources", len(result.Sources)),
	)

	return c.JSON(http.StatusOK, result)
}

// Echo exposes the underlying router, for tests and extra routes.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
