// Package server exposes the meal-plan pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/logging"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/planner"
)

// PlanGenerator is the part of the planner the server needs.
type PlanGenerator interface {
	Generate(ctx context.Context, opts planner.Options) (planner.Result, error)
}

// Server is the gin HTTP facade.
type Server struct {
	generator  PlanGenerator
	normalizer *mealplan.Normalizer
	logger     *zap.Logger
	engine     *gin.Engine
}

// New builds the router. generator may be nil, in which case generation
// answers 503.
func New(generator PlanGenerator, normalizer *mealplan.Normalizer, logger *zap.Logger) *Server {
	if normalizer == nil {
		normalizer = mealplan.NewNormalizer()
	}
	s := &Server{
		generator:  generator,
		normalizer: normalizer,
		logger:     logging.OrNop(logger),
		engine:     gin.New(),
	}
	s.engine.Use(requestID(), requestLogger(s.logger), gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	api := s.engine.Group("/api")
	{
		api.POST("/macros/validate", s.validateMacros)
		api.POST("/macros/suggest", s.suggestMacros)

		api.POST("/meal-plan/normalize", s.normalizePlan)
		api.POST("/meal-plan/markdown", s.parseMarkdown)
		api.POST("/meal-plan/generate", s.generatePlan)
	}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
