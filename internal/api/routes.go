// Package api serves the findings store to out-of-process check workers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pdp-recon/internal/logger"
)

// SetupRouter wires the findings routes
func SetupRouter(environment string, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		f := v1.Group("/findings")
		{
			f.GET("", handler.ListFindings)
			f.GET("/:id", handler.GetFinding)
			f.POST("/:id/notes", handler.AppendNote)
			f.PUT("/:id/pricing", handler.SetPricing)
		}
	}

	return router
}

// Serve runs the router on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Findings service listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down findings service...")
	return srv.Shutdown(shutdownCtx)
}
