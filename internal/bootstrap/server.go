package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbook/api"
	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/auth"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const swaggerSpec = "travelbook.swagger.json"

type Handlers struct {
	Bookings        *api.BookingHandler
	Cancellations   *api.CancellationHandler
	Refunds         *api.RefundHandler
	ServiceBookings *api.ServiceBookingHandler
}

// Run serves the HTTP API and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, handlers Handlers) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, logger, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	}
}

func NewRouter(cfg *config.Config, logger *zap.Logger, handlers Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/"+swaggerSpec),
		)))
	}

	v1 := router.Group("/api/v1")
	if cfg.HTTP.RateLimitRPS > 0 {
		v1.Use(api.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))
	}
	v1.Use(api.Authenticate(auth.NewSubjectReader(cfg.Auth.JWTSecret)))
	handlers.Bookings.Register(v1.Group("/bookings"))
	handlers.Cancellations.Register(v1.Group("/cancellations"))
	handlers.Refunds.Register(v1.Group("/refunds"))
	handlers.ServiceBookings.Register(v1.Group("/service-bookings"))

	return router
}
