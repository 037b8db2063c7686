package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = JSONErrorHandler()

	// Apply global middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(SetNoCacheHeaders) // Prevent caching of API responses

	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}

	// Detector endpoints, rate limited per client IP
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	v1 := e.Group("/api/v1")
	v1.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60), // Refill per second
			Burst:     perMinute,                          // A full minute's allowance
			ExpiresIn: 3 * time.Minute,                    // Forget idle clients
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Status: "error",
				Error:  "rate limit exceeded",
				Code:   http.StatusTooManyRequests,
			})
		},
	}))
	v1.GET("/solana-meme-detector", h.DetectGet)
	v1.POST("/solana-meme-detector", h.DetectPost)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Status: "error", Error: "not found", Code: http.StatusNotFound})
	})
}
