package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paceline/paceline/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	api := router.Group("/api/v1")
	{
		api.GET("/suggestions", handler.GenerateSuggestions)
		api.GET("/plan/current-week", handler.CurrentWeek)

		statsGroup := api.Group("/stats")
		{
			statsGroup.GET("/weekly-mileage", handler.WeeklyMileage)
			statsGroup.GET("/pace", handler.PaceProgression)
			statsGroup.GET("/long-runs", handler.LongRunProgression)
			statsGroup.GET("/completion", handler.CompletionRate)
			statsGroup.GET("/summary", handler.Summary)
		}

		api.GET("/runs", handler.ListRuns)
		api.POST("/runs", handler.CreateRun)
		api.PATCH("/runs/:id", handler.UpdateRun)
		api.DELETE("/runs/:id", handler.DeleteRun)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
