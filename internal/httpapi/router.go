package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuyiadepoju/subscription-billing/internal/metrics"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with health, metrics and API routes.
func NewRouter(h *Handler, collector *metrics.Collector, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if collector != nil {
		r.Use(collector.Middleware())
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.Register(r)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
