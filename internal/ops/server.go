package ops

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ariproxy/internal/logger"
	"ariproxy/pkg/health"
	"ariproxy/pkg/middleware"
	"ariproxy/pkg/tracing"
)

const (
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// NewRouter serves the health report and the Prometheus registry.
func NewRouter(registry *health.CheckerRegistry, log logger.Logger, serviceName string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log, healthPath, metricsPath))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(tracing.GinMiddleware(serviceName))

	router.GET(healthPath, func(c *gin.Context) {
		h := registry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET(metricsPath, gin.WrapH(promhttp.Handler()))

	return router
}

func NewServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}
}
