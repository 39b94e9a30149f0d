package server

import (
	"context"
	"net/http"
	"time"

	"gymdesk/internal/api"
	"gymdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check is one dependency probed by /health. A failing critical check makes
// the service unavailable; any other failure only degrades it.
type Check struct {
	Ping     func(ctx context.Context) error
	Critical bool
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		res := api.HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		code := http.StatusOK

		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Warn("health check failed", "check", name, "error", err)
				res.Checks[name] = "down"
				if check.Critical {
					res.Status = "unavailable"
					code = http.StatusServiceUnavailable
				} else if code == http.StatusOK {
					res.Status = "degraded"
				}
				continue
			}
			res.Checks[name] = "up"
		}

		c.JSON(code, res)
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
