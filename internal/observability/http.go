package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]checkResult `json:"checks,omitempty"`
}

// NewOpsHandler serves /-/live, /-/ready and /-/metrics.
func NewOpsHandler(gatherer prometheus.Gatherer, checks ...ReadinessCheck) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	ops := engine.Group("/-")
	ops.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ops.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := readinessResponse{Status: "ok", Checks: make(map[string]checkResult, len(checks))}
		code := http.StatusOK
		for _, chk := range checks {
			if err := chk.Check(ctx); err != nil {
				resp.Checks[chk.Name] = checkResult{Status: "unhealthy", Error: err.Error()}
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[chk.Name] = checkResult{Status: "ok"}
		}
		c.JSON(code, resp)
	})
	ops.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return engine
}
