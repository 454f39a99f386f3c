package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "tax-service"
	serviceVersion = "1.0.0"
)

var startTime = time.Now()

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    serviceVersion,
		"service":    serviceName,
		"go_version": runtime.Version(),
		"started_at": startTime.Format(time.RFC3339),
	})
}

// Debug handles GET /debug
func (h *Handlers) Debug(c *gin.Context) {
	params := h.taxService.Params()
	c.JSON(http.StatusOK, gin.H{
		"features": gin.H{
			"enable_result_cache":     h.config.Features.EnableResultCache,
			"enable_tax_events":       h.config.Features.EnableTaxEvents,
			"enable_request_consumer": h.config.Features.EnableRequestConsumer,
		},
		"config": gin.H{
			"stage":         h.config.Stage,
			"server_port":   h.config.Server.Port,
			"redis_host":    h.config.Redis.Host,
			"kafka_brokers": h.config.Kafka.Brokers,
			"slab_count":    len(params.Slabs),
		},
		"uptime_seconds": time.Since(startTime).Seconds(),
		"goroutines":     runtime.NumGoroutine(),
	})
}
