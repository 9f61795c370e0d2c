package http

import (
	"github.com/Jaysins/yoghurt-backend/internal/adapter/http/middleware"
	"github.com/Jaysins/yoghurt-backend/internal/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *OrderHandler, maxUploadBytes int64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors.Default(), middleware.MetricsMiddleware())
	r.MaxMultipartMemory = maxUploadBytes

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders/:id", h.GetOrderByID)
		v1.PUT("/orders/:id", h.UpdateOrder)
		v1.POST("/orders/:id/payment", h.UploadPaymentProof)
	}

	return r
}
