package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"conversion-guard/internal/middleware"
)

const (
	Api = "/api/v1"
)

func (srv *HTTPServer) mapHandlers() error {
	// Apply CORS middleware globally
	corsConfig := middleware.DefaultCORSConfig()
	srv.gin.Use(middleware.CORS(corsConfig))
	srv.gin.Use(middleware.Recovery(srv.logger, srv.discord))

	// Health check endpoints (no auth required)
	srv.gin.GET("/health", srv.healthCheckHandler)
	srv.gin.GET("/live", srv.liveCheck)

	// Prometheus scrape endpoint
	srv.gin.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	mw := middleware.New(srv.logger, srv.validator)
	api := srv.gin.Group(Api)
	api.Use(mw.Auth())

	api.POST("/run", srv.triggerRun)
	api.GET("/config", srv.getConfig)
	api.GET("/apps", srv.getAppIDs)
	api.GET("/events", srv.getEventNames)

	return nil
}
