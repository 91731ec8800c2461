package httpserver

import (
	"github.com/gin-gonic/gin"

	"conversion-guard/pkg/errors"
	"conversion-guard/pkg/response"
)

// healthCheckHandler reports whether the service can reach its database.
func (srv *HTTPServer) healthCheckHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if srv.healthCheck != nil {
		if err := srv.healthCheck(ctx); err != nil {
			srv.logger.Errorf(ctx, "internal.httpserver.healthCheckHandler: %v", err)
			response.Error(c, errors.NewServiceUnavailableHTTPError("Database connection failed"))
			return
		}
	}

	response.OK(c, gin.H{
		"status":   "healthy",
		"service":  "conversion-guard",
		"version":  "1.0.0",
		"postgres": "connected",
	})
}

// liveCheck answers as long as the process is up.
func (srv *HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "alive",
		"service": "conversion-guard",
		"version": "1.0.0",
	})
}
