package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"conversion-guard/pkg/discord"
	"conversion-guard/pkg/log"
	"conversion-guard/pkg/response"
)

// Recovery converts panics into 500 responses. When a discord client is
// configured the panic is also reported there.
func Recovery(logger log.Logger, discordClient discord.IDiscord) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				logger.Errorf(ctx, "panic recovered: %v | Method: %s | Path: %s",
					err, c.Request.Method, c.Request.URL.Path)

				if discordClient != nil {
					go func() {
						_ = discordClient.SendError(ctx, "Service panic",
							fmt.Sprintf("%v (%s %s)", err, c.Request.Method, c.Request.URL.Path))
					}()
				}

				response.Error(c, fmt.Errorf("panic: %v", err))
				c.Abort()
			}
		}()
		c.Next()
	}
}
