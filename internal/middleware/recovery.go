package middleware

import (
	"kofi-alerts/pkg/discord"
	"kofi-alerts/pkg/log"
	"kofi-alerts/pkg/response"

	"github.com/gin-gonic/gin"
)

// Recovery turns handler panics into a 500 envelope and reports them to Discord when configured.
func Recovery(logger log.Logger, discordClient discord.IDiscord) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				logger.Errorf(ctx, "Panic recovered: %v | Method: %s | Path: %s",
					err, c.Request.Method, c.Request.URL.Path)

				response.PanicError(c, err, discordClient)
				c.Abort()
			}
		}()
		c.Next()
	}
}
