package httpserver

import (
	"context"

	"kofi-alerts/internal/client"
	"kofi-alerts/pkg/errors"
	"kofi-alerts/pkg/response"

	"github.com/gin-gonic/gin"
)

func (srv *HTTPServer) redisStatus(ctx context.Context) string {
	if srv.redis == nil {
		return redisDisabled
	}
	if err := srv.redis.Ping(ctx); err != nil {
		srv.logger.Warnf(ctx, "httpserver.redisStatus: ping failed: %v", err)
		return redisUnavailable
	}
	return redisConnected
}

// healthCheck reports the process and its dependencies.
// An unreachable Redis sink makes the service unhealthy.
func (srv *HTTPServer) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	redis := srv.redisStatus(ctx)
	if redis == redisUnavailable {
		response.HttpError(c, errors.NewUnavailableHTTPError("Redis connection failed"))
		return
	}

	response.OK(c, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
		"state":   srv.status.State(),
		"redis":   redis,
	})
}

// readyCheck succeeds only while the alerts session is Ready.
func (srv *HTTPServer) readyCheck(c *gin.Context) {
	state := srv.status.State()
	if state != client.StateReady {
		response.HttpError(c, errors.NewUnavailableHTTPError("alerts session is "+state.String()))
		return
	}

	response.OK(c, gin.H{
		"status":  "ready",
		"service": serviceName,
		"version": serviceVersion,
		"state":   state,
	})
}

func (srv *HTTPServer) liveCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "alive",
		"service": serviceName,
		"version": serviceVersion,
	})
}
