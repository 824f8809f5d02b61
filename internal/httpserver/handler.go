package httpserver

import "kofi-alerts/internal/middleware"

const (
	Api = "/api/v1"
)

func (srv *HTTPServer) mapHandlers() {
	srv.gin.Use(middleware.Recovery(srv.logger, srv.discord))
	srv.gin.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health check endpoints
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)

	api := srv.gin.Group(Api)
	api.GET("/alerts/last", srv.lastAlert)
	api.GET("/stats", srv.stats)
}
