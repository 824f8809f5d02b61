package httpserver

import (
	"errors"
	"net/http"

	"kofi-alerts/internal/alert"
	"kofi-alerts/internal/client"
	"kofi-alerts/pkg/discord"
	"kofi-alerts/pkg/log"
	pkgRedis "kofi-alerts/pkg/redis"

	"github.com/gin-gonic/gin"
)

// Status is the read side of the alerts client. *client.Client satisfies it.
type Status interface {
	State() client.State
	LastAlert() alert.Alert
	Stats() client.Stats
}

// HTTPServer represents the status HTTP server with all dependencies.
// New() wires dependencies and routes. Run() serves until the context ends.
type HTTPServer struct {
	// Server configuration
	gin    *gin.Engine
	server *http.Server
	logger log.Logger
	host   string
	port   int

	// Alerts session
	status Status

	// External services
	redis   pkgRedis.IRedis
	discord discord.IDiscord
}

// Config is the constructor input for HTTPServer.
type Config struct {
	// Server configuration
	Host string
	Port int
	Mode string

	// Alerts session
	Status Status

	// External services (optional)
	Redis   pkgRedis.IRedis
	Discord discord.IDiscord
}

// New creates a new HTTPServer instance with the provided configuration.
// Note: This does NOT start any goroutines. Use (*HTTPServer).Run() to start serving.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	srv := &HTTPServer{
		gin:     gin.New(),
		logger:  logger,
		host:    cfg.Host,
		port:    cfg.Port,
		status:  cfg.Status,
		redis:   cfg.Redis,
		discord: cfg.Discord,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	srv.mapHandlers()

	return srv, nil
}

// validate ensures all required dependencies are provided.
func (s *HTTPServer) validate() error {
	if s.logger == nil {
		return errors.New("logger is required")
	}
	if s.port <= 0 || s.port > 65535 {
		return errors.New("port is required")
	}
	if s.status == nil {
		return errors.New("status source is required")
	}

	return nil
}
