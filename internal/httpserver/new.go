package httpserver

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"

	"conversion-guard/config"
	"conversion-guard/internal/orchestrator"
	"conversion-guard/internal/storage"
	"conversion-guard/pkg/discord"
	"conversion-guard/pkg/jwt"
	"conversion-guard/pkg/log"
)

// HTTPServer represents the admin API server with all dependencies.
// New() only wires dependencies and validates them.
// Run() (in httpserver.go) starts HTTP serving and blocks until shutdown.
type HTTPServer struct {
	// Server configuration
	gin         *gin.Engine
	logger      log.Logger
	port        int
	environment string

	// Monitoring core
	orch *orchestrator.Orchestrator
	repo storage.Repository
	cfg  *config.Config

	// Guards a manually triggered run. Only one run at a time.
	runMu sync.Mutex

	// Auth & security
	validator *jwt.Validator

	// External services
	discord discord.IDiscord

	// HealthCheck reports whether the backing database is reachable.
	healthCheck func(ctx context.Context) error
}

// Config is the constructor input for HTTPServer.
type Config struct {
	// Server configuration
	Port        int
	Environment string

	// Monitoring core
	Orchestrator *orchestrator.Orchestrator
	Repo         storage.Repository
	App          *config.Config

	// Auth & security
	Validator *jwt.Validator

	// External services
	Discord discord.IDiscord

	HealthCheck func(ctx context.Context) error
}

// New creates a new HTTPServer instance with the provided configuration.
// Note: This does NOT start any goroutines. Use (*HTTPServer).Run() to start the service.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(ginMode(cfg.Environment))

	srv := &HTTPServer{
		// Server configuration
		gin:         gin.New(),
		logger:      logger,
		port:        cfg.Port,
		environment: cfg.Environment,

		// Monitoring core
		orch: cfg.Orchestrator,
		repo: cfg.Repo,
		cfg:  cfg.App,

		// Auth & security
		validator: cfg.Validator,

		// External services
		discord: cfg.Discord,

		healthCheck: cfg.HealthCheck,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	return srv, nil
}

// validate ensures all required dependencies are provided.
func (srv *HTTPServer) validate() error {
	if srv.logger == nil {
		return errors.New("logger is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.orch == nil {
		return errors.New("orchestrator is required")
	}
	if srv.repo == nil {
		return errors.New("repository is required")
	}
	if srv.cfg == nil {
		return errors.New("config is required")
	}
	if srv.validator == nil {
		return errors.New("JWT validator is required")
	}

	return nil
}

func ginMode(environment string) string {
	switch environment {
	case "production", "staging":
		return gin.ReleaseMode
	default:
		return gin.DebugMode
	}
}
