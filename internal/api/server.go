package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/devparam-core/internal/audit"
	"github.com/nerrad567/devparam-core/internal/command"
	"github.com/nerrad567/devparam-core/internal/events"
	"github.com/nerrad567/devparam-core/internal/gpu"
	"github.com/nerrad567/devparam-core/internal/group"
	"github.com/nerrad567/devparam-core/internal/infrastructure/config"
	"github.com/nerrad567/devparam-core/internal/infrastructure/database"
	"github.com/nerrad567/devparam-core/internal/infrastructure/logging"
	"github.com/nerrad567/devparam-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/devparam-core/internal/infrastructure/tsdb"
	"github.com/nerrad567/devparam-core/internal/param"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Security  config.SecurityConfig
	Device    config.DeviceConfig
	Logger    *logging.Logger
	Groups    *group.Service
	Validator *command.Validator
	Accessor  *gpu.Accessor
	Caps      gpu.Caps

	// Registry may be nil when group integration is disabled; the
	// validator then rejects parameter requests and stats report zero
	// records.
	Registry *param.Registry

	// Audit, Recorder, DB, MQTT and TSDB are optional: absent sinks
	// degrade the corresponding endpoints, never the parameter pipeline.
	Audit    audit.Repository
	Recorder *events.Recorder
	DB       *database.DB
	MQTT     *mqtt.Client
	TSDB     *tsdb.Client

	Version string
}

// Server is the HTTP control API server.
//
// It manages the HTTP listener, routes and middleware. The server is
// created with New() and started with Start(). All methods are safe for
// concurrent use.
type Server struct {
	cfg       config.APIConfig
	secCfg    config.SecurityConfig
	devCfg    config.DeviceConfig
	logger    *logging.Logger
	groups    *group.Service
	validator *command.Validator
	accessor  *gpu.Accessor
	caps      gpu.Caps
	registry  *param.Registry
	auditRepo audit.Repository
	recorder  *events.Recorder
	db        *database.DB
	mqtt      *mqtt.Client
	tsdb      *tsdb.Client
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Groups == nil {
		return nil, fmt.Errorf("group service is required")
	}
	if deps.Validator == nil {
		return nil, fmt.Errorf("command validator is required")
	}

	return &Server{
		cfg:       deps.Config,
		secCfg:    deps.Security,
		devCfg:    deps.Device,
		logger:    deps.Logger,
		groups:    deps.Groups,
		validator: deps.Validator,
		accessor:  deps.Accessor,
		caps:      deps.Caps,
		registry:  deps.Registry,
		auditRepo: deps.Audit,
		recorder:  deps.Recorder,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		tsdb:      deps.TSDB,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; the server is stopped
// with Close(). The context is accepted for symmetry with the other
// infrastructure components and future cancellation needs.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
