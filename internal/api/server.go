package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kevann/nosteq-core/internal/audit"
	"github.com/kevann/nosteq-core/internal/infrastructure/config"
	"github.com/kevann/nosteq-core/internal/infrastructure/logging"
	"github.com/kevann/nosteq-core/internal/inventory"
	"github.com/kevann/nosteq-core/internal/syncer"
	"github.com/kevann/nosteq-core/internal/technician"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// Syncer is the part of *syncer.Syncer the API drives.
type Syncer interface {
	SyncOnce(ctx context.Context) (*syncer.Result, error)
	Last() *syncer.Result
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Registry  *inventory.Registry
	Store     inventory.Store
	Profiles  technician.Repository
	Syncer    Syncer                  // Optional; POST /sync answers 503 without it
	Audit     audit.Repository        // Optional; admin actions are not recorded without it
	Locations inventory.LocationStore // Optional; GET /onus/locations answers 503 without it
	Version   string
}

// Server is the HTTP API server.
type Server struct {
	cfg      config.APIConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	registry *inventory.Registry
	store    inventory.Store
	profiles technician.Repository
	syncer   Syncer
	version  string

	locations inventory.LocationStore

	auditRepo audit.Repository
	auditCh   chan *audit.Entry

	server   *http.Server
	listener net.Listener
}

// New creates a server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("onu registry is required")
	}
	if deps.Profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	srv := &Server{
		cfg:      deps.Config,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		registry: deps.Registry,
		store:    deps.Store,
		profiles: deps.Profiles,
		syncer:   deps.Syncer,
		version:  deps.Version,

		locations: deps.Locations,
	}
	if deps.Audit != nil {
		srv.auditRepo = deps.Audit
		srv.auditCh = make(chan *audit.Entry, auditChanSize)
	}
	return srv, nil
}

// Handler returns the router. Used directly by tests and by Start.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener and serves in a background goroutine.
// A bind failure (port in use) is returned immediately. The audit writer
// runs until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.Timeouts.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.Timeouts.ReadTimeout(),
		WriteTimeout:      s.cfg.Timeouts.WriteTimeout(),
		IdleTimeout:       s.cfg.Timeouts.IdleTimeout(),
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	if s.auditRepo != nil {
		go s.drainAuditLog(ctx)
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS", "address", ln.Addr().String(), "cert", s.cfg.TLS.CertFile)
			err = s.server.ServeTLS(ln, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", ln.Addr().String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close waits up to gracefulShutdownTimeout for in-flight requests.
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

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
