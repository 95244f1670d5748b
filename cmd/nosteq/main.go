// Nosteq Core - ONU inventory service for field technicians
//
// Core mirrors the SmartOLT ONU inventory into SQLite, classifies every ONU
// into a service area and serves each technician only the ONUs of their
// own area over the REST API. Sync results are published to MQTT and
// per-area status counts are written to InfluxDB when enabled.
//
// Usage:
//
//	nosteq                                  run the service
//	nosteq token -sub tech-001 -role admin  print a signed access token
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/kevann/nosteq-core/migrations"

	"github.com/kevann/nosteq-core/internal/api"
	"github.com/kevann/nosteq-core/internal/audit"
	"github.com/kevann/nosteq-core/internal/auth"
	"github.com/kevann/nosteq-core/internal/infrastructure/config"
	"github.com/kevann/nosteq-core/internal/infrastructure/database"
	"github.com/kevann/nosteq-core/internal/infrastructure/influxdb"
	"github.com/kevann/nosteq-core/internal/infrastructure/logging"
	"github.com/kevann/nosteq-core/internal/infrastructure/mqtt"
	"github.com/kevann/nosteq-core/internal/inventory"
	"github.com/kevann/nosteq-core/internal/smartolt"
	"github.com/kevann/nosteq-core/internal/syncer"
	"github.com/kevann/nosteq-core/internal/technician"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "token" {
		err = runToken(os.Args[2:], os.Stdout)
	} else {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the service entry point, separated from main for testability.
// It returns nil on a clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup sequence: each step is linear
	log := logging.Default()
	log.Info("starting Nosteq Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	profiles := technician.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	store := inventory.NewSQLiteStore(db)
	registry := inventory.NewRegistry(store)
	registry.SetLogger(log)
	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading onu registry: %w", refreshErr)
	}
	log.Info("onu registry initialised", "onus", registry.Count())

	// MQTT is optional; without it sync results are only visible over the API.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	var sync *syncer.Syncer
	if cfg.Sync.Enabled {
		sync, err = newSyncer(cfg, store, registry, mqttClient, influxClient, log)
		if err != nil {
			return fmt.Errorf("creating syncer: %w", err)
		}

		syncCtx, stopSync := context.WithCancel(ctx)
		syncDone := make(chan struct{})
		go func() {
			defer close(syncDone)
			if runErr := sync.Run(syncCtx, cfg.Sync.Interval); runErr != nil {
				log.Error("sync loop failed", "error", runErr)
			}
		}()
		defer func() {
			stopSync()
			<-syncDone
			log.Info("sync loop stopped")
		}()
		log.Info("sync loop started", "interval", cfg.Sync.Interval, "max_age", cfg.Sync.MaxAge)

		if mqttClient != nil {
			if subErr := subscribeSyncRequests(syncCtx, mqttClient, sync, auditRepo, log); subErr != nil {
				return fmt.Errorf("subscribing to sync requests: %w", subErr)
			}
		}
	} else {
		log.Info("sync disabled, serving stored snapshot only")
	}

	deps := api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log,
		Registry:  registry,
		Store:     store,
		Profiles:  profiles,
		Audit:     auditRepo,
		Locations: store,
		Version:   version,
	}
	if sync != nil {
		deps.Syncer = sync
	}
	apiServer, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API server, sync loop, InfluxDB,
	// MQTT, database.

	log.Info("Nosteq Core stopped")
	return nil
}

// newSyncer builds the SmartOLT client and the Syncer. mqttClient and
// influxClient may be nil.
func newSyncer(cfg *config.Config, store *inventory.SQLiteStore, registry *inventory.Registry,
	mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger,
) (*syncer.Syncer, error) {
	source, err := smartolt.New(smartolt.Config{
		BaseURL: cfg.SmartOLTBaseURL(),
		APIKey:  cfg.SmartOLT.APIKey,
		Timeout: time.Duration(cfg.SmartOLT.Timeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("creating SmartOLT client: %w", err)
	}

	syncCfg := syncer.Config{
		Source:   source,
		Store:    store,
		Registry: registry,
		MaxAge:   cfg.Sync.MaxAge,
		Logger:   log,
	}
	if cfg.Sync.Locations {
		syncCfg.Locations = source
		syncCfg.LocationStore = store
		syncCfg.LocationMaxAge = cfg.Sync.LocationMaxAge
	}
	// Assign only non-nil clients so the interfaces stay nil when disabled.
	if mqttClient != nil {
		syncCfg.Publisher = mqttClient
	}
	if influxClient != nil {
		syncCfg.Metrics = influxClient
	}

	return syncer.New(syncCfg)
}

// subscribeSyncRequests runs a sync whenever a message arrives on the sync
// command topic. The payload is ignored. Each attempt is audited with the
// mqtt source.
func subscribeSyncRequests(ctx context.Context, client *mqtt.Client, sync *syncer.Syncer, auditRepo audit.Repository, log *logging.Logger) error {
	topic := mqtt.Topics{}.SyncRequest()
	err := client.Subscribe(topic, 1, func(_ string, _ []byte) error {
		go func() {
			res, err := sync.SyncOnce(ctx)
			if errors.Is(err, syncer.ErrSyncInProgress) {
				log.Debug("sync request ignored, cycle already running")
				return
			}

			entry := &audit.Entry{Action: audit.ActionSync, EntityType: audit.EntityInventory, Source: audit.SourceMQTT}
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("requested sync failed", "error", err)
				}
				entry.Details = map[string]any{"result": syncer.ResultFailed, "error": err.Error()}
			} else {
				entry.EntityID = res.RunID
				entry.Details = map[string]any{"result": res.Result, "saved": res.Saved}
			}
			if auditErr := auditRepo.Create(context.Background(), entry); auditErr != nil {
				log.Error("audit write failed", "action", entry.Action, "error", auditErr)
			}
		}()
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("listening for sync requests", "topic", topic)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses NOSTEQ_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("NOSTEQ_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient are skipped when nil.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// runToken implements the token subcommand. The signing secret comes from
// NOSTEQ_JWT_SECRET, or from the config file when that is unset.
func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	subject := fs.String("sub", "", "technician ID to put in the sub claim (required)")
	role := fs.String("role", technician.RoleTechnician, "role claim: technician or admin")
	ttl := fs.Duration("ttl", 0, "token lifetime (default: security.jwt.access_token_ttl, or 60m with NOSTEQ_JWT_SECRET)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return errors.New("token: -sub is required")
	}

	secret := os.Getenv("NOSTEQ_JWT_SECRET")
	lifetime := *ttl
	if secret == "" {
		cfg, err := config.Load(getConfigPath())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		secret = cfg.Security.JWT.Secret
		if lifetime == 0 {
			lifetime = time.Duration(cfg.Security.JWT.AccessTokenTTL) * time.Minute
		}
	}

	token, err := auth.GenerateAccessToken(*subject, *role, secret, lifetime)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
