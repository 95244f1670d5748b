package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kevann/nosteq-core/internal/infrastructure/mqtt"
	"github.com/kevann/nosteq-core/internal/inventory"
	"github.com/kevann/nosteq-core/internal/onu"
	"github.com/kevann/nosteq-core/internal/smartolt"
	"github.com/kevann/nosteq-core/internal/zone"
)

// Result labels used in logs, events and metrics.
const (
	ResultOK      = "ok"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

// Source is the upstream inventory, normally *smartolt.Client.
type Source interface {
	ListOnuDetails(ctx context.Context, f smartolt.Filter) ([]onu.Onu, error)
	ListOnuStatuses(ctx context.Context, f smartolt.Filter) ([]onu.LiveStatus, error)
}

// LocationSource provides GPS coordinates, normally *smartolt.Client.
type LocationSource interface {
	ListOnuGPS(ctx context.Context, f smartolt.Filter) ([]onu.Location, error)
}

// Publisher sends retained events, normally *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// MetricsWriter records sync time series, normally *influxdb.Client.
type MetricsWriter interface {
	WriteZoneCounts(area string, counts map[string]int, ts time.Time)
	WriteSyncRun(result string, saved, statuses int, duration time.Duration, ts time.Time)
}

// Logger defines the logging interface used by the Syncer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config wires a Syncer. Source, Store and Registry are required.
type Config struct {
	Source   Source
	Store    inventory.Store
	Registry *inventory.Registry

	// Publisher and Metrics are optional.
	Publisher Publisher
	Metrics   MetricsWriter

	// MaxAge is how long a stored snapshot counts as fresh.
	// Zero uses inventory.DefaultMaxAge.
	MaxAge time.Duration

	// Locations and LocationStore enable GPS refreshes. Both or neither.
	Locations     LocationSource
	LocationStore inventory.LocationStore

	// LocationMaxAge is how long stored coordinates count as fresh.
	// Zero uses inventory.DefaultLocationMaxAge.
	LocationMaxAge time.Duration

	Logger Logger
}

// Syncer runs sync cycles. At most one cycle runs at a time.
type Syncer struct {
	source    Source
	store     inventory.Store
	registry  *inventory.Registry
	publisher Publisher
	metrics   MetricsWriter
	maxAge    time.Duration
	logger    Logger
	now       func() time.Time

	locations      LocationSource
	locationStore  inventory.LocationStore
	locationMaxAge time.Duration

	runMu sync.Mutex

	lastMu sync.RWMutex
	last   *Result
}

// Result describes one completed cycle.
type Result struct {
	RunID      string        `json:"run_id"`
	Result     string        `json:"result"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Fetched    int           `json:"fetched"`
	Saved      int           `json:"saved"`
	Statuses   int           `json:"statuses"`
	Counts     onu.Counts    `json:"counts"`
	Error      string        `json:"error,omitempty"`
}

// New validates cfg and returns a Syncer.
func New(cfg Config) (*Syncer, error) {
	if cfg.Source == nil || cfg.Store == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("%w: source, store and registry are required", ErrInvalidConfig)
	}
	if (cfg.Locations == nil) != (cfg.LocationStore == nil) {
		return nil, fmt.Errorf("%w: locations and location store must be set together", ErrInvalidConfig)
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = inventory.DefaultMaxAge
	}

	locationMaxAge := cfg.LocationMaxAge
	if locationMaxAge <= 0 {
		locationMaxAge = inventory.DefaultLocationMaxAge
	}

	var logger Logger = noopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}

	return &Syncer{
		source:    cfg.Source,
		store:     cfg.Store,
		registry:  cfg.Registry,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		maxAge:    maxAge,
		logger:    logger,
		now:       time.Now,

		locations:      cfg.Locations,
		locationStore:  cfg.LocationStore,
		locationMaxAge: locationMaxAge,
	}, nil
}

// SyncOnce runs one full cycle. It returns ErrSyncInProgress if another
// cycle holds the lock.
func (s *Syncer) SyncOnce(ctx context.Context) (*Result, error) {
	if !s.runMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.runMu.Unlock()

	res := &Result{RunID: uuid.NewString(), StartedAt: s.now()}
	log := s.logger

	details, statuses, statusErr, err := s.fetch(ctx)
	if err != nil {
		s.finish(res, ResultFailed, err)
		log.Error("onu sync failed", "run_id", res.RunID, "stage", "fetch", "error", err)
		return res, fmt.Errorf("fetching onu details: %w", err)
	}
	res.Fetched = len(details)

	live := onu.NewStatusMap(statuses)
	records := onu.ApplyStatuses(details, live)

	saved, err := s.store.ReplaceAll(ctx, records)
	res.Saved = saved
	if err != nil {
		s.finish(res, ResultFailed, err)
		log.Error("onu sync failed", "run_id", res.RunID, "stage", "store", "saved", saved, "error", err)
		return res, fmt.Errorf("storing snapshot: %w", err)
	}

	if err := s.registry.RefreshCache(ctx); err != nil {
		s.finish(res, ResultFailed, err)
		log.Error("onu sync failed", "run_id", res.RunID, "stage", "cache", "error", err)
		return res, fmt.Errorf("refreshing registry: %w", err)
	}
	s.registry.SetStatuses(live)
	res.Statuses = len(live)

	list, err := s.registry.List(ctx)
	if err != nil {
		log.Warn("reading registry after sync", "run_id", res.RunID, "error", err)
	}
	res.Counts = onu.CountStatuses(list, nil)

	result := ResultOK
	if statusErr != nil {
		result = ResultPartial
		log.Warn("onu statuses unavailable, stored statuses kept", "run_id", res.RunID, "error", statusErr)
	}
	s.finish(res, result, statusErr)

	s.publish(res, list)
	s.record(res, list)

	log.Info("onu sync complete",
		"run_id", res.RunID,
		"result", res.Result,
		"fetched", res.Fetched,
		"saved", res.Saved,
		"statuses", res.Statuses,
		"duration", res.Duration,
	)
	return res, nil
}

// RefreshStatuses fetches live statuses only and overlays them on the
// registry. The stored snapshot is not touched.
func (s *Syncer) RefreshStatuses(ctx context.Context) (int, error) {
	if !s.runMu.TryLock() {
		return 0, ErrSyncInProgress
	}
	defer s.runMu.Unlock()

	statuses, err := s.source.ListOnuStatuses(ctx, smartolt.Filter{})
	if err != nil {
		return 0, fmt.Errorf("fetching onu statuses: %w", err)
	}

	live := onu.NewStatusMap(statuses)
	s.registry.SetStatuses(live)
	s.logger.Debug("onu statuses refreshed", "count", len(live))
	return len(live), nil
}

// RefreshLocations fetches GPS coordinates and replaces the stored set.
// It returns ErrLocationsDisabled when no location source is wired.
func (s *Syncer) RefreshLocations(ctx context.Context) (int, error) {
	if s.locations == nil {
		return 0, ErrLocationsDisabled
	}

	locations, err := s.locations.ListOnuGPS(ctx, smartolt.Filter{})
	if err != nil {
		return 0, fmt.Errorf("fetching onu locations: %w", err)
	}

	saved, err := s.locationStore.ReplaceLocations(ctx, locations)
	if err != nil {
		return 0, fmt.Errorf("storing onu locations: %w", err)
	}
	s.logger.Info("onu locations refreshed", "fetched", len(locations), "saved", saved)
	return saved, nil
}

// Run syncs immediately and then on every tick until ctx is cancelled.
// A tick that finds the stored snapshot still fresh refreshes statuses
// only. Run returns nil on cancellation.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}

	s.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Last returns the most recent completed cycle, or nil.
func (s *Syncer) Last() *Result {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	if s.last == nil {
		return nil
	}
	cpy := *s.last
	return &cpy
}

func (s *Syncer) tick(ctx context.Context) {
	defer s.tickLocations(ctx)

	fresh, err := s.store.IsFresh(ctx, s.now(), s.maxAge)
	if err != nil {
		s.logger.Warn("checking snapshot age", "error", err)
	}

	if fresh {
		if _, err := s.RefreshStatuses(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("onu status refresh failed", "error", err)
		}
		return
	}

	// Other failures are logged inside SyncOnce.
	if _, err := s.SyncOnce(ctx); errors.Is(err, ErrSyncInProgress) {
		s.logger.Debug("sync tick skipped, cycle already running")
	}
}

// tickLocations refetches coordinates once the stored set has expired.
func (s *Syncer) tickLocations(ctx context.Context) {
	if s.locations == nil {
		return
	}

	fresh, err := s.locationStore.LocationsFresh(ctx, s.now(), s.locationMaxAge)
	if err != nil {
		s.logger.Warn("checking location age", "error", err)
	}
	if fresh {
		return
	}

	if _, err := s.RefreshLocations(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("onu location refresh failed", "error", err)
	}
}

// fetch runs both upstream calls concurrently. A status failure is
// returned separately and does not cancel the details call.
func (s *Syncer) fetch(ctx context.Context) (details []onu.Onu, statuses []onu.LiveStatus, statusErr, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		details, err = s.source.ListOnuDetails(gctx, smartolt.Filter{})
		return err
	})
	g.Go(func() error {
		statuses, statusErr = s.source.ListOnuStatuses(gctx, smartolt.Filter{})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return details, statuses, statusErr, nil
}

func (s *Syncer) finish(res *Result, result string, err error) {
	res.Result = result
	res.Duration = s.now().Sub(res.StartedAt)
	res.DurationMS = res.Duration.Milliseconds()
	if err != nil {
		res.Error = err.Error()
	}

	s.lastMu.Lock()
	cpy := *res
	s.last = &cpy
	s.lastMu.Unlock()

	if result == ResultFailed && s.metrics != nil {
		s.metrics.WriteSyncRun(result, res.Saved, 0, res.Duration, res.StartedAt)
	}
}

// areaCounts tallies list for every canonical service area.
func areaCounts(list []onu.Onu) map[string]onu.Counts {
	out := make(map[string]onu.Counts)
	for _, area := range zone.AllZones() {
		var inArea []onu.Onu
		for i := range list {
			if zone.IsOnuInZone(list[i].ZoneName(), area) {
				inArea = append(inArea, list[i])
			}
		}
		out[area] = onu.CountStatuses(inArea, nil)
	}
	return out
}

func (s *Syncer) publish(res *Result, list []onu.Onu) {
	if s.publisher == nil || !s.publisher.IsConnected() {
		return
	}

	topics := mqtt.Topics{}
	if err := s.publishJSON(topics.InventorySnapshot(), res); err != nil {
		s.logger.Warn("publishing snapshot event", "run_id", res.RunID, "error", err)
	}
	for area, counts := range areaCounts(list) {
		if err := s.publishJSON(topics.ZoneCounts(area), counts); err != nil {
			s.logger.Warn("publishing zone counts", "area", area, "error", err)
		}
	}
}

func (s *Syncer) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.publisher.Publish(topic, payload, 1, true)
}

func (s *Syncer) record(res *Result, list []onu.Onu) {
	if s.metrics == nil {
		return
	}

	for area, c := range areaCounts(list) {
		s.metrics.WriteZoneCounts(area, countFields(c), res.StartedAt)
	}
	s.metrics.WriteSyncRun(res.Result, res.Saved, res.Statuses, res.Duration, res.StartedAt)
}

func countFields(c onu.Counts) map[string]int {
	return map[string]int{
		"online":     c.Online,
		"los":        c.LOS,
		"offline":    c.Offline,
		"power_fail": c.PowerFail,
	}
}
