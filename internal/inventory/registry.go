package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kevann/nosteq-core/internal/onu"
	"github.com/kevann/nosteq-core/internal/technician"
)

// Logger defines the logging interface used by the Registry.
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

// Registry serves the ONU snapshot from memory.
//
// The cache is filled by RefreshCache, normally after every sync. Live
// statuses set with SetStatuses are overlaid on every read without
// touching the stored records.
//
// All public methods are thread-safe.
type Registry struct {
	store Store

	cacheMu  sync.RWMutex // Protects everything below
	onus     []onu.Onu    // Sorted by name, then SN
	bySN     map[string]int
	statuses onu.StatusMap
	loaded   bool

	logger Logger
}

// NewRegistry creates a registry over store. The cache starts empty.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:  store,
		bySN:   make(map[string]int),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads the snapshot from the store.
func (r *Registry) RefreshCache(ctx context.Context) error {
	onus, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("loading onus: %w", err)
	}
	sortByName(onus)

	bySN := make(map[string]int, len(onus))
	for i := range onus {
		bySN[onus[i].SN] = i
	}

	r.cacheMu.Lock()
	r.onus = onus
	r.bySN = bySN
	r.loaded = true
	r.cacheMu.Unlock()

	r.logger.Info("onu cache refreshed", "count", len(onus))
	return nil
}

// List returns every ONU sorted by name with live statuses applied.
// The result is a copy; callers can safely modify it.
func (r *Registry) List(ctx context.Context) ([]onu.Onu, error) {
	r.cacheMu.RLock()
	if r.loaded {
		out := r.snapshotLocked()
		r.cacheMu.RUnlock()
		return out, nil
	}
	statuses := r.statuses
	r.cacheMu.RUnlock()

	onus, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByName(onus)
	return onu.ApplyStatuses(onus, statuses), nil
}

// GetBySN returns one ONU with its live status applied.
// Returns ErrOnuNotFound if the serial number is unknown.
func (r *Registry) GetBySN(ctx context.Context, sn string) (*onu.Onu, error) {
	r.cacheMu.RLock()
	loaded := r.loaded
	idx, ok := r.bySN[sn]
	var found *onu.Onu
	if ok {
		found = r.onus[idx].Clone()
	}
	live, hasLive := r.statuses[sn]
	r.cacheMu.RUnlock()

	if !ok {
		if loaded {
			return nil, ErrOnuNotFound
		}
		stored, err := r.store.GetBySN(ctx, sn)
		if err != nil {
			return nil, err
		}
		found = stored
	}

	if hasLive && live.Status != "" {
		found.Status = live.Status
	}
	return found, nil
}

// ForTechnician returns the ONUs visible to profile, sorted by name.
// Technicians see only their service area; admins and a nil profile see
// everything.
func (r *Registry) ForTechnician(ctx context.Context, profile *technician.Profile) ([]onu.Onu, error) {
	onus, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return onu.FilterForTechnician(onus, profile), nil
}

// Counts tallies the statuses of the ONUs visible to profile.
func (r *Registry) Counts(ctx context.Context, profile *technician.Profile) (onu.Counts, error) {
	onus, err := r.ForTechnician(ctx, profile)
	if err != nil {
		return onu.Counts{}, err
	}
	return onu.CountStatuses(onus, nil), nil
}

// SetStatuses replaces the live status overlay.
func (r *Registry) SetStatuses(statuses onu.StatusMap) {
	cpy := make(onu.StatusMap, len(statuses))
	for sn, s := range statuses {
		cpy[sn] = s
	}

	r.cacheMu.Lock()
	r.statuses = cpy
	r.cacheMu.Unlock()

	r.logger.Debug("onu live statuses updated", "count", len(cpy))
}

// Count returns the number of cached ONUs.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.onus)
}

// snapshotLocked copies the cache with statuses applied. Caller holds cacheMu.
func (r *Registry) snapshotLocked() []onu.Onu {
	out := onu.ApplyStatuses(r.onus, r.statuses)
	for i := range out {
		if out[i].ServicePorts != nil {
			out[i].ServicePorts = append([]onu.ServicePort(nil), out[i].ServicePorts...)
		}
	}
	return out
}

func sortByName(onus []onu.Onu) {
	sort.SliceStable(onus, func(i, j int) bool {
		if onus[i].Name != onus[j].Name {
			return onus[i].Name < onus[j].Name
		}
		return onus[i].SN < onus[j].SN
	})
}
