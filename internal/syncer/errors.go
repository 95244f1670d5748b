package syncer

import "errors"

var (
	// ErrSyncInProgress is returned when a cycle is already running.
	ErrSyncInProgress = errors.New("syncer: sync already in progress")

	// ErrInvalidConfig is returned by New for a missing dependency.
	ErrInvalidConfig = errors.New("syncer: invalid config")

	// ErrLocationsDisabled is returned by RefreshLocations when no location
	// source or store is wired.
	ErrLocationsDisabled = errors.New("syncer: locations not configured")
)
