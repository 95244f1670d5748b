package inventory

import "errors"

var (
	// ErrOnuNotFound is returned when no ONU has the requested serial number.
	ErrOnuNotFound = errors.New("inventory: onu not found")

	// ErrNoSnapshot is returned when no snapshot has been stored yet.
	ErrNoSnapshot = errors.New("inventory: no snapshot stored")

	// ErrNoLocations is returned when no GPS fetch has been stored yet.
	ErrNoLocations = errors.New("inventory: no locations stored")
)
