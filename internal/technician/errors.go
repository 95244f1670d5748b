package technician

import "errors"

var (
	// ErrProfileNotFound is returned when no profile has the requested ID.
	ErrProfileNotFound = errors.New("technician: profile not found")

	// ErrProfileExists is returned when creating a profile whose ID is taken.
	ErrProfileExists = errors.New("technician: profile already exists")

	// ErrInvalidProfile is returned when validation fails.
	ErrInvalidProfile = errors.New("technician: invalid profile")

	// ErrUnknownServiceArea is returned when a service area is not in the catalog.
	ErrUnknownServiceArea = errors.New("technician: unknown service area")
)
