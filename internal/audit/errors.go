package audit

import "errors"

// ErrInvalidEntry is returned by Create for an entry without an action or
// entity type.
var ErrInvalidEntry = errors.New("audit: action and entity type are required")
