package smartolt

import "errors"

var (
	// ErrAPIFailure is returned when the API answers with status=false.
	// The wrapping error carries the upstream message.
	ErrAPIFailure = errors.New("smartolt: api reported failure")

	// ErrHTTPStatus is returned for non-2xx responses.
	ErrHTTPStatus = errors.New("smartolt: unexpected http status")

	// ErrDecode is returned when the response body is not the expected JSON.
	ErrDecode = errors.New("smartolt: malformed response")

	// ErrNotConfigured is returned by New when the base URL or key is empty.
	ErrNotConfigured = errors.New("smartolt: base url and api key are required")
)
