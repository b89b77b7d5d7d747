package occupancy

import "errors"

// Domain-specific errors for occupancy event processing.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMalformedPayload is returned when a payload cannot be parsed as
	// an occupancy message: not JSON, missing the occupancy field, or the
	// field is not boolean-coercible. Such payloads are dropped and do
	// not affect the deduplication state.
	ErrMalformedPayload = errors.New("occupancy: malformed payload")
)
