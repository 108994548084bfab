package source

import "errors"

// Adapter registration errors.
var (
	// ErrUnavailable means the underlying signal source cannot operate.
	ErrUnavailable = errors.New("signal source unavailable")
)
