package influxdb

import "errors"

// Sentinel errors for metric writes. Callers match with errors.Is.
var (
	// ErrNotConnected means the client has no live server connection.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed means the startup ping did not succeed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed wraps synchronous write failures. Batched writes report
	// their failures through the SetOnError callback instead.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled means the influxdb config section is switched off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
