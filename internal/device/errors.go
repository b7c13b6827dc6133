package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device ID does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrExists is returned when creating a device with an ID that already exists.
	ErrExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when device validation fails (blank id or name).
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidKind is returned when a device kind discriminator is not recognised.
	ErrInvalidKind = errors.New("device: invalid kind")

	// ErrInvalidIP is returned when an embedded device IP fails pattern validation.
	ErrInvalidIP = errors.New("device: invalid ip address")

	// ErrInvalidNetwork is returned when an embedded device network name is
	// not a recognised company network.
	ErrInvalidNetwork = errors.New("device: invalid network name")

	// ErrInvalidPower is returned when a smartwatch battery value is out of range.
	ErrInvalidPower = errors.New("device: invalid power level")

	// ErrEmptyBattery is returned when a smartwatch battery is too low to power on.
	ErrEmptyBattery = errors.New("device: battery too low to power on")

	// ErrEmptySystem is returned when a personal computer has no operating
	// system installed and cannot power on.
	ErrEmptySystem = errors.New("device: no operating system installed")

	// ErrTypeMismatch is returned when an edit supplies a device of a
	// different kind than the target.
	ErrTypeMismatch = errors.New("device: kind mismatch")

	// ErrStoreFull is returned when the in-memory store is at capacity.
	ErrStoreFull = errors.New("device: store is full")

	// ErrMissingVersion is returned when an update omits the concurrency token.
	ErrMissingVersion = errors.New("device: missing version token")

	// ErrConcurrencyConflict is returned when an update carries a stale
	// version token. The caller must re-fetch and retry with a fresh token.
	ErrConcurrencyConflict = errors.New("device: version conflict")
)
