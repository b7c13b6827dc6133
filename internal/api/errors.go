package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jooppDS/inventory-core/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeInternal   = "internal_error"
	ErrCodeValidation = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDeviceError maps device package errors to HTTP responses.
//
// Expected outcomes (validation failures, empty battery, missing OS) map to
// 400, missing devices to 404, and version conflicts or duplicate ids to 409.
// Anything unrecognised is a storage fault and maps to 500.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrNotFound):
		writeNotFound(w, "device not found")
	case errors.Is(err, device.ErrConcurrencyConflict):
		writeConflict(w, "device was modified by another request; re-fetch and retry")
	case errors.Is(err, device.ErrExists):
		writeConflict(w, "device already exists")
	case errors.Is(err, device.ErrInvalidDevice),
		errors.Is(err, device.ErrInvalidKind),
		errors.Is(err, device.ErrInvalidIP),
		errors.Is(err, device.ErrInvalidNetwork),
		errors.Is(err, device.ErrInvalidPower),
		errors.Is(err, device.ErrMissingVersion),
		errors.Is(err, device.ErrTypeMismatch),
		errors.Is(err, device.ErrStoreFull),
		errors.Is(err, device.ErrEmptyBattery),
		errors.Is(err, device.ErrEmptySystem):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		writeInternalError(w, "storage operation failed")
	}
}
