// Package api implements the HTTP REST API and WebSocket server for the
// inventory service.
//
// This package provides:
//   - REST endpoints for device CRUD, power operations and display
//   - WebSocket hub for real-time device lifecycle broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API server sits between clients and the device repository. All reads
// and writes go through the device.Repository interface, so the same handler
// code serves both the relational (SQLite) and flat-file storage backends.
// Lifecycle events (created, updated, deleted, power changed) are broadcast
// to WebSocket subscribers and, when a broker is configured, published to
// MQTT.
//
// # Graceful Degradation
//
// The server operates without MQTT and InfluxDB — all endpoints work, only
// the external event publishing and activity metrics are skipped.
package api
