package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePowerEvent records the outcome of a device power operation.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Unique identifier for the device
//   - kind: Device kind (e.g., "smartwatch", "embedded")
//   - action: "power_on" or "power_off"
//   - success: Whether the operation succeeded
//
// Example:
//
//	client.WritePowerEvent("42", "smartwatch", "power_on", true)
func (c *Client) WritePowerEvent(deviceID, kind, action string, success bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"power_events",
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
			"action":    action,
		},
		map[string]interface{}{
			"success": success,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBatteryLevel records a smartwatch battery percentage.
//
// Used for tracking battery drain over time and spotting devices
// that are about to run flat.
//
// Parameters:
//   - deviceID: Device identifier
//   - percent: Battery percentage (0-100)
func (c *Client) WriteBatteryLevel(deviceID string, percent int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"battery",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"percent": percent,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteInventoryCount records the current inventory size.
//
// Parameters:
//   - driver: The storage driver in use ("sqlite" or "file")
//   - count: Number of devices in the inventory
func (c *Client) WriteInventoryCount(driver string, count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"inventory",
		map[string]string{
			"driver": driver,
		},
		map[string]interface{}{
			"device_count": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "inventory-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
