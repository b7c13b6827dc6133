package mqtt

import "fmt"

// Topic prefixes for the inventory service.
//
// All topics use the flat scheme: inventory/{category}/...
const (
	// TopicPrefix is the base for all inventory topics.
	TopicPrefix = "inventory"

	// TopicPrefixEvent is the base for lifecycle event topics.
	TopicPrefixEvent = "inventory/event"

	// TopicPrefixDevice is the base for per-device topics.
	TopicPrefixDevice = "inventory/device"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "inventory/system"
)

// Topics provides builders for inventory MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.Event("device.created")
//	// Returns: "inventory/event/device.created"
type Topics struct{}

// Event returns the topic for device lifecycle events.
//
// Event types: device.created, device.updated, device.deleted,
// device.power_changed, device.low_battery
//
// Example: inventory/event/device.created
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvent, eventType)
}

// DeviceState returns the canonical state topic for a device.
// Retained, so late subscribers see the last published state.
//
// Example: inventory/device/42/state
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixDevice, deviceID)
}

// SystemStatus returns the service status topic.
// Used for the Last Will and Testament and online announcements.
//
// Example: inventory/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllEvents returns a pattern matching all lifecycle events.
//
// Pattern: inventory/event/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+", TopicPrefixEvent)
}

// AllDeviceStates returns a pattern matching all device state topics.
//
// Pattern: inventory/device/+/state
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixDevice)
}

// AllTopics returns a pattern matching all inventory topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: inventory/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
