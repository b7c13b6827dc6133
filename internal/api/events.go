package api

import (
	"encoding/json"

	"github.com/jooppDS/inventory-core/internal/device"
	"github.com/jooppDS/inventory-core/internal/infrastructure/mqtt"
)

// Lifecycle event types. Used as WebSocket subscription channels and as the
// final segment of the MQTT event topic.
const (
	EventDeviceCreated      = "device.created"
	EventDeviceUpdated      = "device.updated"
	EventDeviceDeleted      = "device.deleted"
	EventDevicePowerChanged = "device.power_changed"
	EventDeviceLowBattery   = "device.low_battery"
)

// eventQoS is the MQTT QoS level for lifecycle events. At-least-once:
// consumers key on device id, so duplicate delivery is harmless.
const eventQoS = 1

// publishEvent broadcasts a lifecycle event to WebSocket subscribers and,
// when a broker is connected, publishes it to the matching MQTT topic.
// Publishing is best-effort; a broker outage never fails the HTTP request.
func (s *Server) publishEvent(eventType string, payload any) {
	if s.hub != nil {
		s.hub.Broadcast(eventType, payload)
	}

	if s.mqtt == nil || !s.mqtt.IsConnected() {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshalling event payload failed", "event", eventType, "error", err)
		return
	}

	topic := mqtt.Topics{}.Event(eventType)
	if err := s.mqtt.Publish(topic, data, eventQoS, false); err != nil {
		s.logger.Warn("publishing event failed", "topic", topic, "error", err)
	}
}

// publishDeviceState publishes the device's current representation to its
// retained per-device state topic. Retained, so a subscriber coming up
// after the fact still sees current inventory state without replaying the
// event stream. Best-effort, like publishEvent.
func (s *Server) publishDeviceState(d *device.Device) {
	if s.mqtt == nil || !s.mqtt.IsConnected() {
		return
	}

	data, err := json.Marshal(toResponse(d))
	if err != nil {
		s.logger.Error("marshalling device state failed", "device_id", d.ID, "error", err)
		return
	}

	topic := mqtt.Topics{}.DeviceState(d.ID)
	if err := s.mqtt.PublishRetained(topic, data); err != nil {
		s.logger.Warn("publishing device state failed", "topic", topic, "error", err)
	}
}

// clearDeviceState retracts the retained state of a deleted device. An empty
// retained payload tells the broker to drop the stored message.
func (s *Server) clearDeviceState(id string) {
	if s.mqtt == nil || !s.mqtt.IsConnected() {
		return
	}

	topic := mqtt.Topics{}.DeviceState(id)
	if err := s.mqtt.PublishRetained(topic, nil); err != nil {
		s.logger.Warn("clearing device state failed", "topic", topic, "error", err)
	}
}

// notifier returns the low-battery notifier passed to device power-on
// attempts.
func (s *Server) notifier() device.Notifier {
	return &lowBatteryNotifier{server: s}
}

// lowBatteryNotifier relays low-battery notifications from smartwatch
// power-on attempts to the event channels.
type lowBatteryNotifier struct {
	server *Server
}

// LowBattery implements device.Notifier.
func (n *lowBatteryNotifier) LowBattery(d *device.Device, power int) {
	n.server.logger.Warn("smartwatch battery too low to power on",
		"device_id", d.ID, "power", power)

	n.server.publishEvent(EventDeviceLowBattery, map[string]any{
		"id":    d.ID,
		"name":  d.Name,
		"power": power,
	})

	if n.server.influx != nil {
		n.server.influx.WriteBatteryLevel(d.ID, power)
	}
}
