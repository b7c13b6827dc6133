package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jooppDS/inventory-core/internal/infrastructure/config"
	"github.com/jooppDS/inventory-core/internal/infrastructure/logging"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	return NewHub(config.WebSocketConfig{MaxMessageSize: 4096, PingInterval: 30, PongTimeout: 60}, logger)
}

// newTestClient builds a client without a network connection; broadcast and
// subscription logic only touch the send channel.
func newTestClient(hub *Hub) *WSClient {
	return &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub)

	hub.Register(client)
	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}

	hub.Unregister(client)
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}

	// A second unregister must not close the channel twice
	hub.Unregister(client)
}

func TestHub_Broadcast_OnlySubscribed(t *testing.T) {
	hub := newTestHub(t)

	subscribed := newTestClient(hub)
	subscribed.subscriptions[EventDeviceCreated] = struct{}{}
	other := newTestClient(hub)

	hub.Register(subscribed)
	hub.Register(other)

	hub.Broadcast(EventDeviceCreated, map[string]string{"id": "dev-1"})

	select {
	case data := <-subscribed.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshalling broadcast: %v", err)
		}
		if msg.Type != WSTypeEvent {
			t.Errorf("type = %q, want %q", msg.Type, WSTypeEvent)
		}
		if msg.EventType != EventDeviceCreated {
			t.Errorf("event_type = %q, want %q", msg.EventType, EventDeviceCreated)
		}
	case <-time.After(time.Second):
		t.Fatal("subscribed client received nothing")
	}

	select {
	case <-other.send:
		t.Error("unsubscribed client received a broadcast")
	default:
	}
}

func TestWSClient_HandleSubscribe(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub)
	hub.Register(client)

	msg := `{"type":"subscribe","id":"req-1","payload":{"channels":["device.created","device.deleted"]}}`
	client.handleMessage([]byte(msg))

	if !client.isSubscribed(EventDeviceCreated) {
		t.Error("client not subscribed to device.created")
	}
	if !client.isSubscribed(EventDeviceDeleted) {
		t.Error("client not subscribed to device.deleted")
	}
	if client.isSubscribed(EventDeviceUpdated) {
		t.Error("client subscribed to channel it never asked for")
	}

	select {
	case data := <-client.send:
		var resp WSMessage
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Type != WSTypeResponse || resp.ID != "req-1" {
			t.Errorf("response = %+v", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("no subscribe acknowledgement")
	}
}

func TestWSClient_HandleUnsubscribe(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub)
	client.subscriptions[EventDeviceCreated] = struct{}{}
	hub.Register(client)

	msg := `{"type":"unsubscribe","payload":{"channels":["device.created"]}}`
	client.handleMessage([]byte(msg))

	if client.isSubscribed(EventDeviceCreated) {
		t.Error("client still subscribed after unsubscribe")
	}
}

func TestWSClient_HandleMessage_Invalid(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub)

	client.handleMessage([]byte("not json"))

	select {
	case data := <-client.send:
		var resp WSMessage
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Type != WSTypeError {
			t.Errorf("type = %q, want %q", resp.Type, WSTypeError)
		}
	case <-time.After(time.Second):
		t.Fatal("no error response")
	}
}

func TestWSClient_TrySend_ClosedChannel(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub)
	hub.Register(client)
	hub.Unregister(client) // closes the send channel

	// Must not panic
	client.trySend([]byte("late message"))
}
