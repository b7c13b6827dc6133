package api

import (
	"net/http"
	"testing"

	"github.com/jooppDS/inventory-core/internal/device"
	"github.com/jooppDS/inventory-core/internal/infrastructure/mqtt"
)

// A broker client that lost its connection must never fail a request:
// events and retained state publishes degrade to no-ops.
func TestDeviceLifecycle_BrokerDisconnected(t *testing.T) {
	srv, handler := newTestServer(t)
	srv.mqtt = &mqtt.Client{}

	id := createSmartwatch(t, handler, "Gym Watch", 50)

	rec := doJSON(t, handler, http.MethodPost, "/api/devices/"+id+"/power-on", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("power-on status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/devices/"+id, deviceRequest{
		Name:       "Gym Watch v2",
		DeviceType: "smartwatch",
		Power:      intPtr(40),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/devices/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPublishDeviceState_NoBroker(t *testing.T) {
	srv, _ := newTestServer(t)

	d := &device.Device{
		ID:      "w1",
		Name:    "Gym Watch",
		Details: &device.Smartwatch{Power: 50},
	}

	// nil broker: both paths must be silent no-ops
	srv.publishDeviceState(d)
	srv.clearDeviceState(d.ID)
}

func intPtr(v int) *int {
	return &v
}
