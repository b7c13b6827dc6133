package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jooppDS/inventory-core/internal/device"
)

// deviceResponse is the JSON representation of a device returned by the API.
// Kind-specific fields are flattened alongside the base fields; only the
// fields for the device's own kind are populated.
type deviceResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Version  int64  `json:"version,omitempty"`

	DeviceType string `json:"deviceType"`

	// PersonalComputer
	OS string `json:"os,omitempty"`

	// EmbeddedDevice
	IP          string `json:"ip,omitempty"`
	NetworkName string `json:"network_name,omitempty"`

	// Smartwatch. Pointer because 0% is a meaningful battery level.
	Power *int `json:"power,omitempty"`
}

// deviceRequest is the structured JSON request body for create and update.
// The deviceType discriminator selects which kind-specific fields apply.
type deviceRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
	Version     int64  `json:"version"`
	DeviceType  string `json:"deviceType"`
	OS          string `json:"os"`
	IP          string `json:"ip"`
	NetworkName string `json:"network_name"`
	Power       *int   `json:"power"`
}

// toResponse converts a domain device to its API representation.
func toResponse(d *device.Device) deviceResponse {
	resp := deviceResponse{
		ID:       d.ID,
		Name:     d.Name,
		IsActive: d.Active,
		Version:  d.Version,
	}
	switch det := d.Details.(type) {
	case *device.PersonalComputer:
		resp.DeviceType = string(device.KindPersonalComputer)
		resp.OS = det.OS
	case *device.EmbeddedDevice:
		resp.DeviceType = string(device.KindEmbeddedDevice)
		resp.IP = det.IP
		resp.NetworkName = det.NetworkName
	case *device.Smartwatch:
		resp.DeviceType = string(device.KindSmartwatch)
		power := det.Power
		resp.Power = &power
	}
	return resp
}

// toDevice builds an unvalidated domain device from a structured request.
// Storage-level validation runs in the repository, so malformed fields
// surface as validation errors there.
func (req *deviceRequest) toDevice() (*device.Device, error) {
	kind, err := device.ParseKind(req.DeviceType)
	if err != nil {
		return nil, err
	}

	var details device.Details
	switch kind {
	case device.KindPersonalComputer:
		details = &device.PersonalComputer{OS: req.OS}
	case device.KindEmbeddedDevice:
		details = &device.EmbeddedDevice{IP: req.IP, NetworkName: req.NetworkName}
	case device.KindSmartwatch:
		power := 0
		if req.Power != nil {
			power = device.ClampPower(*req.Power)
		}
		details = &device.Smartwatch{Power: power}
	}

	return &device.Device{
		ID:      req.ID,
		Name:    req.Name,
		Active:  req.IsActive,
		Version: req.Version,
		Details: details,
	}, nil
}

// kindTags maps API discriminators to the flat-file record tags understood
// by the codec. Used for the plain-text request form.
var kindTags = map[device.Kind]string{
	device.KindPersonalComputer: "P",
	device.KindEmbeddedDevice:   "ED",
	device.KindSmartwatch:       "SW",
}

// decodeDevice reads a device from the request body. Content negotiation:
// text/plain bodies use the two-line flat-file form (device type on the
// first line, comma-separated fields on the second); everything else is
// decoded as structured JSON.
func decodeDevice(r *http.Request) (*device.Device, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/plain") {
		return decodePlainTextDevice(r.Body)
	}
	return decodeJSONDevice(r.Body)
}

func decodeJSONDevice(body io.Reader) (*device.Device, error) {
	var req deviceRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return req.toDevice()
}

// decodePlainTextDevice parses the two-line plain-text form by prepending
// the record tag and running the line through the flat-file codec, so the
// field layout stays identical to the persistence format. The codec is a
// throwaway: its id counter is discarded with it, and the parsed id is
// blanked so storage assigns the real one.
func decodePlainTextDevice(body io.Reader) (*device.Device, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	lines := strings.SplitN(strings.TrimSpace(string(raw)), "\n", 2)
	if len(lines) != 2 {
		return nil, errors.New("plain-text body requires two lines: device type, then fields")
	}

	kind, err := device.ParseKind(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, err
	}

	record := kindTags[kind] + "," + strings.TrimSpace(lines[1])
	devices, err := device.NewCodec().Parse(strings.NewReader(record))
	if err != nil {
		return nil, err
	}
	if len(devices) != 1 {
		return nil, errors.New("plain-text body did not parse as a single device")
	}

	d := devices[0]
	d.ID = "" // codec assigns sequence ids; storage decides the real id
	return d, nil
}

// driverName reports which storage backend is serving requests, for the
// inventory size metric.
func (s *Server) driverName() string {
	if s.store != nil {
		return "file"
	}
	return "sqlite"
}

// recordInventorySize writes the current device count to InfluxDB.
func (s *Server) recordInventorySize(r *http.Request) {
	if s.influx == nil {
		return
	}
	devices, err := s.repo.GetAll(r.Context())
	if err != nil {
		return
	}
	s.influx.WriteInventoryCount(s.driverName(), len(devices))
}

// handleListDevices returns all devices in the inventory.
// GET /api/devices
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.repo.GetAll(r.Context())
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	responses := make([]deviceResponse, 0, len(devices))
	for i := range devices {
		responses = append(responses, toResponse(&devices[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": responses,
		"count":   len(responses),
	})
}

// handleGetDevice returns a single device by id.
// GET /api/devices/{id}
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(d))
}

// handleCreateDevice adds a device to the inventory.
// POST /api/devices
//
// Accepts structured JSON or the plain-text two-line form. A missing id is
// filled in by the server (relational mode) or by the codec sequence (file
// mode).
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDevice(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// File mode assigns sequence ids inside the repository; relational mode
	// generates one here.
	if s.store == nil && d.ID == "" {
		d.ID = device.GenerateID()
	}
	d.Version = 0 // versions are storage-assigned, never client-supplied on create

	if err := s.repo.Create(r.Context(), d); err != nil {
		writeDeviceError(w, err)
		return
	}

	resp := toResponse(d)
	s.publishEvent(EventDeviceCreated, resp)
	s.publishDeviceState(d)
	s.recordInventorySize(r)

	s.logger.Info("device created", "device_id", d.ID, "kind", d.Kind())
	writeJSON(w, http.StatusCreated, resp)
}

// handleUpdateDevice replaces a device's fields.
// PUT /api/devices/{id}
//
// The id always comes from the URL; any id in the body is ignored. In
// relational mode the body must carry the version token from the last read,
// and a stale token yields 409.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDevice(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	d.ID = chi.URLParam(r, "id")

	if err := s.repo.Update(r.Context(), d); err != nil {
		writeDeviceError(w, err)
		return
	}

	resp := toResponse(d)
	s.publishEvent(EventDeviceUpdated, resp)
	s.publishDeviceState(d)

	s.logger.Info("device updated", "device_id", d.ID)
	writeJSON(w, http.StatusOK, resp)
}

// handleDeleteDevice removes a device from the inventory.
// DELETE /api/devices/{id}
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.repo.Delete(r.Context(), id); err != nil {
		writeDeviceError(w, err)
		return
	}

	s.publishEvent(EventDeviceDeleted, map[string]string{"id": id})
	s.clearDeviceState(id)
	s.recordInventorySize(r)

	s.logger.Info("device deleted", "device_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleDisplayDevice returns the human-readable multi-line description of
// a device as plain text.
// GET /api/devices/{id}/display
func (s *Server) handleDisplayDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	io.WriteString(w, d.DisplayString())
}

// handlePowerOn attempts to activate a device.
// POST /api/devices/{id}/power-on
//
// Kind-specific outcomes: a PC without an OS and a smartwatch below the
// battery threshold fail with 400; an embedded device that cannot reach its
// network stays inactive but the request still succeeds. The resulting state
// is persisted and returned.
func (s *Server) handlePowerOn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	if err := d.PowerOn(s.notifier()); err != nil {
		if s.influx != nil {
			s.influx.WritePowerEvent(d.ID, string(d.Kind()), "power_on", false)
		}
		writeDeviceError(w, err)
		return
	}

	if err := s.repo.Update(r.Context(), d); err != nil {
		writeDeviceError(w, err)
		return
	}

	resp := toResponse(d)
	s.publishEvent(EventDevicePowerChanged, resp)
	s.publishDeviceState(d)
	if s.influx != nil {
		s.influx.WritePowerEvent(d.ID, string(d.Kind()), "power_on", d.Active)
		if sw, ok := d.Details.(*device.Smartwatch); ok {
			s.influx.WriteBatteryLevel(d.ID, sw.Power)
		}
	}

	s.logger.Info("device power on", "device_id", d.ID, "active", d.Active)
	writeJSON(w, http.StatusOK, resp)
}

// handlePowerOff deactivates a device. Powering off always succeeds.
// POST /api/devices/{id}/power-off
func (s *Server) handlePowerOff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	d.PowerOff()

	if err := s.repo.Update(r.Context(), d); err != nil {
		writeDeviceError(w, err)
		return
	}

	resp := toResponse(d)
	s.publishEvent(EventDevicePowerChanged, resp)
	s.publishDeviceState(d)
	if s.influx != nil {
		s.influx.WritePowerEvent(d.ID, string(d.Kind()), "power_off", true)
	}

	s.logger.Info("device power off", "device_id", d.ID)
	writeJSON(w, http.StatusOK, resp)
}

// handleSaveDevices flushes the in-memory store to its backing file.
// POST /api/devices/save
//
// Only available in file-storage mode; relational mode persists on every
// write and has nothing to flush.
func (s *Server) handleSaveDevices(w http.ResponseWriter, _ *http.Request) {
	if s.store == nil {
		writeBadRequest(w, "explicit save is only available with file storage")
		return
	}

	if err := s.store.Save(); err != nil {
		s.logger.Error("saving device store failed", "error", err)
		writeInternalError(w, "failed to save device store")
		return
	}

	s.logger.Info("device store saved", "count", s.store.Len())
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "saved",
		"count":  s.store.Len(),
	})
}
