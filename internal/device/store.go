package device

import (
	"fmt"
	"sync"
)

// StoreCapacity is the maximum number of devices the in-memory store holds.
const StoreCapacity = 15

// StatusNotifier receives human-readable status messages from store
// operations (device added, removed, not found). It is an observability
// hook, not part of the functional contract.
type StatusNotifier interface {
	Status(msg string)
}

// noopStatus discards all status messages.
type noopStatus struct{}

func (noopStatus) Status(string) {}

// Store is the bounded in-memory device inventory used by the flat-file
// deployment variant. All operations are guarded by a single mutex; the
// store exclusively owns its device instances and hands out copies.
type Store struct {
	mu      sync.Mutex
	devices []*Device
	codec   *Codec
	path    string
	status  StatusNotifier
	logger  Logger
}

// NewStore creates an empty store backed by the given codec and file path.
func NewStore(codec *Codec, path string) *Store {
	return &Store{
		codec:  codec,
		path:   path,
		status: noopStatus{},
		logger: noopLogger{},
	}
}

// LoadStore creates a store and fills it from the backing file via the
// codec. Devices beyond the capacity are dropped with a warning.
func LoadStore(codec *Codec, path string) (*Store, error) {
	s := NewStore(codec, path)

	devices, err := codec.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading device store: %w", err)
	}
	if len(devices) > StoreCapacity {
		s.logger.Warn("device file exceeds store capacity, truncating",
			"count", len(devices), "capacity", StoreCapacity)
		devices = devices[:StoreCapacity]
	}
	s.devices = devices

	return s, nil
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
	s.codec.SetLogger(logger)
}

// SetStatusNotifier sets the status message hook.
func (s *Store) SetStatusNotifier(n StatusNotifier) {
	if n == nil {
		n = noopStatus{}
	}
	s.status = n
}

// Add appends a device. It returns false, leaving the store untouched,
// when the store already holds StoreCapacity devices.
func (s *Store) Add(d *Device) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.devices) >= StoreCapacity {
		s.status.Status(fmt.Sprintf("Device storage is full (%d devices)", StoreCapacity))
		return false
	}

	s.devices = append(s.devices, d.Copy())
	s.status.Status(fmt.Sprintf("Device %s added", d.ID))
	return true
}

// Find returns a copy of the device with the given id.
func (s *Store) Find(id string) (*Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.devices {
		if d.ID == id {
			return d.Copy(), true
		}
	}
	return nil, false
}

// Remove deletes the device with the given id, preserving order of the
// remaining devices. It returns false if the id is unknown.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.devices {
		if d.ID == id {
			s.devices = append(s.devices[:i], s.devices[i+1:]...)
			s.status.Status(fmt.Sprintf("Device %s removed", id))
			return true
		}
	}

	s.status.Status(fmt.Sprintf("Device %s not found", id))
	return false
}

// Edit overwrites the stored device's fields from other. It returns false
// when the id is unknown or the kinds do not match; a mismatch is reported
// as a plain failure at this layer, not an error.
func (s *Store) Edit(id string, other *Device) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.devices {
		if d.ID == id {
			if err := d.Edit(other); err != nil {
				s.status.Status(fmt.Sprintf("Device %s edit rejected: %v", id, err))
				return false
			}
			s.status.Status(fmt.Sprintf("Device %s edited", id))
			return true
		}
	}

	s.status.Status(fmt.Sprintf("Device %s not found", id))
	return false
}

// All returns copies of every stored device, in storage order.
func (s *Store) All() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Device, len(s.devices))
	for i, d := range s.devices {
		out[i] = d.Copy()
	}
	return out
}

// Len returns the number of stored devices.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}

// Save writes the full inventory to the backing file via the codec.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.codec.SaveFile(s.path, s.devices); err != nil {
		return fmt.Errorf("saving device store: %w", err)
	}
	return nil
}
