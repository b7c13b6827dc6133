package device

import (
	"context"
	"fmt"
)

// FileRepository adapts the in-memory Store to the Repository interface for
// the flat-file deployment variant. Every mutation is flushed to the
// backing file so the inventory survives a restart.
//
// Version tokens do not exist in this mode: Create and Update leave
// Version at zero and Update accepts any token.
type FileRepository struct {
	store *Store
	codec *Codec
}

// NewFileRepository creates a repository over an existing store and codec.
func NewFileRepository(store *Store, codec *Codec) *FileRepository {
	return &FileRepository{store: store, codec: codec}
}

// Store exposes the underlying in-memory store (used by the save endpoint).
func (r *FileRepository) Store() *Store {
	return r.store
}

// GetAll returns the base fields of every stored device.
func (r *FileRepository) GetAll(_ context.Context) ([]Device, error) {
	all := r.store.All()
	devices := make([]Device, len(all))
	for i, d := range all {
		devices[i] = Device{ID: d.ID, Name: d.Name, Active: d.Active}
	}
	return devices, nil
}

// GetByID returns the device with the given id, details included.
func (r *FileRepository) GetByID(_ context.Context, id string) (*Device, error) {
	d, ok := r.store.Find(id)
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Create adds a device to the store and flushes the file. An empty id is
// filled from the codec's sequential counter. Returns ErrStoreFull at the
// capacity limit.
func (r *FileRepository) Create(_ context.Context, d *Device) error {
	if d.ID == "" {
		d.ID = r.codec.NextID()
	}
	if err := Validate(d); err != nil {
		return err
	}
	if d.Details == nil {
		return fmt.Errorf("%w: details are required", ErrInvalidKind)
	}
	if _, ok := r.store.Find(d.ID); ok {
		return ErrExists
	}

	if !r.store.Add(d) {
		return ErrStoreFull
	}

	return r.store.Save()
}

// Update edits the stored device in place and flushes the file. The kinds
// must match; version tokens are not checked in this mode.
func (r *FileRepository) Update(_ context.Context, d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}

	if _, ok := r.store.Find(d.ID); !ok {
		return ErrNotFound
	}
	if !r.store.Edit(d.ID, d) {
		return ErrTypeMismatch
	}

	return r.store.Save()
}

// Delete removes the device from the store and flushes the file.
func (r *FileRepository) Delete(_ context.Context, id string) error {
	if !r.store.Remove(id) {
		return ErrNotFound
	}
	return r.store.Save()
}
