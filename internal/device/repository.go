package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, flat file,
// mock) and enables unit testing without database dependencies.
type Repository interface {
	// GetAll retrieves the base fields of every device. Kind-specific
	// details are not hydrated.
	GetAll(ctx context.Context) ([]Device, error)

	// GetByID retrieves a device fully hydrated with its kind-specific
	// details. Returns ErrNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// Create inserts a new device with its kind-specific details.
	// Returns ErrExists if a device with the same ID already exists.
	// On success the device's Version holds the initial token.
	Create(ctx context.Context, d *Device) error

	// Update modifies an existing device. The device's Version must carry
	// the token from the last read; a stale token surfaces as
	// ErrConcurrencyConflict and nothing is persisted. On success the
	// device's Version holds the new token.
	Update(ctx context.Context, d *Device) error

	// Delete removes a device and its kind-specific record.
	// Returns ErrNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
//
// The schema is one base table plus one table per kind, 1:1 on device id,
// with ON DELETE CASCADE foreign keys so deleting the base row removes the
// kind row. The base table carries an integer version column used as the
// optimistic-concurrency token: updates compare-and-increment it in the
// WHERE clause, so a stale token affects zero rows.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with foreign keys
// enabled (the database wrapper's DSN takes care of that).
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetAll retrieves the base fields of every device, in name order.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]Device, error) {
	query := `
		SELECT id, name, is_active, version
		FROM devices
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanBase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// GetByID retrieves a device by its unique identifier. The kind tables are
// checked in a fixed order (personal computer, embedded device, smartwatch);
// the first match supplies the details. A base row with no kind row is
// returned as a bare device.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, is_active, version FROM devices WHERE id = ?", id)

	d, err := scanBase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}

	var os sql.NullString
	err = r.db.QueryRowContext(ctx,
		"SELECT os FROM personal_computers WHERE device_id = ?", id).Scan(&os)
	switch {
	case err == nil:
		d.Details = &PersonalComputer{OS: os.String}
		return d, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("querying personal computer row: %w", err)
	}

	var ip, network string
	err = r.db.QueryRowContext(ctx,
		"SELECT ip, network_name FROM embedded_devices WHERE device_id = ?", id).
		Scan(&ip, &network)
	switch {
	case err == nil:
		d.Details = &EmbeddedDevice{IP: ip, NetworkName: network}
		return d, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("querying embedded device row: %w", err)
	}

	var power int
	err = r.db.QueryRowContext(ctx,
		"SELECT power FROM smartwatches WHERE device_id = ?", id).Scan(&power)
	switch {
	case err == nil:
		d.Details = &Smartwatch{Power: power}
		return d, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("querying smartwatch row: %w", err)
	}

	return d, nil
}

// Create inserts a new device and its kind row in one transaction.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}
	if d.Details == nil {
		return fmt.Errorf("%w: details are required", ErrInvalidKind)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO devices (id, name, is_active, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, boolToInt(d.Active), initialVersion, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}

	switch det := d.Details.(type) {
	case *PersonalComputer:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO personal_computers (device_id, os) VALUES (?, ?)",
			d.ID, nullableString(det.OS))
	case *EmbeddedDevice:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO embedded_devices (device_id, ip, network_name) VALUES (?, ?, ?)",
			d.ID, det.IP, det.NetworkName)
	case *Smartwatch:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO smartwatches (device_id, power) VALUES (?, ?)",
			d.ID, det.Power)
	}
	if err != nil {
		return fmt.Errorf("inserting %s row: %w", d.Kind(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing device create: %w", err)
	}

	d.Version = initialVersion
	return nil
}

// initialVersion is the concurrency token assigned on create.
const initialVersion = 1

// Update modifies an existing device in one transaction. The base row
// update compares the stored version against the supplied token and
// increments it; zero rows affected means either a stale token or a
// missing device, distinguished by a follow-up existence check.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}
	if d.Version <= 0 {
		return ErrMissingVersion
	}
	if d.Details == nil {
		return fmt.Errorf("%w: details are required", ErrInvalidKind)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	result, err := tx.ExecContext(ctx, `
		UPDATE devices
		SET name = ?, is_active = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		d.Name, boolToInt(d.Active), now, d.ID, d.Version,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := existsTx(ctx, tx, d.ID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConcurrencyConflict
	}

	switch det := d.Details.(type) {
	case *PersonalComputer:
		result, err = tx.ExecContext(ctx,
			"UPDATE personal_computers SET os = ? WHERE device_id = ?",
			nullableString(det.OS), d.ID)
	case *EmbeddedDevice:
		result, err = tx.ExecContext(ctx,
			"UPDATE embedded_devices SET ip = ?, network_name = ? WHERE device_id = ?",
			det.IP, det.NetworkName, d.ID)
	case *Smartwatch:
		result, err = tx.ExecContext(ctx,
			"UPDATE smartwatches SET power = ? WHERE device_id = ?",
			det.Power, d.ID)
	}
	if err != nil {
		return fmt.Errorf("updating %s row: %w", d.Kind(), err)
	}

	// A base row without a matching kind row means the caller supplied the
	// wrong kind for this id; nothing is persisted.
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: stored device is not a %s", ErrTypeMismatch, d.Kind())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing device update: %w", err)
	}

	d.Version++
	return nil
}

// Delete removes a device. Existence is checked first so a missing id is
// reported as ErrNotFound without opening a transaction; the kind rows are
// removed by the schema's ON DELETE CASCADE.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE id = ?", id).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking device exists: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	result, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		// Raced with another deleter between the existence check and here.
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing device delete: %w", err)
	}
	return nil
}

// existsTx checks if a device with the given ID exists, within a transaction.
func existsTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking device exists: %w", err)
	}
	return count > 0, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBase scans the base columns into a Device.
func scanBase(scanner rowScanner) (*Device, error) {
	var d Device
	var active int
	if err := scanner.Scan(&d.ID, &d.Name, &active, &d.Version); err != nil {
		return nil, err
	}
	d.Active = active != 0
	return &d, nil
}

// nullableString returns a sql.NullString for optional string values.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
