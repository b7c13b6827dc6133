// Package device implements the device inventory: the polymorphic device
// model, the flat-file codec, the bounded in-memory store and the
// relational repository.
//
// # Key Types
//
//   - Device: base identity (id, name, active, version) plus kind details
//   - Details: closed sum over PersonalComputer, EmbeddedDevice, Smartwatch
//   - Codec: flat-file parser/serialiser owning the sequential id counter
//   - Store: bounded (15 entries) mutex-guarded in-memory inventory
//   - Repository: persistence contract, implemented by SQLiteRepository
//     (relational, optimistic concurrency) and FileRepository (flat file)
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//
//	d, err := device.New(device.GenerateID(), "Office Watch", false,
//	    &device.Smartwatch{Power: 80})
//	if err != nil {
//	    return err
//	}
//	if err := repo.Create(ctx, d); err != nil {
//	    return err
//	}
//
//	// Optimistic concurrency: Version must round-trip unchanged.
//	d.Name = "Reception Watch"
//	if err := repo.Update(ctx, d); errors.Is(err, device.ErrConcurrencyConflict) {
//	    // re-fetch and retry with a fresh token
//	}
//
// # Thread Safety
//
// The Store is safe for concurrent use; the SQLiteRepository relies on the
// database's own locking and holds no in-process shared state. A Codec is
// not safe for concurrent use on its own.
package device
