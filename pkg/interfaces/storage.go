package interfaces

import "github.com/goliatone/go-formulare/pkg/storage"

// StorageProvider is the storage contract consumed by the loader, the
// staleness trackers and the generator.
type StorageProvider = storage.Provider

// Rows aliases storage.Rows.
type Rows = storage.Rows

// Result aliases storage.Result.
type Result = storage.Result

// Transaction aliases storage.Transaction.
type Transaction = storage.Transaction
