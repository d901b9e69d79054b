package storage

import (
	"context"
	"time"
)

// Provider is the file storage contract used by the loader, staleness tracker
// and generator. Operations are addressed by name (see the Op* constants) so
// alternative backends (in-memory, object stores) can be swapped in without
// touching the callers.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Operation names understood by storage providers.
const (
	// OpRead returns one row whose single column scans into *[]byte. A missing
	// file yields no rows.
	OpRead = "generator.read"
	// OpStat returns one row that scans into *FileInfo. A missing file yields
	// no rows.
	OpStat = "generator.stat"
	// OpList returns one row per regular file below a directory, each
	// scanning into *FileInfo. Paths are slash separated and relative to the
	// listed directory. A missing directory yields no rows.
	OpList = "generator.list"
	// OpEnsureDir creates a directory and its parents.
	OpEnsureDir = "generator.ensure_dir"
	// OpWrite writes content to a path. RowsAffected reports 1 when bytes
	// changed on disk and 0 when the existing file already matched.
	OpWrite = "generator.write"
	// OpRemove deletes a path recursively.
	OpRemove = "generator.remove"
)

// FileInfo describes a stored file as returned by OpStat and OpList.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}
