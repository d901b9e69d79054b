// Package staleness decides whether a generated file must be rebuilt.
//
// Two strategies are provided. ModTimeTracker compares modification times
// of the target and its dependencies. ManifestTracker hashes dependencies
// and remembers what each target was built from in a JSON manifest stored
// next to the output, so touching a file without changing it does not
// trigger a rebuild and edits to generated files are detected.
package staleness

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

// Tracker gates rendering of a target on its dependencies.
type Tracker interface {
	IsStale(ctx context.Context, target string, deps []string, fingerprint string) (bool, error)
	Record(ctx context.Context, target string, deps []string, fingerprint, checksum string) error
	Flush(ctx context.Context) error
}

// ErrNoProvider is returned when a tracker is built without storage.
var ErrNoProvider = errors.New("staleness: storage provider required")

// Always reports every target stale. It backs forced builds.
type Always struct{}

func (Always) IsStale(context.Context, string, []string, string) (bool, error) { return true, nil }
func (Always) Record(context.Context, string, []string, string, string) error { return nil }
func (Always) Flush(context.Context) error { return nil }

func stat(ctx context.Context, provider interfaces.StorageProvider, path string) (pkgstorage.FileInfo, bool, error) {
	rows, err := provider.Query(ctx, pkgstorage.OpStat, path)
	if err != nil {
		return pkgstorage.FileInfo{}, false, fmt.Errorf("staleness: stat %s: %w", path, err)
	}
	if rows == nil {
		return pkgstorage.FileInfo{}, false, nil
	}
	defer rows.Close()
	if !rows.Next() {
		return pkgstorage.FileInfo{}, false, nil
	}
	var info pkgstorage.FileInfo
	if err := rows.Scan(&info); err != nil {
		return pkgstorage.FileInfo{}, false, fmt.Errorf("staleness: scan %s: %w", path, err)
	}
	return info, true, nil
}

func read(ctx context.Context, provider interfaces.StorageProvider, path string) ([]byte, bool, error) {
	rows, err := provider.Query(ctx, pkgstorage.OpRead, path)
	if err != nil {
		return nil, false, fmt.Errorf("staleness: read %s: %w", path, err)
	}
	if rows == nil {
		return nil, false, nil
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, false, nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, false, fmt.Errorf("staleness: scan %s: %w", path, err)
	}
	return data, true, nil
}
