package staleness

import (
	"context"

	"github.com/goliatone/go-formulare/pkg/interfaces"
)

// ModTimeTracker marks a target stale when it is missing or any dependency
// was modified strictly after it. Fingerprints are ignored and nothing is
// persisted.
type ModTimeTracker struct {
	sources interfaces.StorageProvider
	output  interfaces.StorageProvider
}

// NewModTimeTracker stats dependencies through sources and targets through
// output.
func NewModTimeTracker(sources, output interfaces.StorageProvider) (*ModTimeTracker, error) {
	if sources == nil || output == nil {
		return nil, ErrNoProvider
	}
	return &ModTimeTracker{sources: sources, output: output}, nil
}

func (t *ModTimeTracker) IsStale(ctx context.Context, target string, deps []string, _ string) (bool, error) {
	info, ok, err := stat(ctx, t.output, target)
	if err != nil || !ok {
		return true, err
	}
	for _, dep := range deps {
		depInfo, ok, err := stat(ctx, t.sources, dep)
		if err != nil {
			return true, err
		}
		// A dependency that no longer exists cannot be newer.
		if ok && depInfo.ModTime.After(info.ModTime) {
			return true, nil
		}
	}
	return false, nil
}

func (*ModTimeTracker) Record(context.Context, string, []string, string, string) error {
	return nil
}

func (*ModTimeTracker) Flush(context.Context) error {
	return nil
}
