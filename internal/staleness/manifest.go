package staleness

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/goliatone/go-formulare/internal/identity"
	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

const manifestFileVersion = 1

// Entry records what a target was last built from.
type Entry struct {
	ID           string            `json:"id"`
	Target       string            `json:"target"`
	Dependencies map[string]string `json:"dependencies"`
	Fingerprint  string            `json:"fingerprint,omitempty"`
	Checksum     string            `json:"checksum"`
}

type manifestFile struct {
	Version   int     `json:"version"`
	Artifacts []Entry `json:"artifacts"`
}

// ManifestTracker compares content hashes against a persisted manifest.
// It is safe for concurrent use and intended to live for a single build:
// dependency hashes are cached for its lifetime.
type ManifestTracker struct {
	sources interfaces.StorageProvider
	output  interfaces.StorageProvider
	path    string

	loadOnce sync.Once
	loadErr  error

	mu      sync.Mutex
	entries map[string]Entry
	hashes  map[string]string
	dirty   bool
}

// NewManifestTracker reads dependencies through sources and targets plus the
// manifest at manifestPath through output.
func NewManifestTracker(sources, output interfaces.StorageProvider, manifestPath string) (*ManifestTracker, error) {
	if sources == nil || output == nil {
		return nil, ErrNoProvider
	}
	if manifestPath == "" {
		return nil, fmt.Errorf("staleness: manifest path required")
	}
	return &ManifestTracker{
		sources: sources,
		output:  output,
		path:    manifestPath,
		entries: map[string]Entry{},
		hashes:  map[string]string{},
	}, nil
}

func (t *ManifestTracker) load(ctx context.Context) error {
	t.loadOnce.Do(func() {
		data, ok, err := read(ctx, t.output, t.path)
		if err != nil {
			t.loadErr = err
			return
		}
		if !ok || len(bytes.TrimSpace(data)) == 0 {
			return
		}
		var manifest manifestFile
		if err := json.Unmarshal(data, &manifest); err != nil {
			// A corrupt manifest only costs a full rebuild.
			t.dirty = true
			return
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		for _, entry := range manifest.Artifacts {
			t.entries[entry.Target] = entry
		}
	})
	return t.loadErr
}

func (t *ManifestTracker) IsStale(ctx context.Context, target string, deps []string, fingerprint string) (bool, error) {
	if err := t.load(ctx); err != nil {
		return true, err
	}
	t.mu.Lock()
	entry, ok := t.entries[target]
	t.mu.Unlock()
	if !ok || entry.Fingerprint != fingerprint || len(entry.Dependencies) != len(deps) {
		return true, nil
	}
	for _, dep := range deps {
		recorded, ok := entry.Dependencies[dep]
		if !ok {
			return true, nil
		}
		current, err := t.hash(ctx, dep)
		if err != nil {
			return true, err
		}
		if current != recorded {
			return true, nil
		}
	}
	data, ok, err := read(ctx, t.output, target)
	if err != nil || !ok {
		return true, err
	}
	return Checksum(data) != entry.Checksum, nil
}

func (t *ManifestTracker) Record(ctx context.Context, target string, deps []string, fingerprint, checksum string) error {
	if err := t.load(ctx); err != nil {
		return err
	}
	hashes := make(map[string]string, len(deps))
	for _, dep := range deps {
		sum, err := t.hash(ctx, dep)
		if err != nil {
			return err
		}
		hashes[dep] = sum
	}
	entry := Entry{
		ID:           identity.ArtifactUUID(target).String(),
		Target:       target,
		Dependencies: hashes,
		Fingerprint:  fingerprint,
		Checksum:     checksum,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if previous, ok := t.entries[target]; ok && sameEntry(previous, entry) {
		return nil
	}
	t.entries[target] = entry
	t.dirty = true
	return nil
}

// Flush writes the manifest when any entry changed since it was loaded.
func (t *ManifestTracker) Flush(ctx context.Context) error {
	if err := t.load(ctx); err != nil {
		return err
	}
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return nil
	}
	manifest := manifestFile{Version: manifestFileVersion, Artifacts: make([]Entry, 0, len(t.entries))}
	for _, entry := range t.entries {
		manifest.Artifacts = append(manifest.Artifacts, entry)
	}
	t.mu.Unlock()

	sort.Slice(manifest.Artifacts, func(i, j int) bool {
		return manifest.Artifacts[i].Target < manifest.Artifacts[j].Target
	})
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("staleness: encode manifest: %w", err)
	}
	if _, err := t.output.Exec(ctx, pkgstorage.OpWrite, t.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("staleness: write manifest: %w", err)
	}

	t.mu.Lock()
	t.dirty = false
	t.mu.Unlock()
	return nil
}

// Entries returns a copy of the known entries, sorted by target.
func (t *ManifestTracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	targets := slices.Sorted(maps.Keys(t.entries))
	out := make([]Entry, 0, len(targets))
	for _, target := range targets {
		out = append(out, t.entries[target])
	}
	return out
}

// hash returns the cached SHA-256 of a dependency. Missing files hash to "".
func (t *ManifestTracker) hash(ctx context.Context, dep string) (string, error) {
	t.mu.Lock()
	sum, ok := t.hashes[dep]
	t.mu.Unlock()
	if ok {
		return sum, nil
	}
	data, found, err := read(ctx, t.sources, dep)
	if err != nil {
		return "", err
	}
	if found {
		sum = Checksum(data)
	}
	t.mu.Lock()
	t.hashes[dep] = sum
	t.mu.Unlock()
	return sum, nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sameEntry(a, b Entry) bool {
	return a.ID == b.ID &&
		a.Fingerprint == b.Fingerprint &&
		a.Checksum == b.Checksum &&
		maps.Equal(a.Dependencies, b.Dependencies)
}
