package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

// MemoryProvider keeps files in memory. It backs dry runs and tests.
type MemoryProvider struct {
	mu    sync.RWMutex
	files map[string]memoryFile
	now   func() time.Time
}

type memoryFile struct {
	data    []byte
	modTime time.Time
}

// MemoryOption customises a MemoryProvider.
type MemoryOption func(*MemoryProvider)

// WithClock sets the clock used to stamp writes.
func WithClock(now func() time.Time) MemoryOption {
	return func(p *MemoryProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewMemoryProvider returns an empty in-memory provider.
func NewMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	p := &MemoryProvider{files: map[string]memoryFile{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Put stores data at name with an explicit modification time.
func (p *MemoryProvider) Put(name string, data []byte, modTime time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[cleanMemoryPath(name)] = memoryFile{data: slices.Clone(data), modTime: modTime}
}

// Get returns the bytes stored at name.
func (p *MemoryProvider) Get(name string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	file, ok := p.files[cleanMemoryPath(name)]
	if !ok {
		return nil, false
	}
	return slices.Clone(file.data), true
}

// Paths returns every stored path, sorted.
func (p *MemoryProvider) Paths() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	paths := make([]string, 0, len(p.files))
	for name := range p.files {
		paths = append(paths, name)
	}
	slices.Sort(paths)
	return paths
}

func (p *MemoryProvider) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("storage: %s requires path", query)
	}
	name := cleanMemoryPath(args[0])

	p.mu.RLock()
	defer p.mu.RUnlock()

	switch query {
	case pkgstorage.OpRead:
		file, ok := p.files[name]
		if !ok {
			return emptyRows{}, nil
		}
		return &fileRows{items: []any{slices.Clone(file.data)}}, nil
	case pkgstorage.OpStat:
		file, ok := p.files[name]
		if !ok {
			return emptyRows{}, nil
		}
		return &fileRows{items: []any{pkgstorage.FileInfo{Path: name, Size: int64(len(file.data)), ModTime: file.modTime}}}, nil
	case pkgstorage.OpList:
		prefix := name + "/"
		if name == "" || name == "." {
			prefix = ""
		}
		var names []string
		for candidate := range p.files {
			if strings.HasPrefix(candidate, prefix) {
				names = append(names, candidate)
			}
		}
		slices.Sort(names)
		items := make([]any, 0, len(names))
		for _, candidate := range names {
			file := p.files[candidate]
			items = append(items, pkgstorage.FileInfo{
				Path:    strings.TrimPrefix(candidate, prefix),
				Size:    int64(len(file.data)),
				ModTime: file.modTime,
			})
		}
		return &fileRows{items: items}, nil
	default:
		return nil, fmt.Errorf("storage: unsupported query %q", query)
	}
}

func (p *MemoryProvider) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return emptyResult{}, err
	}
	switch query {
	case pkgstorage.OpEnsureDir:
		return emptyResult{}, nil
	case pkgstorage.OpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("storage: write requires path and reader")
		}
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("storage: write expects io.Reader content")
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			return emptyResult{}, err
		}
		name := cleanMemoryPath(args[0])

		p.mu.Lock()
		defer p.mu.Unlock()
		if existing, ok := p.files[name]; ok && bytes.Equal(existing.data, content) {
			return writeResult(0), nil
		}
		p.files[name] = memoryFile{data: content, modTime: p.now()}
		return writeResult(1), nil
	case pkgstorage.OpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: remove requires path")
		}
		name := cleanMemoryPath(args[0])

		p.mu.Lock()
		defer p.mu.Unlock()
		for candidate := range p.files {
			if name == "" || name == "." || candidate == name || strings.HasPrefix(candidate, name+"/") {
				delete(p.files, candidate)
			}
		}
		return emptyResult{}, nil
	default:
		return emptyResult{}, fmt.Errorf("storage: unsupported exec %q", query)
	}
}

func (p *MemoryProvider) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&passthroughTx{provider: p})
}

func cleanMemoryPath(arg any) string {
	name, _ := arg.(string)
	name = path.Clean(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(name, "/")
}
