package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

// FilesystemProvider stores artifacts below a root directory.
type FilesystemProvider struct {
	root string
}

// NewFilesystemProvider returns a provider that reads and writes below root.
// Relative paths are always resolved against root; absolute paths inside
// root are accepted as well.
func NewFilesystemProvider(root string) *FilesystemProvider {
	return &FilesystemProvider{root: root}
}

// Root returns the directory the provider writes into.
func (s *FilesystemProvider) Root() string {
	return s.root
}

func (s *FilesystemProvider) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("storage: %s requires path", query)
	}
	target := s.normalizePath(args[0])
	switch query {
	case pkgstorage.OpRead:
		data, err := os.ReadFile(s.abs(target))
		if errors.Is(err, os.ErrNotExist) {
			return emptyRows{}, nil
		}
		if err != nil {
			return nil, err
		}
		return &fileRows{items: []any{data}}, nil
	case pkgstorage.OpStat:
		info, err := os.Stat(s.abs(target))
		if errors.Is(err, os.ErrNotExist) {
			return emptyRows{}, nil
		}
		if err != nil {
			return nil, err
		}
		return &fileRows{items: []any{fileInfo(target, info)}}, nil
	case pkgstorage.OpList:
		return s.list(ctx, target)
	default:
		return nil, fmt.Errorf("storage: unsupported query %q", query)
	}
}

func (s *FilesystemProvider) list(ctx context.Context, dir string) (interfaces.Rows, error) {
	root := s.abs(dir)
	var items []any
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, os.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		items = append(items, fileInfo(filepath.ToSlash(rel), info))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &fileRows{items: items}, nil
}

func (s *FilesystemProvider) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return emptyResult{}, err
	}
	switch query {
	case pkgstorage.OpEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: ensure_dir requires path")
		}
		path := s.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(s.abs(path), 0o755)
	case pkgstorage.OpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("storage: write requires path and reader")
		}
		path := s.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("storage: write expects io.Reader content")
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			return emptyResult{}, err
		}
		full := s.abs(path)
		if existing, err := os.ReadFile(full); err == nil && bytes.Equal(existing, content) {
			return writeResult(0), nil
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		if err := os.WriteFile(full, content, 0o644); err != nil {
			return emptyResult{}, err
		}
		return writeResult(1), nil
	case pkgstorage.OpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: remove requires path")
		}
		path := s.normalizePath(args[0])
		err := os.RemoveAll(s.abs(path))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, fmt.Errorf("storage: unsupported exec %q", query)
	}
}

func (s *FilesystemProvider) Transaction(ctx context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&passthroughTx{provider: s})
}

func (s *FilesystemProvider) abs(rel string) string {
	if rel == "" || rel == "." {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *FilesystemProvider) normalizePath(arg any) string {
	path, _ := arg.(string)
	if filepath.IsAbs(path) {
		if root, err := filepath.Abs(s.root); err == nil {
			if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				path = rel
			}
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func fileInfo(path string, info fs.FileInfo) pkgstorage.FileInfo {
	return pkgstorage.FileInfo{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

// passthroughTx runs transactional work directly against its provider.
// Filesystem writes are not rolled back.
type passthroughTx struct {
	provider interfaces.StorageProvider
}

func (tx *passthroughTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return tx.provider.Query(ctx, query, args...)
}

func (tx *passthroughTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return tx.provider.Exec(ctx, query, args...)
}

func (tx *passthroughTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("storage: nested transactions not supported")
}

func (tx *passthroughTx) Commit() error {
	return nil
}

func (tx *passthroughTx) Rollback() error {
	return nil
}

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type writeResult int64

func (r writeResult) RowsAffected() (int64, error) { return int64(r), nil }
func (writeResult) LastInsertId() (int64, error) { return 0, nil }

type emptyRows struct{}

func (emptyRows) Next() bool { return false }
func (emptyRows) Scan(...any) error { return errors.New("storage: no rows available") }
func (emptyRows) Close() error { return nil }

// fileRows yields one item per row. Items are []byte or FileInfo values.
type fileRows struct {
	items []any
	pos   int
}

func (r *fileRows) Next() bool {
	if r.pos >= len(r.items) {
		return false
	}
	r.pos++
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("storage: scan requires destination")
	}
	if r.pos == 0 || r.pos > len(r.items) {
		return errors.New("storage: scan called without row")
	}
	item := r.items[r.pos-1]
	switch target := dest[0].(type) {
	case *[]byte:
		data, ok := item.([]byte)
		if !ok {
			return fmt.Errorf("storage: row holds %T, not []byte", item)
		}
		*target = append((*target)[:0], data...)
	case *pkgstorage.FileInfo:
		info, ok := item.(pkgstorage.FileInfo)
		if !ok {
			return fmt.Errorf("storage: row holds %T, not FileInfo", item)
		}
		*target = info
	default:
		return fmt.Errorf("storage: unsupported scan destination %T", dest[0])
	}
	return nil
}

func (r *fileRows) Close() error {
	return nil
}
