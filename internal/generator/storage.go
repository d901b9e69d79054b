package generator

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryResource writeCategory = "resource"
)

// writeFileRequest describes a file write operation routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Language    string
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts storage provider specifics for generator outputs.
type artifactWriter interface {
	// WriteFile reports whether the bytes on disk changed.
	WriteFile(ctx context.Context, req writeFileRequest) (bool, error)
	Remove(ctx context.Context, path string) error
}

func newArtifactWriter(storage interfaces.StorageProvider) artifactWriter {
	if storage == nil {
		return noopWriter{}
	}
	return &storageWriter{storage: storage}
}

type storageWriter struct {
	storage interfaces.StorageProvider
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) (bool, error) {
	if req.Content == nil {
		return false, errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return false, errors.New("generator: write requires path")
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	args := []any{
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Language,
		req.Checksum,
		req.Metadata,
	}
	result, err := w.storage.Exec(ctx, pkgstorage.OpWrite, args...)
	if err != nil {
		return false, err
	}
	changed, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return changed > 0, nil
}

func (w *storageWriter) Remove(ctx context.Context, path string) error {
	_, err := w.storage.Exec(ctx, pkgstorage.OpRemove, path)
	return err
}

type noopWriter struct{}

func (noopWriter) WriteFile(context.Context, writeFileRequest) (bool, error) { return false, nil }

func (noopWriter) Remove(context.Context, string) error { return nil }
