package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	cp "github.com/otiai10/copy"
)

// AssetCopier mirrors a source tree into the output directory.
type AssetCopier interface {
	CopyTree(ctx context.Context, src, dest string) (int, error)
}

// DiskCopier copies trees on the local filesystem. Files whose size and
// modification time already match the destination are left alone; times are
// preserved with millisecond accuracy on some platforms.
type DiskCopier struct{}

func (DiskCopier) CopyTree(ctx context.Context, src, dest string) (int, error) {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("generator: inspect asset directory %s: %w", src, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("generator: asset path %s is not a directory", src)
	}

	var copied atomic.Int64
	err = cp.Copy(src, dest, cp.Options{
		PreserveTimes: true,
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Deep
		},
		Skip: func(srcinfo os.FileInfo, srcPath, destPath string) (bool, error) {
			if err := ctx.Err(); err != nil {
				return true, err
			}
			if srcinfo.IsDir() {
				return false, nil
			}
			if unchanged(srcinfo, destPath) {
				return true, nil
			}
			copied.Add(1)
			return false, nil
		},
	})
	if err != nil {
		return int(copied.Load()), fmt.Errorf("generator: copy %s: %w", src, err)
	}
	return int(copied.Load()), nil
}

func unchanged(srcinfo os.FileInfo, dest string) bool {
	destinfo, err := os.Stat(dest)
	if err != nil || destinfo.IsDir() {
		return false
	}
	drift := destinfo.ModTime().Sub(srcinfo.ModTime()).Abs()
	return destinfo.Size() == srcinfo.Size() && drift < time.Millisecond
}

type assetTree struct {
	src  string
	dest string
}

func (s *service) assetTrees() []assetTree {
	var trees []assetTree
	add := func(src, name string) {
		if strings.TrimSpace(src) == "" {
			return
		}
		trees = append(trees, assetTree{src: src, dest: filepath.Join(s.cfg.OutputDir, name)})
	}
	add(s.cfg.StaticDir, "static")
	add(s.cfg.AnnotatorDir, "annotator")
	add(s.cfg.DataDir, "data")
	return trees
}

func (s *service) copyAssets(ctx context.Context) (int, error) {
	copier := s.deps.Assets
	if copier == nil {
		copier = DiskCopier{}
	}
	total := 0
	var errs []error
	for _, tree := range s.assetTrees() {
		count, err := copier.CopyTree(ctx, tree.src, tree.dest)
		total += count
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

func detectContentType(name string) string {
	if kind := mime.TypeByExtension(filepath.Ext(name)); kind != "" {
		return kind
	}
	return "application/octet-stream"
}
