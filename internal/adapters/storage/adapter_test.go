package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-formulare/internal/adapters/storage"
	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

func TestProvidersImplementInterface(t *testing.T) {
	var (
		_ interfaces.StorageProvider = storage.NewFilesystemProvider(t.TempDir())
		_ interfaces.StorageProvider = storage.NewMemoryProvider()
	)

	provider := storage.NewMemoryProvider()
	if err := provider.Transaction(context.Background(), func(tx interfaces.Transaction) error {
		_, err := tx.Exec(context.Background(), pkgstorage.OpWrite, "a.txt", strings.NewReader("a"))
		return err
	}); err != nil {
		t.Fatalf("unexpected transaction error: %v", err)
	}
	if _, ok := provider.Get("a.txt"); !ok {
		t.Fatalf("expected transactional write to land")
	}
}

func TestFilesystemWriteIsContentGated(t *testing.T) {
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root)
	ctx := context.Background()

	affected := mustWrite(t, provider, "en/index.html", "<p>hello</p>")
	if affected != 1 {
		t.Fatalf("expected first write to change bytes, got %d", affected)
	}
	if data, err := os.ReadFile(filepath.Join(root, "en", "index.html")); err != nil || string(data) != "<p>hello</p>" {
		t.Fatalf("unexpected file contents %q (%v)", data, err)
	}

	info := mustStat(t, provider, "en/index.html")
	if affected := mustWrite(t, provider, "en/index.html", "<p>hello</p>"); affected != 0 {
		t.Fatalf("expected identical write to be a no-op, got %d", affected)
	}
	if again := mustStat(t, provider, "en/index.html"); !again.ModTime.Equal(info.ModTime) {
		t.Fatalf("identical write touched the file: %v != %v", again.ModTime, info.ModTime)
	}

	if affected := mustWrite(t, provider, "en/index.html", "<p>changed</p>"); affected != 1 {
		t.Fatalf("expected changed write to report 1, got %d", affected)
	}

	rows, err := provider.Query(ctx, pkgstorage.OpRead, "missing.html")
	if err != nil {
		t.Fatalf("read missing: %v", err)
	}
	if rows.Next() {
		t.Fatalf("expected no rows for missing file")
	}
}

func TestFilesystemPathsStayBelowRoot(t *testing.T) {
	// An output directory named like a language must not swallow that
	// language's pages.
	root := filepath.Join(t.TempDir(), "en")
	provider := storage.NewFilesystemProvider(root)

	mustWrite(t, provider, "index.html", "global")
	mustWrite(t, provider, "en/index.html", "english")
	mustWrite(t, provider, filepath.Join(root, "fr", "index.html"), "french")

	for _, tc := range []struct{ rel, want string }{
		{"index.html", "global"},
		{filepath.Join("en", "index.html"), "english"},
		{filepath.Join("fr", "index.html"), "french"},
	} {
		data, err := os.ReadFile(filepath.Join(root, tc.rel))
		if err != nil || string(data) != tc.want {
			t.Fatalf("%s: expected %q, got %q (%v)", tc.rel, tc.want, data, err)
		}
	}
}

func TestFilesystemListAndRemove(t *testing.T) {
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root)
	ctx := context.Background()

	mustWrite(t, provider, "a/one.txt", "1")
	mustWrite(t, provider, "a/b/two.txt", "22")

	rows, err := provider.Query(ctx, pkgstorage.OpList, "a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var paths []string
	for rows.Next() {
		var info pkgstorage.FileInfo
		if err := rows.Scan(&info); err != nil {
			t.Fatalf("scan: %v", err)
		}
		paths = append(paths, info.Path)
	}
	if strings.Join(paths, ",") != "b/two.txt,one.txt" {
		t.Fatalf("unexpected listing %v", paths)
	}

	rows, err = provider.Query(ctx, pkgstorage.OpList, "absent")
	if err != nil {
		t.Fatalf("list absent: %v", err)
	}
	if rows.Next() {
		t.Fatalf("expected empty listing for a missing directory")
	}

	if _, err := provider.Exec(ctx, pkgstorage.OpRemove, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a")); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, got %v", err)
	}
}

func TestMemoryProvider(t *testing.T) {
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	provider := storage.NewMemoryProvider(storage.WithClock(func() time.Time { return stamp }))

	if affected := mustWrite(t, provider, "out/en/index.html", "x"); affected != 1 {
		t.Fatalf("expected 1, got %d", affected)
	}
	if affected := mustWrite(t, provider, "out/en/index.html", "x"); affected != 0 {
		t.Fatalf("expected 0, got %d", affected)
	}
	info := mustStat(t, provider, "out/en/index.html")
	if !info.ModTime.Equal(stamp) || info.Size != 1 {
		t.Fatalf("unexpected stat %+v", info)
	}

	provider.Put("out/fr/index.html", []byte("y"), stamp)
	if _, err := provider.Exec(context.Background(), pkgstorage.OpRemove, "out/en"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := strings.Join(provider.Paths(), ","); got != "out/fr/index.html" {
		t.Fatalf("unexpected paths %q", got)
	}
}

func mustWrite(t *testing.T, provider interfaces.StorageProvider, path, content string) int64 {
	t.Helper()
	result, err := provider.Exec(context.Background(), pkgstorage.OpWrite, path, strings.NewReader(content))
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		t.Fatalf("rows affected: %v", err)
	}
	return affected
}

func mustStat(t *testing.T, provider interfaces.StorageProvider, path string) pkgstorage.FileInfo {
	t.Helper()
	rows, err := provider.Query(context.Background(), pkgstorage.OpStat, path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("stat %s: no rows", path)
	}
	var info pkgstorage.FileInfo
	if err := rows.Scan(&info); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return info
}
