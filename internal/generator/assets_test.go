package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formulare/internal/markdown"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

func TestDiskCopierSkipsUnchangedFiles(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "static")
	if err := os.MkdirAll(filepath.Join(src, "forms", "antrag"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, content := range map[string]string{
		"style.css":             "body{}",
		"forms/antrag/bg-0.svg": "<svg/>",
	} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	copier := DiskCopier{}
	copied, err := copier.CopyTree(context.Background(), src, dest)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if copied != 2 {
		t.Fatalf("expected 2 files copied, got %d", copied)
	}
	if data, err := os.ReadFile(filepath.Join(dest, "forms", "antrag", "bg-0.svg")); err != nil || string(data) != "<svg/>" {
		t.Fatalf("expected copied background, got %q (%v)", data, err)
	}

	copied, err = copier.CopyTree(context.Background(), src, dest)
	if err != nil {
		t.Fatalf("second copy: %v", err)
	}
	if copied != 0 {
		t.Fatalf("expected unchanged files to be skipped, got %d copies", copied)
	}

	later := time.Now().Add(time.Hour)
	if err := os.WriteFile(filepath.Join(src, "style.css"), []byte("body{color:red}"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := os.Chtimes(filepath.Join(src, "style.css"), later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	copied, err = copier.CopyTree(context.Background(), src, dest)
	if err != nil {
		t.Fatalf("third copy: %v", err)
	}
	if copied != 1 {
		t.Fatalf("expected one changed file, got %d", copied)
	}
}

func TestDiskCopierIgnoresMissingSource(t *testing.T) {
	copied, err := DiskCopier{}.CopyTree(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir())
	if err != nil || copied != 0 {
		t.Fatalf("expected missing source to be ignored, got %d, %v", copied, err)
	}
}

type countingCopier struct {
	trees []string
}

func (c *countingCopier) CopyTree(_ context.Context, src, dest string) (int, error) {
	c.trees = append(c.trees, src+"->"+dest)
	return 1, nil
}

func TestBuildCopiesAssetTrees(t *testing.T) {
	fixture := newSiteFixture()
	copier := &countingCopier{}
	svc := NewService(Config{
		DataDir:      "data",
		TemplateDir:  "templates",
		StaticDir:    "static",
		AnnotatorDir: "annotator",
		PDFDir:       "pdf",
		OutputDir:    "build",
		CopyAssets:   true,
	}, Dependencies{
		Data:      fixture.data,
		Templates: fixture.templates,
		Static:    fixture.static,
		Output:    fixture.output,
		Markdown:  markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
		Assets:    copier,
	})

	result, err := svc.Build(context.Background(), BuildOptions{Languages: []string{"en"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.AssetsCopied != 3 {
		t.Fatalf("expected three asset trees, got %d", result.AssetsCopied)
	}
	expected := []string{
		"static->" + filepath.Join("build", "static"),
		"annotator->" + filepath.Join("build", "annotator"),
		"data->" + filepath.Join("build", "data"),
	}
	for i, tree := range expected {
		if copier.trees[i] != tree {
			t.Fatalf("tree %d: expected %s, got %s", i, tree, copier.trees[i])
		}
	}
}
