package formulare_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cp "github.com/otiai10/copy"

	"github.com/goliatone/go-formulare"
	"github.com/goliatone/go-formulare/internal/logging/console"
)

func writeSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"data/antrag/form.json":      `{"title": "Antrag", "date": "2020", "rows": [{"content": "Name"}, {"content": "Ort"}]}`,
		"data/antrag/fr.csv":         "Name,Nom\nOrt,Lieu\n",
		"data/antrag/it.csv":         "Name,Nome\n",
		"data/meta/de.csv":           "language,Deutsch\n",
		"data/meta/en.csv":           "language,English\n",
		"data/meta/fr.csv":           "language,Français\n",
		"data/meta/it.csv":           "language,Italiano\n",
		"templates/index.html":       `{% for t in translations %}{{ t }};{% endfor %}`,
		"templates/stats.html":       `stats`,
		"templates/overview.html":    `overview`,
		"templates/language.html":    `{{ lang_id }}`,
		"templates/translation.html": `{% for row in form.Rows %}{{ translate(row.Content, lang_id, form_id) }};{% endfor %}`,
		"templates/print.html":       `print`,
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func newModule(t *testing.T, root string, opts ...formulare.Option) *formulare.Module {
	t.Helper()
	opts = append([]formulare.Option{
		formulare.WithRoot(root),
		formulare.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard})),
	}, opts...)
	module, err := formulare.New(formulare.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return module
}

func TestModuleBuildPublishesCompleteTranslations(t *testing.T) {
	root := writeSite(t)
	module := newModule(t, root)

	result, err := module.Build(context.Background(), formulare.BuildOptions{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if result == nil || result.Built == 0 {
		t.Fatalf("expected a build result, got %#v", result)
	}

	page, err := os.ReadFile(filepath.Join(root, "build", "fr", "antrag", "index.html"))
	if err != nil {
		t.Fatalf("read fr page: %v", err)
	}
	if string(page) != "Nom;Lieu;" {
		t.Fatalf("unexpected fr page %q", page)
	}
	if _, err := os.Stat(filepath.Join(root, "build", "it", "antrag", "index.html")); !os.IsNotExist(err) {
		t.Fatalf("expected incomplete it translation to stay unpublished, got %v", err)
	}

	second, err := module.Build(context.Background(), formulare.BuildOptions{})
	if err != nil {
		t.Fatalf("second Build returned error: %v", err)
	}
	if second.Written != 0 {
		t.Fatalf("expected an unchanged rebuild to write nothing, wrote %d", second.Written)
	}
}

func TestModuleStats(t *testing.T) {
	module := newModule(t, writeSite(t))

	var out bytes.Buffer
	if err := module.Stats(context.Background(), &out, formulare.StatsOptions{Form: "antrag", Language: "it"}); err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if got, want := out.String(), "antrag\n  it: 1/2\n\n"; got != want {
		t.Fatalf("unexpected stats\nwant %q\ngot  %q", want, got)
	}
}

func TestModuleTablesFill(t *testing.T) {
	root := writeSite(t)
	module := newModule(t, root)

	changes, err := module.Tables(context.Background(), "seed", "antrag", "")
	if err != nil {
		t.Fatalf("Tables returned error: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "antrag/de.csv" {
		t.Fatalf("unexpected changes %+v", changes)
	}
	data, err := os.ReadFile(filepath.Join(root, "data", "antrag", "de.csv"))
	if err != nil {
		t.Fatalf("read seeded table: %v", err)
	}
	if string(data) != "Name,Name\nOrt,Ort\n" {
		t.Fatalf("unexpected seeded table %q", data)
	}
}

func TestExampleSiteBuilds(t *testing.T) {
	root := t.TempDir()
	if err := cp.Copy(filepath.Join("examples", "site"), root); err != nil {
		t.Fatalf("copy example site: %v", err)
	}
	cfg, err := formulare.LoadConfig(formulare.LoadOptions{File: filepath.Join(root, "formulare.yaml")})
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	module, err := formulare.New(cfg,
		formulare.WithRoot(root),
		formulare.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard})),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result, err := module.Build(context.Background(), formulare.BuildOptions{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if result.Built == 0 {
		t.Fatal("expected the example site to render pages")
	}

	read := func(name string) string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(root, "build", filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	if page := read("en/antrag/index.html"); !strings.Contains(page, "Application for child benefit") {
		t.Fatalf("expected translated title in en page, got %q", page)
	}
	if checklist := read("en/antrag/r/checklist.txt"); !strings.Contains(checklist, "[ ] Signature") {
		t.Fatalf("expected translated checklist, got %q", checklist)
	}
	read("static/pdf/antrag_en_2023-01.pdf")
	if _, err := os.Stat(filepath.Join(root, "build", "fr", "wohngeld", "index.html")); !os.IsNotExist(err) {
		t.Fatalf("expected incomplete fr/wohngeld to stay unpublished, got %v", err)
	}
}
