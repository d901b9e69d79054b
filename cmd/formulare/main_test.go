package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	sitecmd "github.com/goliatone/go-formulare/internal/commands/site"
	"github.com/goliatone/go-formulare/internal/generator"
	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/internal/maintenance"
)

type stubHandlers struct {
	build  *stubBuildHandler
	stats  *stubStatsHandler
	clean  *stubCleanHandler
	tables *stubTablesHandler
}

type stubBuildHandler struct {
	calls int
	last  sitecmd.BuildSiteCommand
	err   error
	after func()
}

func (s *stubBuildHandler) Execute(ctx context.Context, msg sitecmd.BuildSiteCommand) error {
	s.calls++
	s.last = msg
	if msg.ResultCallback != nil {
		msg.ResultCallback(sitecmd.ResultEnvelope{
			Result: &generator.BuildResult{
				Built:   2,
				Written: 1,
				DryRun:  msg.DryRun,
			},
			Metadata: map[string]any{"operation": "build"},
		})
	}
	if s.after != nil {
		s.after()
	}
	return s.err
}

type stubStatsHandler struct {
	last sitecmd.StatsCommand
}

func (s *stubStatsHandler) Execute(ctx context.Context, msg sitecmd.StatsCommand) error {
	s.last = msg
	_, err := io.WriteString(msg.Out, "antrag\n  fr: 2/2\n\n")
	return err
}

type stubCleanHandler struct {
	calls int
	err   error
}

func (s *stubCleanHandler) Execute(ctx context.Context, msg sitecmd.CleanSiteCommand) error {
	s.calls++
	return s.err
}

type stubTablesHandler struct {
	last    sitecmd.TablesCommand
	changes []maintenance.Change
}

func (s *stubTablesHandler) Execute(ctx context.Context, msg sitecmd.TablesCommand) error {
	s.last = msg
	if err := msg.Validate(); err != nil {
		return err
	}
	if msg.Changes != nil {
		msg.Changes(s.changes)
	}
	return nil
}

func withStubModule(t *testing.T) (*stubHandlers, *[]moduleOptions) {
	t.Helper()
	original := moduleBuilder
	stubs := &stubHandlers{
		build:  &stubBuildHandler{},
		stats:  &stubStatsHandler{},
		clean:  &stubCleanHandler{},
		tables: &stubTablesHandler{},
	}
	var seen []moduleOptions
	moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
		seen = append(seen, opts)
		return &moduleResources{
			handlers: handlerSet{
				build:  stubs.build,
				stats:  stubs.stats,
				clean:  stubs.clean,
				tables: stubs.tables,
			},
			logger: logging.NoOp(),
		}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })
	return stubs, &seen
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runContext(context.Background(), args, &out, io.Discard)
	return out.String(), err
}

func TestRunBuild_UsesCommandHandler(t *testing.T) {
	stubs, _ := withStubModule(t)

	out, err := execute(t, "build", "--lang", "fr", "--lang", "it", "--form", "antrag", "--force")
	if err != nil {
		t.Fatalf("run build: %v", err)
	}

	got := stubs.build.last
	if !slices.Equal(got.Languages, []string{"fr", "it"}) {
		t.Fatalf("expected languages [fr it], got %#v", got.Languages)
	}
	if !slices.Equal(got.Forms, []string{"antrag"}) {
		t.Fatalf("expected form antrag, got %#v", got.Forms)
	}
	if !got.Force || got.DryRun {
		t.Fatalf("expected force without dry run, got %+v", got)
	}
	if !strings.Contains(out, "build: built=2 unchanged=0 skipped=0 written=1") {
		t.Fatalf("expected build summary, got %q", out)
	}
}

func TestRunBuild_DryRunSummary(t *testing.T) {
	withStubModule(t)

	out, err := execute(t, "build", "--dry-run")
	if err != nil {
		t.Fatalf("run build: %v", err)
	}
	if !strings.HasPrefix(out, "build (dry run):") {
		t.Fatalf("expected dry run summary, got %q", out)
	}
}

func TestRunBuild_PropagatesErrors(t *testing.T) {
	stubs, _ := withStubModule(t)
	stubs.build.err = errors.New("boom")

	_, err := execute(t, "build")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected propagated error, got %v", err)
	}
}

func TestRunStats_PassesFilters(t *testing.T) {
	stubs, _ := withStubModule(t)

	out, err := execute(t, "stats", "--lang", "fr", "--verbose", "antrag")
	if err != nil {
		t.Fatalf("run stats: %v", err)
	}
	got := stubs.stats.last
	if got.Form != "antrag" || got.Language != "fr" || !got.Verbose {
		t.Fatalf("unexpected stats command %+v", got)
	}
	if out != "antrag\n  fr: 2/2\n\n" {
		t.Fatalf("expected report on stdout, got %q", out)
	}
}

func TestRunClean_UsesCommandHandler(t *testing.T) {
	stubs, _ := withStubModule(t)

	out, err := execute(t, "clean")
	if err != nil {
		t.Fatalf("run clean: %v", err)
	}
	if stubs.clean.calls != 1 {
		t.Fatalf("expected clean handler called once, got %d", stubs.clean.calls)
	}
	if !strings.Contains(out, "clean: output removed") {
		t.Fatalf("expected clean message, got %q", out)
	}
}

func TestRunTables_MapsArguments(t *testing.T) {
	stubs, seen := withStubModule(t)
	stubs.tables.changes = []maintenance.Change{
		{Path: "antrag/fr.csv", Removed: []string{"Ort"}, Changed: true},
		{Path: "zuschuss/fr.csv"},
	}

	out, err := execute(t, "tables", "strip", "fr")
	if err != nil {
		t.Fatalf("run tables strip: %v", err)
	}
	if stubs.tables.last.Action != sitecmd.TablesStrip || stubs.tables.last.Language != "fr" {
		t.Fatalf("unexpected tables command %+v", stubs.tables.last)
	}
	if out != "strip: updated antrag/fr.csv (removed Ort)\n" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := execute(t, "tables", "fill", "--dry-run", "antrag", "it"); err != nil {
		t.Fatalf("run tables fill: %v", err)
	}
	if got := stubs.tables.last; got.Action != sitecmd.TablesFill || got.Form != "antrag" || got.Language != "it" {
		t.Fatalf("unexpected fill command %+v", got)
	}
	if last := (*seen)[len(*seen)-1]; !last.TablesDryRun {
		t.Fatal("expected --dry-run to reach the module builder")
	}
}

func TestRunTables_NothingToDo(t *testing.T) {
	withStubModule(t)

	out, err := execute(t, "tables", "normalize")
	if err != nil {
		t.Fatalf("run tables normalize: %v", err)
	}
	if out != "normalize: nothing to do\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunTables_SeedRequiresForm(t *testing.T) {
	withStubModule(t)

	if _, err := execute(t, "tables", "seed"); err == nil {
		t.Fatal("expected an argument error for seed without a form")
	}
}

func TestRun_GlobalFlagsReachModuleBuilder(t *testing.T) {
	_, seen := withStubModule(t)

	if _, err := execute(t, "--config", "site.yaml", "--root", "/srv/forms", "--output", "public", "clean"); err != nil {
		t.Fatalf("run clean: %v", err)
	}
	got := (*seen)[0]
	if got.ConfigFile != "site.yaml" || got.Root != "/srv/forms" {
		t.Fatalf("unexpected module options %+v", got)
	}
	if got.Viper == nil || got.Viper.GetString("site.output_dir") != "public" {
		t.Fatal("expected --output to be bound to site.output_dir")
	}
}

func TestRun_ErrorsWhenHandlersMissing(t *testing.T) {
	original := moduleBuilder
	moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
		return &moduleResources{}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })

	for _, args := range [][]string{{"build"}, {"stats"}, {"clean"}, {"tables", "strip"}} {
		_, err := execute(t, args...)
		if err == nil || !strings.Contains(err.Error(), "not configured") {
			t.Fatalf("%v: expected handler error, got %v", args, err)
		}
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if _, err := execute(t, "unknown"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunWatch_BuildsBeforeWatching(t *testing.T) {
	stubs, _ := withStubModule(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stubs.build.after = cancel

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runContext(ctx, []string{"watch", "--force"}, &out, io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
	if stubs.build.calls != 1 || !stubs.build.last.Force {
		t.Fatalf("expected one forced initial build, got %d calls (%+v)", stubs.build.calls, stubs.build.last)
	}
}

func TestBuildModule_LoadsProjectConfig(t *testing.T) {
	root := t.TempDir()
	config := "site:\n  output_dir: public\nlogging:\n  level: error\n"
	if err := os.WriteFile(filepath.Join(root, "formulare.yaml"), []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res, err := buildModule(moduleOptions{Root: root})
	if err != nil {
		t.Fatalf("buildModule returned error: %v", err)
	}
	if res.outputDir != filepath.Join(root, "public") {
		t.Fatalf("expected output dir below root, got %q", res.outputDir)
	}
	if len(res.watchRoots) == 0 || res.watchRoots[0] != filepath.Join(root, "data") {
		t.Fatalf("unexpected watch roots %v", res.watchRoots)
	}
	if res.handlers.build == nil || res.handlers.tables == nil {
		t.Fatal("expected handlers to be wired")
	}
}
