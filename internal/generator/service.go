package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/goliatone/go-formulare/internal/identity"
	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/internal/staleness"
	"github.com/goliatone/go-formulare/internal/templates"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")
	errOutputRequired  = errors.New("generator: output storage is required")
)

// Staleness strategies understood by Config.Staleness.
const (
	StalenessHash    = "hash"
	StalenessModTime = "mtime"
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Plan(ctx context.Context, opts BuildOptions) ([]Artifact, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	DataDir      string
	TemplateDir  string
	StaticDir    string
	AnnotatorDir string
	// PDFDir is relative to StaticDir.
	PDFDir         string
	OutputDir      string
	BaseURL        string
	BaseLanguage   string
	MetaReference  string
	Threshold      float64
	BaseFormTables bool
	Workers        int
	Staleness      string
	ManifestFile   string
	CopyAssets     bool
}

// BuildOptions narrows the scope of a generator run. Global pages (index,
// stats, overview) are only built when no language or form filter is set.
type BuildOptions struct {
	Languages []string
	Forms     []string
	// Force renders every artifact regardless of staleness.
	Force  bool
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	// Built counts rendered artifacts.
	Built int
	// Unchanged counts rendered artifacts whose output already matched.
	Unchanged int
	// Skipped counts artifacts the staleness tracker found up to date.
	Skipped int
	// NotApplicable counts resources whose template disappeared.
	NotApplicable int
	// Written counts files whose bytes changed.
	Written      int
	AssetsCopied int
	Duration     time.Duration
	Diagnostics  []Diagnostic
	Errors       []error
	DryRun       bool
}

// Diagnostic records the outcome of one artifact.
type Diagnostic struct {
	ID            uuid.UUID
	Kind          Kind
	Language      string
	Form          string
	Target        string
	Template      string
	Duration      time.Duration
	Stale         bool
	Skipped       bool
	NotApplicable bool
	Changed       bool
	Err           error
}

// MarkdownParser backs the markdown template filter.
type MarkdownParser interface {
	String(markdown string) (string, error)
}

// Dependencies lists the collaborators of the generator. Data, Templates and
// Static default to the directories named in Config.
type Dependencies struct {
	Data      fs.FS
	Templates fs.FS
	Static    fs.FS
	// Sources resolves dependency paths for the staleness tracker.
	Sources interfaces.StorageProvider
	// Output is rooted at the output directory.
	Output   interfaces.StorageProvider
	Tracker  staleness.Tracker
	Markdown MarkdownParser
	Assets   AssetCopier
	Logger   interfaces.LoggerProvider
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if cfg.BaseLanguage == "" {
		cfg.BaseLanguage = "de"
	}
	if cfg.MetaReference == "" {
		cfg.MetaReference = "en"
	}
	if cfg.ManifestFile == "" {
		cfg.ManifestFile = ".formulare-manifest.json"
	}
	return &service{
		cfg:          cfg,
		deps:         deps,
		logger:       logging.GeneratorLogger(deps.Logger),
		loaderLogger: logging.LoaderLogger(deps.Logger),
		now:          time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg          Config
	deps         Dependencies
	logger       interfaces.Logger
	loaderLogger interfaces.Logger
	now          func() time.Time
}

type disabledService struct{}

func (s *service) Plan(ctx context.Context, opts BuildOptions) ([]Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := s.loadSite(ctx)
	if err != nil {
		return nil, err
	}
	return planner{cfg: s.cfg, site: st}.plan(opts)
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Output == nil {
		return nil, errOutputRequired
	}

	start := s.now()
	s.logger.Info("generator.build.start",
		"languages", opts.Languages,
		"forms", opts.Forms,
		"force", opts.Force,
		"dry_run", opts.DryRun,
	)

	// Everything is loaded before anything is rendered; a load failure
	// aborts before the first write.
	st, err := s.loadSite(ctx)
	if err != nil {
		s.logger.Error("generator.build.load_failed", "error", err)
		return nil, err
	}
	artifacts, err := planner{cfg: s.cfg, site: st}.plan(opts)
	if err != nil {
		return nil, err
	}
	tracker, err := s.tracker()
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]Diagnostic, 0, len(artifacts)),
	}
	var (
		mu          sync.Mutex
		errorsSlice []error
	)
	collect := func(d Diagnostic) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, d)
		switch {
		case d.Err != nil:
			errorsSlice = append(errorsSlice, d.Err)
		case d.NotApplicable:
			result.NotApplicable++
		case d.Skipped:
			result.Skipped++
		case opts.DryRun:
			result.Built++
		default:
			result.Built++
			if d.Changed {
				result.Written++
			} else {
				result.Unchanged++
			}
		}
	}

	writer := newArtifactWriter(s.deps.Output)
	build := func(artifact Artifact) {
		collect(s.buildArtifact(ctx, st, tracker, writer, artifact, opts))
	}
	if err := s.run(ctx, artifacts, build, func(p any) {
		mu.Lock()
		defer mu.Unlock()
		errorsSlice = append(errorsSlice, fmt.Errorf("generator: worker panic: %v", p))
	}); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if !opts.DryRun {
		if err := tracker.Flush(ctx); err != nil {
			errorsSlice = append(errorsSlice, fmt.Errorf("generator: persist manifest: %w", err))
		}
		if s.cfg.CopyAssets {
			copied, err := s.copyAssets(ctx)
			result.AssetsCopied = copied
			if err != nil {
				errorsSlice = append(errorsSlice, err)
			}
		}
	}

	sortDiagnostics(result.Diagnostics, artifacts)
	result.Duration = s.now().Sub(start)
	s.logger.Info("generator.build.complete",
		"built", result.Built,
		"written", result.Written,
		"skipped", result.Skipped,
		"not_applicable", result.NotApplicable,
		"assets", result.AssetsCopied,
		"errors", len(errorsSlice),
		"duration", result.Duration,
	)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// run processes artifacts through a worker pool. Submission stops once ctx
// is cancelled and the cancellation is returned.
func (s *service) run(ctx context.Context, artifacts []Artifact, build func(Artifact), onPanic func(any)) error {
	workers := s.effectiveWorkerCount(len(artifacts))
	if workers <= 1 {
		for _, artifact := range artifacts {
			if err := ctx.Err(); err != nil {
				return err
			}
			build(artifact)
		}
		return nil
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		s.logger.Error("generator.worker.panic", "panic", p)
		onPanic(p)
	}))
	if err != nil {
		return fmt.Errorf("generator: start worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var submitErr error
	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			build(artifact)
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("generator: submit %s: %w", artifact.Target, err)
			break
		}
	}
	wg.Wait()
	return submitErr
}

func (s *service) buildArtifact(
	ctx context.Context,
	st *site,
	tracker staleness.Tracker,
	writer artifactWriter,
	artifact Artifact,
	opts BuildOptions,
) Diagnostic {
	d := Diagnostic{
		ID:       identity.ArtifactUUID(artifact.Target),
		Kind:     artifact.Kind,
		Language: artifact.Language,
		Form:     artifact.Form,
		Target:   artifact.Target,
		Template: artifact.Template,
	}
	logger := logging.WithArtifactContext(s.logger, artifact.Language, artifact.Form, string(artifact.Kind))
	if err := ctx.Err(); err != nil {
		d.Err = err
		return d
	}

	stale := true
	if !opts.Force {
		var err error
		stale, err = tracker.IsStale(ctx, artifact.Target, artifact.Dependencies, artifact.Fingerprint)
		if err != nil {
			d.Err = fmt.Errorf("generator: check %s: %w", artifact.Target, err)
			return d
		}
	}
	d.Stale = stale
	if !stale {
		d.Skipped = true
		logger.Debug("generator.artifact.fresh", "target", artifact.Target)
		return d
	}
	if opts.DryRun {
		return d
	}

	start := time.Now()
	data, err := st.contextFor(artifact)
	if err != nil {
		d.Err = fmt.Errorf("generator: build context for %s: %w", artifact.Target, err)
		return d
	}
	html, err := st.renderer.Render(artifact.Template, data)
	d.Duration = time.Since(start)
	if err != nil {
		if artifact.Kind == KindResource && errors.Is(err, templates.ErrTemplateNotFound) {
			d.NotApplicable = true
			logger.Debug("generator.artifact.not_applicable", "template", artifact.Template)
			return d
		}
		d.Err = fmt.Errorf("generator: render template %q for %s: %w", artifact.Template, artifact.Target, err)
		return d
	}

	content := []byte(html)
	checksum := staleness.Checksum(content)
	category := categoryPage
	contentType := "text/html; charset=utf-8"
	if artifact.Kind == KindResource {
		category = categoryResource
		contentType = detectContentType(artifact.Resource)
	}
	changed, err := writer.WriteFile(ctx, writeFileRequest{
		Path:        artifact.Target,
		Content:     bytes.NewReader(content),
		Size:        int64(len(content)),
		Language:    artifact.Language,
		Category:    category,
		ContentType: contentType,
		Checksum:    checksum,
		Metadata: map[string]string{
			"kind":     string(artifact.Kind),
			"form":     artifact.Form,
			"template": artifact.Template,
		},
	})
	if err != nil {
		d.Err = fmt.Errorf("generator: write %s: %w", artifact.Target, err)
		return d
	}
	d.Changed = changed
	if err := tracker.Record(ctx, artifact.Target, artifact.Dependencies, artifact.Fingerprint, checksum); err != nil {
		d.Err = fmt.Errorf("generator: record %s: %w", artifact.Target, err)
		return d
	}
	logger.Debug("generator.artifact.rendered", "target", artifact.Target, "changed", changed, "duration", d.Duration)
	return d
}

func (s *service) tracker() (staleness.Tracker, error) {
	if s.deps.Tracker != nil {
		return s.deps.Tracker, nil
	}
	if s.deps.Sources == nil {
		return staleness.Always{}, nil
	}
	switch strings.ToLower(strings.TrimSpace(s.cfg.Staleness)) {
	case StalenessModTime:
		return staleness.NewModTimeTracker(s.deps.Sources, s.deps.Output)
	case "", StalenessHash:
		return staleness.NewManifestTracker(s.deps.Sources, s.deps.Output, path.Clean(s.cfg.ManifestFile))
	default:
		return nil, fmt.Errorf("generator: unknown staleness strategy %q", s.cfg.Staleness)
	}
}

// Clean removes every generated file.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Output == nil {
		return errOutputRequired
	}
	if err := newArtifactWriter(s.deps.Output).Remove(ctx, "."); err != nil {
		return fmt.Errorf("generator: clean output: %w", err)
	}
	s.logger.Info("generator.clean.complete", "output", s.cfg.OutputDir)
	return nil
}

func (s *service) effectiveWorkerCount(artifacts int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if artifacts > 0 && workers > artifacts {
		return artifacts
	}
	return workers
}

// sortDiagnostics restores plan order, which concurrent collection loses.
func sortDiagnostics(diagnostics []Diagnostic, artifacts []Artifact) {
	order := make(map[string]int, len(artifacts))
	for i, artifact := range artifacts {
		order[artifact.Target] = i
	}
	slices.SortFunc(diagnostics, func(a, b Diagnostic) int {
		return order[a.Target] - order[b.Target]
	})
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Plan(context.Context, BuildOptions) ([]Artifact, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
