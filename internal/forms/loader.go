package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

// DefinitionFile is the fixed name of a form definition inside its directory.
const DefinitionFile = "form.json"

// ErrUnknownForm reports a translation table whose directory has no form definition.
var ErrUnknownForm = errors.New("forms: table belongs to no form")

// Loader reads a data directory laid out as <form>/form.json plus
// <form>/<lang>.<csv|json|yaml>.
type Loader struct {
	fsys           fs.FS
	baseLanguage   string
	baseFormTables bool
	logger         interfaces.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBaseLanguage sets the source language of the forms. Defaults to "de".
func WithBaseLanguage(lang string) LoaderOption {
	return func(l *Loader) {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			l.baseLanguage = trimmed
		}
	}
}

// WithBaseFormTables loads base-language form tables instead of skipping them.
// The base-language meta table is always loaded.
func WithBaseFormTables(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.baseFormTables = enabled
	}
}

// WithLogger injects the loader logger.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logging.Ensure(logger)
	}
}

// NewLoader reads data from fsys.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	loader := &Loader{
		fsys:         fsys,
		baseLanguage: "de",
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader
}

type pendingTable struct {
	lang   string
	form   string
	path   string
	format TableFormat
}

// Load walks root and returns a fully populated Catalog. Any unreadable or
// malformed file fails the whole load with a *DataLoadError.
func (l *Loader) Load(ctx context.Context, root string) (*Catalog, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if root == "" {
		root = "."
	}
	catalog := newCatalog(l.baseLanguage)
	var pending []pendingTable

	err := fs.WalkDir(l.fsys, root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return loadError("walk", p, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if p != root && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		dir := path.Dir(p)
		if dir == path.Clean(root) || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		formID := path.Base(dir)
		if entry.Name() == DefinitionFile {
			form, err := l.readForm(p, formID)
			if err != nil {
				return err
			}
			catalog.addForm(form, p)
			return nil
		}
		format, ok := FormatFor(entry.Name())
		if !ok {
			return nil
		}
		lang := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		pending = append(pending, pendingTable{lang: lang, form: formID, path: p, format: format})
		return nil
	})
	if err != nil {
		var loadErr *DataLoadError
		if errors.As(err, &loadErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, loadError("walk", root, err)
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].path < pending[j].path })
	for _, table := range pending {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if table.form != MetaFormID {
			if _, ok := catalog.Form(table.form); !ok {
				return nil, loadError("resolve", table.path, fmt.Errorf("%w: %s", ErrUnknownForm, table.form))
			}
		}
		if table.lang == l.baseLanguage && table.form != MetaFormID && !l.baseFormTables {
			catalog.touchLanguage(table.lang)
			l.logger.Trace("loader.table.skipped", "path", table.path, "reason", "base_language")
			continue
		}
		if _, exists := catalog.Table(table.lang, table.form); exists {
			return nil, loadError("resolve", table.path, fmt.Errorf("duplicate table for %s/%s", table.form, table.lang))
		}
		parsed, err := l.readTable(table)
		if err != nil {
			return nil, err
		}
		catalog.addTable(table.lang, table.form, parsed, table.path)
	}

	l.logger.Debug("loader.completed",
		"forms", len(catalog.forms),
		"languages", len(catalog.tables),
		"tables", len(pending),
	)
	return catalog, nil
}

func (l *Loader) readForm(p, formID string) (*Form, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, loadError("read", p, err)
	}
	if err := ValidateDefinition(data); err != nil {
		return nil, loadError("validate", p, err)
	}
	var form Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, loadError("decode", p, err)
	}
	form.ID = formID
	form.seal()
	return &form, nil
}

func (l *Loader) readTable(table pendingTable) (Table, error) {
	data, err := fs.ReadFile(l.fsys, table.path)
	if err != nil {
		return nil, loadError("read", table.path, err)
	}
	parsed, err := ParseTable(table.format, data)
	if err != nil {
		return nil, loadError("decode", table.path, err)
	}
	return parsed, nil
}
