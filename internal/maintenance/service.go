package maintenance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/identity"
	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/pkg/interfaces"
	pkgstorage "github.com/goliatone/go-formulare/pkg/storage"
)

// ErrUnknownForm is returned when a chore names a form the catalog lacks.
var ErrUnknownForm = errors.New("maintenance: unknown form")

// Change reports what a chore did to one table file.
type Change struct {
	// ID is stable for a (language, form) pair across runs.
	ID       uuid.UUID
	Language string
	Form     string
	Path     string
	Removed  []string
	Changed  bool
}

// Option customises a Service.
type Option func(*Service)

// WithExceptions replaces the keys StripUntranslated keeps.
func WithExceptions(keys ...string) Option {
	return func(s *Service) {
		s.exceptions = slices.Clone(keys)
	}
}

// WithLogger sets the logger used for per-table entries.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDryRun computes changes without writing them.
func WithDryRun(enabled bool) Option {
	return func(s *Service) {
		s.dryRun = enabled
	}
}

// Service applies the table chores to a loaded catalog and writes results
// through a storage provider rooted at the data directory.
type Service struct {
	store      interfaces.StorageProvider
	exceptions []string
	logger     interfaces.Logger
	dryRun     bool
}

// NewService returns a Service writing through store.
func NewService(store interfaces.StorageProvider, opts ...Option) *Service {
	s := &Service{
		store:      store,
		exceptions: slices.Clone(DefaultExceptions),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Strip removes untranslated entries from every table of lang, or of every
// translated language when lang is empty. The base language is never touched.
func (s *Service) Strip(ctx context.Context, catalog *forms.Catalog, lang string) ([]Change, error) {
	var changes []Change
	for _, language := range s.languages(catalog, lang) {
		for _, formID := range catalog.TableForms(language) {
			table, _ := catalog.Table(language, formID)
			stripped, removed := StripUntranslated(table, s.exceptions)
			if len(removed) == 0 {
				continue
			}
			change, err := s.write(ctx, catalog, language, formID, stripped)
			if err != nil {
				return changes, err
			}
			change.Removed = removed
			changes = append(changes, change)
		}
	}
	return changes, nil
}

// Normalize rewrites the tables of form in row order, dropping empty values
// and keys the form no longer uses. An empty form means every form.
func (s *Service) Normalize(ctx context.Context, catalog *forms.Catalog, formID, lang string) ([]Change, error) {
	formIDs, err := formsFor(catalog, formID)
	if err != nil {
		return nil, err
	}
	var changes []Change
	for _, id := range formIDs {
		form, _ := catalog.Form(id)
		for _, language := range s.languages(catalog, lang) {
			table, ok := catalog.Table(language, id)
			if !ok {
				continue
			}
			normalized := NormalizeTable(form, table)
			change, err := s.write(ctx, catalog, language, id, normalized)
			if err != nil {
				return changes, err
			}
			change.Removed = droppedKeys(table, normalized)
			changes = append(changes, change)
		}
	}
	return changes, nil
}

// Seed writes the identity table of the base language for form.
func (s *Service) Seed(ctx context.Context, catalog *forms.Catalog, formID string) (Change, error) {
	form, ok := catalog.Form(formID)
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	return s.write(ctx, catalog, catalog.BaseLanguage, form.ID, SeedTable(form))
}

// Fill completes the lang table of form with translations the language
// already has for the same texts in other forms, taken in form order.
func (s *Service) Fill(ctx context.Context, catalog *forms.Catalog, formID, lang string) (Change, error) {
	form, ok := catalog.Form(formID)
	if !ok {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	current, _ := catalog.Table(lang, formID)
	var others []forms.Table
	for _, other := range catalog.TableForms(lang) {
		if other == formID || other == forms.MetaFormID {
			continue
		}
		table, _ := catalog.Table(lang, other)
		others = append(others, table)
	}
	filled := FillTable(form, current, others...)
	if len(filled) == 0 {
		return Change{Language: lang, Form: formID}, nil
	}
	return s.write(ctx, catalog, lang, formID, filled)
}

func (s *Service) languages(catalog *forms.Catalog, lang string) []string {
	if lang = strings.TrimSpace(lang); lang != "" {
		return []string{lang}
	}
	return slices.DeleteFunc(catalog.Languages(), func(candidate string) bool {
		return candidate == catalog.BaseLanguage
	})
}

func formsFor(catalog *forms.Catalog, formID string) ([]string, error) {
	if formID = strings.TrimSpace(formID); formID == "" {
		return catalog.FormIDs(), nil
	}
	if _, ok := catalog.Form(formID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	return []string{formID}, nil
}

func droppedKeys(before, after forms.Table) []string {
	var dropped []string
	for key := range before {
		if _, ok := after[key]; !ok {
			dropped = append(dropped, key)
		}
	}
	slices.Sort(dropped)
	return dropped
}

// tableOrder lists the keys of table in row order, followed by the keys the
// form does not use in sorted order.
func tableOrder(form *forms.Form, table forms.Table) []string {
	order := RowOrder(form)
	for _, key := range table.Keys() {
		if !slices.Contains(order, key) {
			order = append(order, key)
		}
	}
	return order
}

func (s *Service) write(ctx context.Context, catalog *forms.Catalog, lang, formID string, table forms.Table) (Change, error) {
	target := catalog.TableFile(lang, formID)
	if target == "" {
		target = path.Join(formID, lang+".csv")
	}
	format, ok := forms.FormatFor(target)
	if !ok {
		format = forms.FormatCSV
	}

	form, _ := catalog.Form(formID)
	data, err := forms.EncodeTable(format, table, tableOrder(form, table))
	if err != nil {
		return Change{}, fmt.Errorf("maintenance: encode %s: %w", target, err)
	}

	change := Change{ID: identity.TranslationUUID(lang, formID), Language: lang, Form: formID, Path: target}
	logger := logging.WithArtifactContext(s.logger, lang, formID, "table")
	if s.dryRun || s.store == nil {
		logger.Debug("tables.write.skipped", "path", target, "dry_run", s.dryRun)
		return change, nil
	}

	result, err := s.store.Exec(ctx, pkgstorage.OpWrite, target, bytes.NewReader(data), int64(len(data)), "table", "text/"+string(format), lang)
	if err != nil {
		return change, fmt.Errorf("maintenance: write %s: %w", target, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return change, err
	}
	change.Changed = affected > 0
	logger.Info("tables.write", "path", target, "changed", change.Changed, "translation_id", change.ID.String())
	return change, nil
}
