// Package views assembles the template context of every page kind from the
// published view of a catalog. Builders never read unpublished tables.
package views

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/goliatone/go-formulare/internal/availability"
	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/i18n"
	"github.com/goliatone/go-formulare/internal/pdfs"
)

// Context is the data handed to a template.
type Context = map[string]any

// DefaultFormViewURL is linked from translation pages of forms that do not
// declare their own form_view_url.
const DefaultFormViewURL = "print/"

var (
	// ErrUnknownLanguage is returned for languages that are not published.
	ErrUnknownLanguage = errors.New("views: language not published")
	// ErrUnknownForm is returned for forms missing from the catalog.
	ErrUnknownForm = errors.New("views: unknown form")
	// ErrNotPublished is returned when a language does not publish a form.
	ErrNotPublished = errors.New("views: translation not published")
)

// BackgroundFunc reports whether a print background exists for a form page.
type BackgroundFunc func(form string, page int) bool

// Builder produces page contexts.
type Builder struct {
	view        *availability.View
	catalog     *forms.Catalog
	matrix      *completeness.Matrix
	translator  *i18n.Translator
	pdfs        *pdfs.Finder
	backgrounds BackgroundFunc
	base        string
	baseURL     string
}

// Config lists what a Builder reads from.
type Config struct {
	View         *availability.View
	Matrix       *completeness.Matrix
	Translator   *i18n.Translator
	PDFs         *pdfs.Finder
	Backgrounds  BackgroundFunc
	BaseLanguage string
	BaseURL      string
}

// NewBuilder returns a Builder. The translator defaults to the standard chain
// over View.
func NewBuilder(cfg Config) *Builder {
	b := &Builder{
		view:        cfg.View,
		catalog:     cfg.View.Catalog(),
		matrix:      cfg.Matrix,
		translator:  cfg.Translator,
		pdfs:        cfg.PDFs,
		backgrounds: cfg.Backgrounds,
		base:        cfg.BaseLanguage,
		baseURL:     cfg.BaseURL,
	}
	if b.translator == nil {
		b.translator = i18n.NewTranslator(cfg.View, cfg.BaseLanguage)
	}
	if b.backgrounds == nil {
		b.backgrounds = func(string, int) bool { return false }
	}
	if b.baseURL == "" {
		b.baseURL = "/"
	}
	if !strings.HasSuffix(b.baseURL, "/") {
		b.baseURL += "/"
	}
	return b
}

// Translator returns the lookup chain used for page contexts.
func (b *Builder) Translator() *i18n.Translator {
	return b.translator
}

func (b *Builder) common(lang string) Context {
	return Context{
		"lang_id":       lang,
		"base_language": b.base,
		"base_url":      b.baseURL,
		"direction":     b.translator.TextDirection(lang),
	}
}

// Index lists every published language.
func (b *Builder) Index() Context {
	ctx := b.common(b.base)
	ctx["translations"] = b.view.Languages()
	return ctx
}

// Language lists the forms lang publishes.
func (b *Builder) Language(lang string) (Context, error) {
	if !slices.Contains(b.view.Languages(), lang) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}
	published := b.view.Forms(lang)
	list := make([]*forms.Form, 0, len(published))
	for _, id := range published {
		if form, ok := b.catalog.Form(id); ok {
			list = append(list, form)
		}
	}
	ctx := b.common(lang)
	ctx["translations"] = b.view.Languages()
	ctx["forms"] = list
	ctx["any_translations"] = len(list) > 0
	return ctx, nil
}

func (b *Builder) published(lang, formID string) (*forms.Form, error) {
	if !slices.Contains(b.view.Languages(), lang) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}
	form, ok := b.catalog.Form(formID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	if !b.view.IsPublished(lang, formID) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotPublished, lang, formID)
	}
	return form, nil
}

func (b *Builder) formContext(lang string, form *forms.Form) Context {
	ctx := b.common(lang)
	ctx["form"] = form
	ctx["form_id"] = form.ID
	return ctx
}

// AvailableLanguages returns the other languages publishing form.
func (b *Builder) AvailableLanguages(lang, formID string) []string {
	return lo.Filter(b.view.LanguagesFor(formID), func(other string, _ int) bool {
		return other != lang
	})
}

// Translation is the on-screen translation of one form.
func (b *Builder) Translation(lang, formID string) (Context, error) {
	form, err := b.published(lang, formID)
	if err != nil {
		return nil, err
	}
	ctx := b.formContext(lang, form)
	ctx["available_languages"] = b.AvailableLanguages(lang, formID)
	ctx["pdf"] = ""
	if ref, ok := b.PDF(lang, form); ok {
		ctx["pdf"] = ref.URL
	}
	ctx["form_view_url"] = FormViewURL(form)
	return ctx, nil
}

// PDF returns the PDF matching the form's current date.
func (b *Builder) PDF(lang string, form *forms.Form) (pdfs.Ref, bool) {
	if b.pdfs == nil || form == nil {
		return pdfs.Ref{}, false
	}
	return b.pdfs.Exact(form.ID, lang, form.Date)
}

// FormViewURL returns the link from a translation page to its form view.
func FormViewURL(form *forms.Form) string {
	if form != nil && form.FormViewURL != "" {
		return form.FormViewURL
	}
	return DefaultFormViewURL
}

// Resource is the context of a custom per-form template.
func (b *Builder) Resource(lang, formID string) (Context, error) {
	form, err := b.published(lang, formID)
	if err != nil {
		return nil, err
	}
	return b.formContext(lang, form), nil
}

// Stats exposes the completeness matrix.
func (b *Builder) Stats() Context {
	ctx := b.common(b.base)
	langs := lo.Filter(b.matrix.Languages(), func(lang string, _ int) bool {
		return lang != b.base
	})
	formIDs := b.matrix.Forms()
	rows := make([]StatsRow, 0, len(formIDs))
	for _, formID := range formIDs {
		row := StatsRow{Form: formID, Cells: make([]StatsCell, 0, len(langs))}
		for _, lang := range langs {
			record, _ := b.matrix.Record(lang, formID)
			row.Cells = append(row.Cells, StatsCell{
				Language:   lang,
				Translated: len(record.Translated),
				Total:      record.Total(),
				Extra:      len(record.Extra),
				Bucket:     record.Bucket.String(),
				External:   record.External,
				Record:     record,
			})
		}
		rows = append(rows, row)
	}
	formsByID := make(map[string]*forms.Form, len(formIDs))
	for _, id := range b.catalog.FormIDs() {
		form, _ := b.catalog.Form(id)
		formsByID[id] = form
	}
	ctx["stats"] = b.matrix
	ctx["rows"] = rows
	ctx["langs"] = langs
	ctx["forms"] = formsByID
	ctx["form_ids"] = slices.Sorted(maps.Keys(formsByID))
	return ctx
}

// StatsRow is one form of the stats table.
type StatsRow struct {
	Form  string
	Cells []StatsCell
}

// StatsCell is one (language, form) entry of the stats table.
type StatsCell struct {
	Language   string
	Translated int
	Total      int
	Extra      int
	Bucket     string
	External   bool
	Record     completeness.Record
}
