package views

import (
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
)

// LanguageKey is the meta entry holding a language's own name.
const LanguageKey = "language"

// OverviewForm lists the downloadable translations of one form.
type OverviewForm struct {
	ID       string
	Anchor   string
	Title    string
	Links    []OverviewLink
	External []ExternalLink
}

// OverviewLink points at a PDF or generated view in one language.
type OverviewLink struct {
	Language string
	Label    string
	URL      string
	PDF      bool
}

// ExternalLink points at a translation maintained elsewhere.
type ExternalLink struct {
	Name string
	URL  string
}

// Overview lists, per form, the latest PDF of each language or the generated
// form view of fully translated languages, plus external translations.
// Forms with nothing to link are omitted.
func (b *Builder) Overview() Context {
	ctx := b.common(b.base)
	ctx["forms"] = b.OverviewForms()
	return ctx
}

// OverviewForms builds the overview entries in form order.
func (b *Builder) OverviewForms() []OverviewForm {
	langs := slices.DeleteFunc(b.catalog.Languages(), func(lang string) bool {
		return lang == b.base
	})
	var out []OverviewForm
	for _, formID := range b.catalog.FormIDs() {
		form, _ := b.catalog.Form(formID)
		entry := OverviewForm{ID: formID, Anchor: anchor(formID), Title: form.Title}
		for _, lang := range langs {
			if link, ok := b.overviewLink(lang, form); ok {
				entry.Links = append(entry.Links, link)
			}
		}
		for _, name := range slices.Sorted(maps.Keys(form.External)) {
			entry.External = append(entry.External, ExternalLink{Name: name, URL: form.External[name]})
		}
		if len(entry.Links) == 0 && len(entry.External) == 0 {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (b *Builder) overviewLink(lang string, form *forms.Form) (OverviewLink, bool) {
	link := OverviewLink{Language: lang, Label: b.languageName(lang)}
	if b.pdfs != nil {
		if ref, ok := b.pdfs.Latest(form.ID, lang); ok {
			link.URL = ref.URL
			link.PDF = true
			return link, true
		}
	}
	if form.FormViewURL == "" || b.matrix == nil || !b.view.IsPublished(lang, form.ID) {
		return OverviewLink{}, false
	}
	record, ok := b.matrix.Record(lang, form.ID)
	if !ok || record.Bucket != completeness.OK {
		return OverviewLink{}, false
	}
	link.URL = b.baseURL + path.Join(lang, form.ID, form.FormViewURL)
	if strings.HasSuffix(form.FormViewURL, "/") {
		link.URL += "/"
	}
	return link, true
}

// languageName reads the language's own name from its published meta table, falling
// back to the base language meta and finally to the language code.
func (b *Builder) languageName(lang string) string {
	if table, ok := b.view.Table(lang, forms.MetaFormID); ok {
		if name := table[LanguageKey]; name != "" {
			return name
		}
	}
	if table, ok := b.view.Table(b.base, forms.MetaFormID); ok {
		if name := table[LanguageKey]; name != "" {
			return name
		}
	}
	return lang
}

func anchor(formID string) string {
	normalized, err := slug.Normalize(formID)
	if err != nil || normalized == "" {
		return strings.ToLower(formID)
	}
	return normalized
}
