// Package availability decides which translations are shown on the site.
//
// A language is published only when it has a meta table. Its meta table is
// then always published, and a form table is published when it covers at
// least the threshold share of the form's keys. Page builders read tables
// exclusively through a View so "what is shown" matches "what is counted".
package availability

import (
	"maps"
	"math"
	"slices"

	"github.com/goliatone/go-formulare/internal/forms"
)

// DefaultThreshold is the coverage a form table needs to be published.
const DefaultThreshold = 0.8

// View is the published subset of a catalog. It is immutable.
type View struct {
	catalog   *forms.Catalog
	published map[string]map[string]forms.Table
}

// New filters catalog with the given coverage threshold. Thresholds outside
// (0, 1] fall back to DefaultThreshold.
func New(catalog *forms.Catalog, threshold float64) *View {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	view := &View{
		catalog:   catalog,
		published: map[string]map[string]forms.Table{},
	}
	for _, lang := range catalog.Languages() {
		meta, ok := catalog.Table(lang, forms.MetaFormID)
		if !ok {
			continue
		}
		tables := map[string]forms.Table{forms.MetaFormID: meta}
		for _, formID := range catalog.TableForms(lang) {
			form, ok := catalog.Form(formID)
			if !ok {
				continue
			}
			table, _ := catalog.Table(lang, formID)
			if Covers(form.Keys(), table, threshold) {
				tables[formID] = table
			}
		}
		view.published[lang] = tables
	}
	return view
}

// Covers reports whether table translates at least threshold of keys. Only
// keys of the form count; stale extra entries do not inflate coverage.
func Covers(keys forms.KeySet, table forms.Table, threshold float64) bool {
	translated := 0
	for _, key := range keys.Values() {
		if _, ok := table[key]; ok {
			translated++
		}
	}
	// Compare in integer tenths of a percent so 8/10 against 0.8 is exact.
	required := int(math.Round(threshold * 1000))
	return translated*1000 >= required*keys.Len()
}

// IsPublished reports whether lang shows form.
func (v *View) IsPublished(lang, form string) bool {
	if v == nil {
		return false
	}
	_, ok := v.published[lang][form]
	return ok
}

// Languages returns every published language, sorted.
func (v *View) Languages() []string {
	if v == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(v.published))
}

// Forms returns the published non-meta forms of lang, sorted.
func (v *View) Forms(lang string) []string {
	if v == nil {
		return nil
	}
	ids := make([]string, 0, len(v.published[lang]))
	for formID := range v.published[lang] {
		if formID != forms.MetaFormID {
			ids = append(ids, formID)
		}
	}
	slices.Sort(ids)
	return ids
}

// HasForms reports whether lang publishes anything besides meta.
func (v *View) HasForms(lang string) bool {
	return len(v.Forms(lang)) > 0
}

// LanguagesFor returns the languages publishing form, sorted.
func (v *View) LanguagesFor(form string) []string {
	if v == nil {
		return nil
	}
	var langs []string
	for lang, tables := range v.published {
		if _, ok := tables[form]; ok {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs)
	return langs
}

// Table returns a published table.
func (v *View) Table(lang, form string) (forms.Table, bool) {
	if v == nil {
		return nil, false
	}
	table, ok := v.published[lang][form]
	return table, ok
}

// Catalog returns the catalog the view was built from.
func (v *View) Catalog() *forms.Catalog {
	if v == nil {
		return nil
	}
	return v.catalog
}
