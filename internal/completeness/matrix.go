package completeness

import (
	"github.com/goliatone/go-formulare/internal/forms"
)

// Matrix holds a Record for every loaded language and every form plus meta.
type Matrix struct {
	languages []string
	forms     []string
	records   map[string]map[string]Record
}

// Totals aggregates the records of one language over all forms.
type Totals struct {
	Translated int
	Total      int
	Extra      int
}

// Compute classifies every (language, form) pair of the catalog. Meta keys
// come from the meta table of metaReference.
func Compute(catalog *forms.Catalog, metaReference string) *Matrix {
	matrix := &Matrix{
		languages: catalog.Languages(),
		forms:     append([]string{forms.MetaFormID}, catalog.FormIDs()...),
		records:   map[string]map[string]Record{},
	}
	metaKeys := catalog.MetaKeys(metaReference)
	for _, lang := range matrix.languages {
		perForm := make(map[string]Record, len(matrix.forms))
		for _, formID := range matrix.forms {
			keys := metaKeys
			external := false
			if formID != forms.MetaFormID {
				form, _ := catalog.Form(formID)
				keys = form.Keys()
				external = form.IsExternal(lang)
			}
			table, ok := catalog.Table(lang, formID)
			record := Classify(keys, table, ok)
			record.External = external
			perForm[formID] = record
		}
		matrix.records[lang] = perForm
	}
	return matrix
}

// Languages returns every classified language, sorted.
func (m *Matrix) Languages() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.languages...)
}

// Forms returns meta followed by every form identifier in sorted order.
func (m *Matrix) Forms() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.forms...)
}

// Record returns the record of lang for form.
func (m *Matrix) Record(lang, form string) (Record, bool) {
	if m == nil {
		return Record{}, false
	}
	record, ok := m.records[lang][form]
	return record, ok
}

// Totals sums the form records of lang. Meta and externally translated forms
// are left out.
func (m *Matrix) Totals(lang string) Totals {
	var totals Totals
	if m == nil {
		return totals
	}
	for formID, record := range m.records[lang] {
		if formID == forms.MetaFormID || record.External {
			continue
		}
		totals.Translated += len(record.Translated)
		totals.Total += record.Total()
		totals.Extra += len(record.Extra)
	}
	return totals
}
