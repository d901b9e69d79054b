package forms

import (
	"maps"
	"slices"
)

// Catalog is the immutable result of one load: every form and every
// translation table, with the file each came from. A new Catalog is built
// for every build; nothing is merged across loads.
type Catalog struct {
	// BaseLanguage is the source language of the forms.
	BaseLanguage string

	forms      map[string]*Form
	tables     map[string]map[string]Table
	formFiles  map[string]string
	tableFiles map[string]map[string]string
}

func newCatalog(baseLanguage string) *Catalog {
	return &Catalog{
		BaseLanguage: baseLanguage,
		forms:        map[string]*Form{},
		tables:       map[string]map[string]Table{},
		formFiles:    map[string]string{},
		tableFiles:   map[string]map[string]string{},
	}
}

// Form returns the form with the given identifier.
func (c *Catalog) Form(id string) (*Form, bool) {
	if c == nil {
		return nil, false
	}
	form, ok := c.forms[id]
	return form, ok
}

// FormIDs returns the identifiers of all forms in sorted order.
func (c *Catalog) FormIDs() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.forms))
}

// Languages returns every language that has at least one table, sorted.
func (c *Catalog) Languages() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.tables))
}

// HasLanguage reports whether any table was loaded for lang.
func (c *Catalog) HasLanguage(lang string) bool {
	if c == nil {
		return false
	}
	_, ok := c.tables[lang]
	return ok
}

// Table returns the raw table of lang for form. The second result is false
// when no such table was loaded.
func (c *Catalog) Table(lang, form string) (Table, bool) {
	if c == nil {
		return nil, false
	}
	table, ok := c.tables[lang][form]
	return table, ok
}

// TableForms returns the form identifiers lang has tables for, sorted.
func (c *Catalog) TableForms(lang string) []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.tables[lang]))
}

// FormFile returns the data-relative path of a form definition.
func (c *Catalog) FormFile(form string) string {
	if c == nil {
		return ""
	}
	return c.formFiles[form]
}

// TableFile returns the data-relative path of a translation table.
func (c *Catalog) TableFile(lang, form string) string {
	if c == nil {
		return ""
	}
	return c.tableFiles[lang][form]
}

// LanguageFiles returns the table files of lang in sorted order.
func (c *Catalog) LanguageFiles(lang string) []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Values(c.tableFiles[lang]))
}

// Files returns every loaded data file in sorted order.
func (c *Catalog) Files() []string {
	if c == nil {
		return nil
	}
	files := slices.Collect(maps.Values(c.formFiles))
	for _, perForm := range c.tableFiles {
		files = slices.AppendSeq(files, maps.Values(perForm))
	}
	slices.Sort(files)
	return files
}

// MetaKeys returns the meta key set, taken from the reference language's meta
// table or, failing that, from the base language's.
func (c *Catalog) MetaKeys(reference string) KeySet {
	for _, lang := range []string{reference, c.baseLanguage()} {
		if table, ok := c.Table(lang, MetaFormID); ok {
			return NewKeySet(table.Keys()...)
		}
	}
	return KeySet{}
}

// KeysFor returns the key set of form, resolving meta through MetaKeys.
func (c *Catalog) KeysFor(form, metaReference string) (KeySet, bool) {
	if form == MetaFormID {
		return c.MetaKeys(metaReference), true
	}
	f, ok := c.Form(form)
	if !ok {
		return KeySet{}, false
	}
	return f.Keys(), true
}

func (c *Catalog) baseLanguage() string {
	if c == nil {
		return ""
	}
	return c.BaseLanguage
}

func (c *Catalog) addForm(form *Form, file string) {
	c.forms[form.ID] = form
	c.formFiles[form.ID] = file
}

func (c *Catalog) addTable(lang, form string, table Table, file string) {
	if c.tables[lang] == nil {
		c.tables[lang] = map[string]Table{}
		c.tableFiles[lang] = map[string]string{}
	}
	c.tables[lang][form] = table
	c.tableFiles[lang][form] = file
}

// touchLanguage registers lang without a table so it still shows up in
// statistics, matching languages whose only table is an ignored base table.
func (c *Catalog) touchLanguage(lang string) {
	if c.tables[lang] == nil {
		c.tables[lang] = map[string]Table{}
		c.tableFiles[lang] = map[string]string{}
	}
}
