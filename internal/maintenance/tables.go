// Package maintenance implements the translation table chores: removing
// untranslated entries, reordering tables along their form, seeding the
// base language and filling tables from translations of other forms.
package maintenance

import (
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/goliatone/go-formulare/internal/forms"
)

// DefaultExceptions are keys that legitimately translate to themselves.
var DefaultExceptions = []string{"BIC", "IBAN"}

// RowOrder returns the distinct row contents of form in first-appearance order.
func RowOrder(form *forms.Form) []string {
	if form == nil {
		return nil
	}
	seen := map[string]struct{}{}
	order := make([]string, 0, len(form.Rows))
	for _, row := range form.Rows {
		if row.Content == "" {
			continue
		}
		if _, ok := seen[row.Content]; ok {
			continue
		}
		seen[row.Content] = struct{}{}
		order = append(order, row.Content)
	}
	return order
}

// StripUntranslated drops entries whose value equals their key, apart from
// exceptions. It returns the remaining table and the removed keys, sorted.
func StripUntranslated(table forms.Table, exceptions []string) (forms.Table, []string) {
	out := forms.Table{}
	var removed []string
	for key, value := range table {
		if value == key && !slices.Contains(exceptions, key) {
			removed = append(removed, key)
			continue
		}
		out[key] = value
	}
	slices.Sort(removed)
	return out, removed
}

// NormalizeTable keeps only non-empty entries for keys the form still uses.
func NormalizeTable(form *forms.Form, table forms.Table) forms.Table {
	keys := form.Keys()
	out := forms.Table{}
	for key, value := range table {
		if value == "" || !keys.Has(key) {
			continue
		}
		out[key] = value
	}
	return out
}

// SeedTable maps every source text of form onto itself.
func SeedTable(form *forms.Form) forms.Table {
	out := forms.Table{}
	for _, key := range RowOrder(form) {
		out[key] = key
	}
	return out
}

// FillTable completes current with translations of the same keys found in
// other tables of the language. Existing values win, then others in the
// order given.
func FillTable(form *forms.Form, current forms.Table, others ...forms.Table) forms.Table {
	out := forms.Table{}
	for _, key := range RowOrder(form) {
		if value := current[key]; value != "" {
			out[key] = value
			continue
		}
		for _, other := range others {
			if value := other[key]; value != "" {
				out[key] = value
				break
			}
		}
	}
	return out
}

var (
	repeatedSpaces = regexp.MustCompile(`  +`)
	spaceBeforeNL  = regexp.MustCompile(` +\n`)
	spaceAfterNL   = regexp.MustCompile(`\n +`)
)

// NormalizeText folds single line breaks into spaces while keeping paragraph
// breaks, so text exported from other tools matches form row contents.
func NormalizeText(s string) string {
	const paragraph = "\x00"
	s = strings.ReplaceAll(s, "\n\n", paragraph)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, paragraph, "\n\n")
	s = strings.ReplaceAll(s, "…", "...")
	s = strings.TrimSpace(s)
	s = repeatedSpaces.ReplaceAllString(s, " ")
	s = spaceBeforeNL.ReplaceAllString(s, "\n")
	s = spaceAfterNL.ReplaceAllString(s, "\n")
	return s
}

// WriteCSV writes table as two-column CSV in form row order.
func WriteCSV(w io.Writer, form *forms.Form, table forms.Table) error {
	data, err := forms.EncodeTable(forms.FormatCSV, table, RowOrder(form))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
