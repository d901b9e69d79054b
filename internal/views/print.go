package views

import (
	"github.com/goliatone/go-formulare/internal/forms"
)

// PrintPage is one page of the printable overlay.
type PrintPage struct {
	Index      int
	Background bool
	Rows       []PrintRow
}

// PrintRow is a positioned line of the overlay. Content and Translation
// already include any appended fragments.
type PrintRow struct {
	Content     string
	Translation string
	Layout      map[string]any
}

// Print lays the translation of form out page by page. Unfinished entries
// render blank rather than falling back to the source text.
func (b *Builder) Print(lang, formID string) (Context, error) {
	form, err := b.published(lang, formID)
	if err != nil {
		return nil, err
	}
	ctx := b.formContext(lang, form)
	ctx["pages"] = b.PrintPages(lang, form)
	return ctx, nil
}

// PrintPages merges append rows onto their host rows.
func (b *Builder) PrintPages(lang string, form *forms.Form) []PrintPage {
	pages := make([]PrintPage, form.PageCount())
	for i := range pages {
		pages[i] = PrintPage{Index: i, Background: b.backgrounds(form.ID, i)}
	}
	translate := func(key string) string {
		return b.translator.TranslateDefault(key, lang, form.ID, "")
	}
	for _, row := range form.Rows {
		page := &pages[int(row.Page)]
		if row.Append.Set && len(page.Rows) > 0 {
			host := &page.Rows[len(page.Rows)-1]
			host.Content += row.Append.Separator + row.Content
			host.Translation += row.Append.Separator + translate(row.Content)
			continue
		}
		// An append row without a host on its page stands alone.
		page.Rows = append(page.Rows, PrintRow{
			Content:     row.Content,
			Translation: translate(row.Content),
			Layout:      row.Layout,
		})
	}
	return pages
}
