package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// MetaFormID names the pseudo-form holding UI strings (language name, text
// direction, about text) that every published language must provide.
const MetaFormID = "meta"

// Form is a bureaucratic document: ordered rows of source-language text.
type Form struct {
	ID            string            `json:"-"`
	Title         string            `json:"title"`
	URL           string            `json:"url,omitempty"`
	Date          string            `json:"date"`
	Rows          []Row             `json:"rows"`
	FormViewURL   string            `json:"form_view_url,omitempty"`
	ExternalLangs []string          `json:"external_langs,omitempty"`
	External      map[string]string `json:"external,omitempty"`

	keys   KeySet
	sealed bool
}

// Keys returns the form's key set, the denominator of every completeness
// ratio. Loaded forms cache it; forms built in code derive it from Rows on
// every call.
func (f *Form) Keys() KeySet {
	if f == nil {
		return KeySet{}
	}
	if f.sealed {
		return f.keys
	}
	return rowKeys(f.Rows)
}

// IsExternal reports whether translations for lang are maintained elsewhere.
func (f *Form) IsExternal(lang string) bool {
	return f != nil && slices.Contains(f.ExternalLangs, lang)
}

// PageCount is one past the highest page index used by any row.
func (f *Form) PageCount() int {
	if f == nil || len(f.Rows) == 0 {
		return 0
	}
	highest := 0
	for _, row := range f.Rows {
		highest = max(highest, int(row.Page))
	}
	return highest + 1
}

func (f *Form) seal() {
	f.keys = rowKeys(f.Rows)
	f.sealed = true
}

func rowKeys(rows []Row) KeySet {
	contents := make([]string, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, row.Content)
	}
	return NewKeySet(contents...)
}

// Row is one source-text unit of a form.
type Row struct {
	Content string
	Page    PageIndex
	// Append marks a fragment that continues the previous row on the same line.
	Append Append
	// Layout keeps the remaining row attributes (coordinates, alignment)
	// for print templates.
	Layout map[string]any
}

// UnmarshalJSON decodes the known row fields and keeps everything else in Layout.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var row Row
	if value, ok := raw["content"]; ok {
		if err := json.Unmarshal(value, &row.Content); err != nil {
			return fmt.Errorf("content: %w", err)
		}
	}
	if value, ok := raw["page"]; ok {
		if err := json.Unmarshal(value, &row.Page); err != nil {
			return fmt.Errorf("page: %w", err)
		}
	}
	if value, ok := raw["append"]; ok {
		if err := json.Unmarshal(value, &row.Append); err != nil {
			return fmt.Errorf("append: %w", err)
		}
	}
	for key, value := range raw {
		switch key {
		case "content", "page", "append":
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if row.Layout == nil {
			row.Layout = map[string]any{}
		}
		row.Layout[key] = decoded
	}
	*r = row
	return nil
}

// MarshalJSON writes the row back in its on-disk shape.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Layout)+3)
	maps.Copy(out, r.Layout)
	out["content"] = r.Content
	out["page"] = int(r.Page)
	if r.Append.Set {
		if r.Append.Separator == "" {
			out["append"] = true
		} else {
			out["append"] = r.Append.Separator
		}
	}
	return json.Marshal(out)
}

// PageIndex is a zero-based page number. Form files store it either as a
// number or as a numeric string.
type PageIndex int

func (p *PageIndex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	text := string(data)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	if text == "" {
		*p = 0
		return nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("invalid page index %s", data)
	}
	if value < 0 {
		return fmt.Errorf("negative page index %d", value)
	}
	*p = PageIndex(value)
	return nil
}

// Append is the optional append marker of a row. A string value is the
// separator placed between the host row's text and this fragment; true means
// no separator.
type Append struct {
	Set       bool
	Separator string
}

func (a *Append) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*a = Append{}
	case bytes.Equal(data, []byte("true")):
		*a = Append{Set: true}
	default:
		var separator string
		if err := json.Unmarshal(data, &separator); err != nil {
			return fmt.Errorf("append must be a boolean or a string: %w", err)
		}
		*a = Append{Set: true, Separator: separator}
	}
	return nil
}

// Table maps source text to translated text for one (language, form) pair.
type Table map[string]string

// Keys returns the table keys in sorted order.
func (t Table) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}
