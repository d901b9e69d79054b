package i18n

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formulare/internal/availability"
	"github.com/goliatone/go-formulare/internal/forms"
)

// DirectionKey is the meta entry holding a language's writing direction.
const DirectionKey = "direction"

// DefaultDirection is used when a language does not declare a direction.
const DefaultDirection = "auto"

// TransifexURL is the translation editor address for a form and language.
const TransifexURL = "https://www.transifex.com/kub/formulare/translate/#%s/%s/"

// Request describes one lookup. Default is only honoured when HasDefault is
// set, so an explicit empty default is distinct from no default.
type Request struct {
	Key        string
	Language   string
	Form       string
	Default    string
	HasDefault bool
}

// Strategy resolves a request or declines it.
type Strategy interface {
	Lookup(req Request) (string, bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(req Request) (string, bool)

func (fn StrategyFunc) Lookup(req Request) (string, bool) {
	return fn(req)
}

// Translator walks its strategies in order; the first hit wins. When every
// strategy declines, the key itself is returned.
type Translator struct {
	view       *availability.View
	base       string
	strategies []Strategy
}

// Option customises a Translator.
type Option func(*Translator)

// WithStrategies replaces the default chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(t *Translator) {
		t.strategies = append([]Strategy(nil), strategies...)
	}
}

// NewTranslator builds the default chain over the published view: published
// table, caller default, base language meta for meta lookups.
func NewTranslator(view *availability.View, baseLanguage string, opts ...Option) *Translator {
	t := &Translator{view: view, base: baseLanguage}
	t.strategies = []Strategy{
		PublishedTable(view),
		CallerDefault(),
		BaseMeta(view, baseLanguage),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// PublishedTable resolves keys from tables the view publishes.
func PublishedTable(view *availability.View) Strategy {
	return StrategyFunc(func(req Request) (string, bool) {
		table, ok := view.Table(req.Language, req.Form)
		if !ok {
			return "", false
		}
		value, ok := table[req.Key]
		return value, ok
	})
}

// CallerDefault returns the request default when one was supplied.
func CallerDefault() Strategy {
	return StrategyFunc(func(req Request) (string, bool) {
		return req.Default, req.HasDefault
	})
}

// BaseMeta falls back to the base language's meta table for meta lookups.
func BaseMeta(view *availability.View, baseLanguage string) Strategy {
	return StrategyFunc(func(req Request) (string, bool) {
		if req.Form != forms.MetaFormID {
			return "", false
		}
		table, ok := view.Table(baseLanguage, forms.MetaFormID)
		if !ok {
			return "", false
		}
		value, ok := table[req.Key]
		return value, ok
	})
}

// Lookup resolves req through the chain.
func (t *Translator) Lookup(req Request) string {
	if t != nil {
		for _, strategy := range t.strategies {
			if value, ok := strategy.Lookup(req); ok {
				return value
			}
		}
	}
	return req.Key
}

// Translate looks key up for lang and form without a default.
func (t *Translator) Translate(key, lang, form string) string {
	return t.Lookup(Request{Key: key, Language: lang, Form: form})
}

// TranslateDefault looks key up and returns def when the table misses it.
func (t *Translator) TranslateDefault(key, lang, form, def string) string {
	return t.Lookup(Request{Key: key, Language: lang, Form: form, Default: def, HasDefault: true})
}

// TextDirection returns the direction declared in lang's meta table.
func (t *Translator) TextDirection(lang string) string {
	if t == nil {
		return DefaultDirection
	}
	table, ok := t.view.Table(lang, forms.MetaFormID)
	if !ok {
		return DefaultDirection
	}
	if direction, ok := table[DirectionKey]; ok && strings.TrimSpace(direction) != "" {
		return direction
	}
	return DefaultDirection
}

// Transifex returns the editor URL for form in lang.
func Transifex(form, lang string) string {
	if lang == "de-simple" {
		lang = "de_DE"
	}
	return fmt.Sprintf(TransifexURL, lang, form)
}

// BaseLanguage returns the language used for display defaults.
func (t *Translator) BaseLanguage() string {
	if t == nil {
		return ""
	}
	return t.base
}

// Helpers exposes the translator to templates.
func (t *Translator) Helpers() map[string]any {
	return map[string]any{
		"translate":         t.Translate,
		"translate_default": t.TranslateDefault,
		"text_direction":    t.TextDirection,
		"transifex":         Transifex,
	}
}
