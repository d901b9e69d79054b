package i18n

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formulare/internal/availability"
	"github.com/goliatone/go-formulare/internal/forms"
)

func mustTranslator(t *testing.T) *Translator {
	t.Helper()

	fsys := fstest.MapFS{
		"antrag/form.json": {Data: []byte(`{"date": "2020", "rows": [
			{"content": "Name", "page": 0},
			{"content": "Vorname", "page": 0},
			{"content": "Ort", "page": 0},
			{"content": "PLZ", "page": 0},
			{"content": "Straße", "page": 0}
		]}`)},
		"antrag/en.csv": {Data: []byte("Name,Surname\nVorname,First name\nOrt,City\nPLZ,Postcode\n")},
		"antrag/fr.csv": {Data: []byte("Name,Nom\n")},
		"meta/de.csv":   {Data: []byte("title,Formulare\nabout,Über\n")},
		"meta/en.csv":   {Data: []byte("title,Forms\n")},
		"meta/fr.csv":   {Data: []byte("title,Formulaires\n")},
		"meta/fa.csv":   {Data: []byte("title,فرم‌ها\ndirection,rtl\n")},
	}
	catalog, err := forms.NewLoader(fsys).Load(context.Background(), ".")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewTranslator(availability.New(catalog, 0.8), "de")
}

func TestTranslateChain(t *testing.T) {
	translator := mustTranslator(t)

	t.Run("published table hit", func(t *testing.T) {
		if got := translator.Translate("Ort", "en", "antrag"); got != "City" {
			t.Fatalf("expected City, got %q", got)
		}
	})

	t.Run("missing key returns the key", func(t *testing.T) {
		if got := translator.Translate("Straße", "en", "antrag"); got != "Straße" {
			t.Fatalf("expected key echo, got %q", got)
		}
	})

	t.Run("unpublished table is not consulted", func(t *testing.T) {
		if got := translator.Translate("Name", "fr", "antrag"); got != "Name" {
			t.Fatalf("expected key echo for unpublished table, got %q", got)
		}
	})

	t.Run("default wins over base meta", func(t *testing.T) {
		if got := translator.TranslateDefault("about", "en", forms.MetaFormID, ""); got != "" {
			t.Fatalf("expected empty default, got %q", got)
		}
	})

	t.Run("meta falls back to base language", func(t *testing.T) {
		if got := translator.Translate("about", "en", forms.MetaFormID); got != "Über" {
			t.Fatalf("expected base meta fallback, got %q", got)
		}
	})

	t.Run("non meta forms never use base meta", func(t *testing.T) {
		if got := translator.Translate("about", "en", "antrag"); got != "about" {
			t.Fatalf("expected key echo, got %q", got)
		}
	})
}

func TestTextDirection(t *testing.T) {
	translator := mustTranslator(t)

	if got := translator.TextDirection("fa"); got != "rtl" {
		t.Fatalf("expected rtl, got %q", got)
	}
	if got := translator.TextDirection("en"); got != DefaultDirection {
		t.Fatalf("expected %q, got %q", DefaultDirection, got)
	}
	if got := translator.TextDirection("xx"); got != DefaultDirection {
		t.Fatalf("expected %q for unknown language, got %q", DefaultDirection, got)
	}
}

func TestTransifex(t *testing.T) {
	if got := Transifex("antrag", "de-simple"); got != "https://www.transifex.com/kub/formulare/translate/#de_DE/antrag/" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := Transifex("antrag", "ar"); got != "https://www.transifex.com/kub/formulare/translate/#ar/antrag/" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestCustomStrategies(t *testing.T) {
	upper := StrategyFunc(func(req Request) (string, bool) {
		return "[" + req.Key + "]", req.Language == "xx"
	})
	translator := NewTranslator(nil, "de", WithStrategies(upper))

	if got := translator.Translate("Name", "xx", "antrag"); got != "[Name]" {
		t.Fatalf("expected custom strategy result, got %q", got)
	}
	if got := translator.Translate("Name", "en", "antrag"); got != "Name" {
		t.Fatalf("expected key echo, got %q", got)
	}
}

func TestHelpersRegistered(t *testing.T) {
	helpers := mustTranslator(t).Helpers()
	for _, name := range []string{"translate", "translate_default", "text_direction", "transifex"} {
		if _, ok := helpers[name]; !ok {
			t.Fatalf("expected helper %q", name)
		}
	}
	translate, ok := helpers["translate"].(func(string, string, string) string)
	if !ok {
		t.Fatalf("translate helper has unexpected signature %T", helpers["translate"])
	}
	if got := translate("Name", "en", "antrag"); got != "Surname" {
		t.Fatalf("expected Surname, got %q", got)
	}
}
