package reporting_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/pdfs"
	"github.com/goliatone/go-formulare/internal/reporting"
)

func loadFixture(t *testing.T) (*completeness.Matrix, *forms.Catalog) {
	t.Helper()
	fsys := fstest.MapFS{
		"antrag/form.json": {Data: []byte(`{"date": "2020", "external_langs": ["fr"], "rows": [
			{"content": "Name"}, {"content": "Ort"}, {"content": "PLZ"}
		]}`)},
		"antrag/en.csv": {Data: []byte("Name,Name\nOrt,Place\nAlt,Old\n")},
		"antrag/fr.csv": {Data: []byte("Name,Nom\nOrt,Lieu\nPLZ,Code\n")},
		"meta/de.csv":   {Data: []byte("language,Deutsch\n")},
		"meta/en.csv":   {Data: []byte("language,English\n")},
	}
	catalog, err := forms.NewLoader(fsys).Load(context.Background(), ".")
	require.NoError(t, err)
	return completeness.Compute(catalog, "en"), catalog
}

func TestPrintSummary(t *testing.T) {
	matrix, catalog := loadFixture(t)
	finder := pdfs.NewFinderFS(fstest.MapFS{"pdf/antrag_en_2020.pdf": {}}, "pdf", "/static/pdf")

	var out bytes.Buffer
	reporter := reporting.New(&out, "de", finder)
	require.False(t, reporter.Color, "a buffer is not a terminal")
	require.NoError(t, reporter.Print(matrix, catalog, reporting.Options{}))

	expected := strings.Join([]string{
		"meta",
		"  en: 1/1",
		"  fr: 0/1",
		"",
		"antrag",
		"  en: 2/3 (pdf)",
		"  fr: 3/3 (external)",
		"",
		"",
	}, "\n")
	assert.Equal(t, expected, out.String())
}

func TestPrintVerboseSingleForm(t *testing.T) {
	matrix, catalog := loadFixture(t)

	var out bytes.Buffer
	reporter := &reporting.Reporter{Out: &out, BaseLanguage: "de"}
	require.NoError(t, reporter.Print(matrix, catalog, reporting.Options{Form: "antrag", Language: "en", Verbose: true}))

	assert.Equal(t, "antrag\n  en: 2/3\n    PLZ\n    Alt\n\n", out.String())
}

func TestPrintColors(t *testing.T) {
	matrix, catalog := loadFixture(t)

	var out bytes.Buffer
	reporter := &reporting.Reporter{Out: &out, Color: true, BaseLanguage: "de"}
	require.NoError(t, reporter.Print(matrix, catalog, reporting.Options{Form: "antrag"}))

	lines := strings.Split(out.String(), "\n")
	assert.Contains(t, lines[1], "\x1b[31m", "extra keys are red")
	assert.Equal(t, "  fr: 3/3 (external)", lines[2], "complete translations are plain")
}

func TestPrintBaseLanguageOnRequest(t *testing.T) {
	matrix, catalog := loadFixture(t)

	var out bytes.Buffer
	reporter := &reporting.Reporter{Out: &out, BaseLanguage: "de"}
	require.NoError(t, reporter.Print(matrix, catalog, reporting.Options{Form: "meta", Language: "de"}))
	assert.Equal(t, "meta\n  de: 1/1\n\n", out.String())
}

func TestPrintRejectsUnknownSelections(t *testing.T) {
	matrix, catalog := loadFixture(t)
	reporter := &reporting.Reporter{Out: &bytes.Buffer{}, BaseLanguage: "de"}

	assert.ErrorIs(t, reporter.Print(matrix, catalog, reporting.Options{Language: "xx"}), reporting.ErrUnknownLanguage)
	assert.ErrorIs(t, reporter.Print(matrix, catalog, reporting.Options{Form: "nope"}), reporting.ErrUnknownForm)
}
