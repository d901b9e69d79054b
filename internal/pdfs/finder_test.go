package pdfs_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formulare/internal/pdfs"
)

func fixture() fstest.MapFS {
	return fstest.MapFS{
		"pdf/antrag_en_2019-01.pdf":   {Data: []byte("%PDF")},
		"pdf/antrag_en_2020-06.pdf":   {Data: []byte("%PDF")},
		"pdf/antrag_fr_2019-01.pdf":   {Data: []byte("%PDF")},
		"pdf/antrag_en_x_2021-01.pdf": {Data: []byte("%PDF")},
		"pdf/notes.txt":               {Data: []byte("ignored")},
		"antrag_ar_2020-06.pdf":       {Data: []byte("%PDF")},
		"style.css":                   {Data: []byte("body{}")},
	}
}

func TestExact(t *testing.T) {
	finder := pdfs.NewFinderFS(fixture(), "pdf", "/static/pdf")

	ref, ok := finder.Exact("antrag", "en", "2019-01")
	require.True(t, ok)
	assert.Equal(t, "antrag_en_2019-01.pdf", ref.Name)
	assert.Equal(t, "pdf/antrag_en_2019-01.pdf", ref.Path)
	assert.Equal(t, "/static/pdf/antrag_en_2019-01.pdf", ref.URL)

	_, ok = finder.Exact("antrag", "fr", "2020-06")
	assert.False(t, ok, "an older date does not match exactly")
}

func TestLatestPicksGreatestName(t *testing.T) {
	finder := pdfs.NewFinderFS(fixture(), "pdf", "/static/pdf/")

	ref, ok := finder.Latest("antrag", "en")
	require.True(t, ok)
	assert.Equal(t, "antrag_en_2020-06.pdf", ref.Name)
	assert.Equal(t, "/static/pdf/antrag_en_2020-06.pdf", ref.URL)

	_, ok = finder.Latest("antrag", "ar")
	assert.False(t, ok, "files outside the pdf directory are not published")
}

func TestMatchesIgnoresOtherLanguages(t *testing.T) {
	finder := pdfs.NewFinderFS(fixture(), "pdf", "")

	assert.Equal(t, []string{"antrag_en_2019-01.pdf", "antrag_en_2020-06.pdf"}, finder.Matches("antrag", "en"))
	assert.Equal(t, []string{"antrag_en_x_2021-01.pdf"}, finder.Matches("antrag_en", "x"))
}

func TestFinderLooksBelowNestedDir(t *testing.T) {
	fsys := fstest.MapFS{"static/pdf/antrag_en_2020.pdf": {Data: []byte("%PDF")}}

	finder := pdfs.NewFinderFS(fsys, "./static/pdf/", "/static/pdf")
	_, ok := finder.Exact("antrag", "en", "2020")
	assert.True(t, ok)
	ref, ok := finder.Latest("antrag", "en")
	require.True(t, ok)
	assert.Equal(t, "/static/pdf/antrag_en_2020.pdf", ref.URL)

	missing := pdfs.NewFinderFS(fsys, "pdf", "/static/pdf")
	_, ok = missing.Exact("antrag", "en", "2020")
	assert.False(t, ok)
	assert.Empty(t, missing.Matches("antrag", "en"))
}

func TestFinderAtFilesystemRoot(t *testing.T) {
	finder := pdfs.NewFinderFS(fixture(), "", "/pdf")

	ref, ok := finder.Exact("antrag", "ar", "2020-06")
	require.True(t, ok)
	assert.Equal(t, "antrag_ar_2020-06.pdf", ref.Path)
}

func TestFinderOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "antrag_ar_2020.pdf"), []byte("%PDF"), 0o644))

	finder := pdfs.NewFinder(dir, "/pdf")
	ref, ok := finder.Exact("antrag", "ar", "2020")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "antrag_ar_2020.pdf"), ref.Path)

	missing := pdfs.NewFinder(filepath.Join(dir, "absent"), "/pdf")
	_, ok = missing.Latest("antrag", "ar")
	assert.False(t, ok)
}
