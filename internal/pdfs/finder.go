// Package pdfs discovers pre-rendered translated PDFs by naming convention.
//
// A PDF for form F in language L of form date D is named F_L_D.pdf and lives
// in a flat directory that is published under a URL prefix.
package pdfs

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Ref points at a discovered PDF.
type Ref struct {
	Name string
	Path string
	URL  string
}

// Finder looks up PDFs in Dir.
type Finder struct {
	Dir       string
	URLPrefix string

	fsys fs.FS
}

// NewFinder returns a Finder rooted at dir.
func NewFinder(dir, urlPrefix string) *Finder {
	return &Finder{Dir: dir, URLPrefix: urlPrefix}
}

// NewFinderFS returns a Finder over the dir subtree of fsys; Path values are
// joined onto dir.
func NewFinderFS(fsys fs.FS, dir, urlPrefix string) *Finder {
	return &Finder{Dir: dir, URLPrefix: urlPrefix, fsys: fsys}
}

// FileName returns the conventional name of a PDF.
func FileName(form, lang, date string) string {
	return form + "_" + lang + "_" + date + ".pdf"
}

// Exact reports the PDF matching the form's current date.
func (f *Finder) Exact(form, lang, date string) (Ref, bool) {
	fsys := f.filesystem()
	if fsys == nil || form == "" || lang == "" {
		return Ref{}, false
	}
	name := FileName(form, lang, date)
	info, err := fs.Stat(fsys, name)
	if err != nil || info.IsDir() {
		return Ref{}, false
	}
	return f.ref(name), true
}

// Latest returns the lexicographically greatest PDF for form and lang,
// whatever its date.
func (f *Finder) Latest(form, lang string) (Ref, bool) {
	matches := f.Matches(form, lang)
	if len(matches) == 0 {
		return Ref{}, false
	}
	return f.ref(matches[len(matches)-1]), true
}

// Matches returns every PDF name for form and lang, sorted.
func (f *Finder) Matches(form, lang string) []string {
	fsys := f.filesystem()
	if fsys == nil || form == "" || lang == "" {
		return nil
	}
	prefix := form + "_" + lang + "_"
	candidates, err := doublestar.Glob(fsys, prefix+"*.pdf", doublestar.WithFilesOnly())
	if err != nil {
		return nil
	}
	// "a_b_*.pdf" also matches form a_b in language c; keep only names whose
	// date part has no further separator.
	matches := candidates[:0]
	for _, name := range candidates {
		date := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".pdf")
		if date != "" && !strings.Contains(date, "_") {
			matches = append(matches, name)
		}
	}
	slices.Sort(matches)
	return matches
}

func (f *Finder) ref(name string) Ref {
	ref := Ref{Name: name, Path: path.Join(f.Dir, name)}
	if f.fsys == nil {
		ref.Path = filepath.Join(f.Dir, name)
	}
	prefix := f.URLPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ref.URL = prefix + name
	return ref
}

func (f *Finder) filesystem() fs.FS {
	if f == nil {
		return nil
	}
	if f.fsys != nil {
		dir := strings.Trim(path.Clean(filepath.ToSlash(f.Dir)), "/")
		if dir == "" || dir == "." {
			return f.fsys
		}
		sub, err := fs.Sub(f.fsys, dir)
		if err != nil {
			return nil
		}
		return sub
	}
	if f.Dir == "" {
		return nil
	}
	return os.DirFS(f.Dir)
}
