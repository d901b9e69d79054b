// Package reporting prints translation completeness statistics for the
// terminal.
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/pdfs"
)

var (
	// ErrUnknownLanguage is returned when the requested language has no data.
	ErrUnknownLanguage = errors.New("reporting: unknown language")
	// ErrUnknownForm is returned when the requested form does not exist.
	ErrUnknownForm = errors.New("reporting: unknown form")
)

var bucketColors = map[completeness.Bucket]color.Attribute{
	completeness.ExtraPresent: color.FgRed,
	completeness.Missing:      color.FgMagenta,
	completeness.NearMissing:  color.FgYellow,
	completeness.Incomplete:   color.FgCyan,
	completeness.NearComplete: color.FgGreen,
}

// Options selects what Print reports.
type Options struct {
	// Language limits the report to one language. The base language is only
	// reported when named here.
	Language string
	// Form limits the report to one form; "meta" is accepted.
	Form    string
	Verbose bool
}

// Reporter writes the stats report.
type Reporter struct {
	Out   io.Writer
	Color bool
	// PDFs marks translations with a published PDF. Optional.
	PDFs         *pdfs.Finder
	BaseLanguage string
}

// New returns a Reporter that colors output only when out is a terminal.
func New(out io.Writer, baseLanguage string, finder *pdfs.Finder) *Reporter {
	return &Reporter{
		Out:          out,
		Color:        IsTerminal(out),
		PDFs:         finder,
		BaseLanguage: baseLanguage,
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Print writes one block per form: the form identifier followed by a line
// per language.
func (r *Reporter) Print(matrix *completeness.Matrix, catalog *forms.Catalog, opts Options) error {
	langs, err := r.languages(matrix, opts.Language)
	if err != nil {
		return err
	}
	formIDs, err := formsFor(catalog, opts.Form)
	if err != nil {
		return err
	}
	for _, formID := range formIDs {
		form, _ := catalog.Form(formID)
		if err := r.printForm(matrix, form, formID, langs, opts.Verbose); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) languages(matrix *completeness.Matrix, requested string) ([]string, error) {
	all := matrix.Languages()
	if requested = strings.TrimSpace(requested); requested != "" {
		if !slices.Contains(all, requested) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, requested)
		}
		return []string{requested}, nil
	}
	return slices.DeleteFunc(all, func(lang string) bool {
		return lang == r.BaseLanguage
	}), nil
}

func formsFor(catalog *forms.Catalog, requested string) ([]string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		if requested == forms.MetaFormID {
			return []string{requested}, nil
		}
		if _, ok := catalog.Form(requested); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownForm, requested)
		}
		return []string{requested}, nil
	}
	return append([]string{forms.MetaFormID}, catalog.FormIDs()...), nil
}

func (r *Reporter) printForm(matrix *completeness.Matrix, form *forms.Form, formID string, langs []string, verbose bool) error {
	if _, err := fmt.Fprintln(r.Out, formID); err != nil {
		return err
	}
	for _, lang := range langs {
		record, _ := matrix.Record(lang, formID)
		line := fmt.Sprintf("%s: %d/%d", lang, len(record.Translated), record.Total())
		if form != nil && r.hasPDF(lang, form) {
			line += " (pdf)"
		}
		if record.External {
			line += " (external)"
		}
		if err := r.log(line, record.Bucket, 2); err != nil {
			return err
		}
		if !verbose {
			continue
		}
		for _, key := range record.Untranslated {
			if err := r.log(key, completeness.Missing, 4); err != nil {
				return err
			}
		}
		for _, key := range record.Extra {
			if err := r.log(key, completeness.ExtraPresent, 4); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(r.Out)
	return err
}

func (r *Reporter) hasPDF(lang string, form *forms.Form) bool {
	if r.PDFs == nil {
		return false
	}
	_, ok := r.PDFs.Exact(form.ID, lang, form.Date)
	return ok
}

func (r *Reporter) log(text string, bucket completeness.Bucket, indent int) error {
	if attr, ok := bucketColors[bucket]; ok && r.Color {
		c := color.New(attr)
		c.EnableColor()
		text = c.Sprint(text)
	}
	_, err := fmt.Fprintln(r.Out, strings.Repeat(" ", indent)+text)
	return err
}
