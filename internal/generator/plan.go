package generator

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/staleness"
	"github.com/goliatone/go-formulare/internal/views"
)

// Kind names the page type an artifact renders.
type Kind string

const (
	KindIndex       Kind = "index"
	KindStats       Kind = "stats"
	KindOverview    Kind = "overview"
	KindLanguage    Kind = "language"
	KindTranslation Kind = "translation"
	KindPrint       Kind = "print"
	KindResource    Kind = "resource"
)

const (
	baseTemplate      = "base.html"
	resourceTemplates = "forms"
)

var pageTemplates = map[Kind]string{
	KindIndex:       "index.html",
	KindStats:       "stats.html",
	KindOverview:    "overview.html",
	KindLanguage:    "language.html",
	KindTranslation: "translation.html",
	KindPrint:       "print.html",
}

// Artifact is one output file of a build.
type Artifact struct {
	Kind     Kind
	Language string
	Form     string
	// Resource is the file name of a per-form custom template.
	Resource string
	// Target is relative to the output directory.
	Target   string
	Template string
	// Dependencies are the source files the target is built from, in the
	// form the sources provider resolves them.
	Dependencies []string
	// Fingerprint captures inputs that are not files.
	Fingerprint string
}

// planner enumerates the artifacts of a loaded site.
type planner struct {
	cfg  Config
	site *site
}

func (p planner) plan(opts BuildOptions) ([]Artifact, error) {
	if err := p.checkFilters(opts); err != nil {
		return nil, err
	}
	langFilter := filterSet(opts.Languages)
	formFilter := filterSet(opts.Forms)
	narrowed := len(langFilter) > 0 || len(formFilter) > 0

	var artifacts []Artifact
	if !narrowed {
		artifacts = append(artifacts, p.index(), p.stats(), p.overview())
	}
	for _, lang := range p.site.view.Languages() {
		if len(langFilter) > 0 && !langFilter[lang] {
			continue
		}
		if len(formFilter) == 0 {
			artifacts = append(artifacts, p.language(lang))
		}
		for _, formID := range p.site.view.Forms(lang) {
			if len(formFilter) > 0 && !formFilter[formID] {
				continue
			}
			artifacts = append(artifacts, p.translation(lang, formID), p.print(lang, formID))
			resources, err := p.resources(lang, formID)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, resources...)
		}
	}
	for i := range artifacts {
		slices.Sort(artifacts[i].Dependencies)
		artifacts[i].Dependencies = slices.Compact(artifacts[i].Dependencies)
	}
	return artifacts, nil
}

func (p planner) checkFilters(opts BuildOptions) error {
	for _, lang := range opts.Languages {
		if !p.site.catalog.HasLanguage(lang) {
			return fmt.Errorf("generator: %w: %s", views.ErrUnknownLanguage, lang)
		}
	}
	for _, formID := range opts.Forms {
		if _, ok := p.site.catalog.Form(formID); !ok {
			return fmt.Errorf("generator: %w: %s", views.ErrUnknownForm, formID)
		}
	}
	return nil
}

func filterSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}

func (p planner) index() Artifact {
	return p.global(KindIndex, "index.html", fingerprint(
		"languages", strings.Join(p.site.view.Languages(), ","),
	))
}

func (p planner) stats() Artifact {
	return p.global(KindStats, "stats/index.html", "")
}

func (p planner) overview() Artifact {
	artifact := p.global(KindOverview, "overview/index.html", "")
	var parts []string
	for _, entry := range p.site.builder.OverviewForms() {
		for _, link := range entry.Links {
			parts = append(parts, entry.ID, link.Language, link.URL)
			if link.PDF {
				artifact.Dependencies = append(artifact.Dependencies, p.pdfPath(link.URL))
			}
		}
	}
	artifact.Fingerprint = fingerprint(append([]string{artifact.Fingerprint}, parts...)...)
	return artifact
}

func (p planner) global(kind Kind, target, extra string) Artifact {
	template := pageTemplates[kind]
	deps := p.dataPaths(p.site.catalog.Files()...)
	deps = append(deps, p.templatePaths(template)...)
	return Artifact{
		Kind:         kind,
		Target:       target,
		Template:     template,
		Dependencies: deps,
		Fingerprint:  fingerprint(extra, p.cfg.BaseURL, p.thresholdKey()),
	}
}

func (p planner) language(lang string) Artifact {
	template := pageTemplates[KindLanguage]
	files := []string{p.site.catalog.TableFile(p.cfg.BaseLanguage, forms.MetaFormID)}
	files = append(files, p.site.catalog.LanguageFiles(lang)...)
	deps := p.dataPaths(files...)
	deps = append(deps, p.metaPaths(p.site.view.Languages())...)
	deps = append(deps, p.templatePaths(template)...)
	return Artifact{
		Kind:         KindLanguage,
		Language:     lang,
		Target:       path.Join(lang, "index.html"),
		Template:     template,
		Dependencies: deps,
		Fingerprint: fingerprint(
			"forms", strings.Join(p.site.view.Forms(lang), ","),
			"languages", strings.Join(p.site.view.Languages(), ","),
			p.cfg.BaseURL,
		),
	}
}

func (p planner) formDependencies(lang, formID string) []string {
	return p.dataPaths(
		p.site.catalog.FormFile(formID),
		p.site.catalog.TableFile(lang, formID),
		p.site.catalog.TableFile(lang, forms.MetaFormID),
		p.site.catalog.TableFile(p.cfg.BaseLanguage, forms.MetaFormID),
	)
}

// metaPaths lists the meta tables of languages a page links to by name.
func (p planner) metaPaths(langs []string) []string {
	files := make([]string, 0, len(langs))
	for _, lang := range langs {
		files = append(files, p.site.catalog.TableFile(lang, forms.MetaFormID))
	}
	return p.dataPaths(files...)
}

func (p planner) translation(lang, formID string) Artifact {
	template := pageTemplates[KindTranslation]
	deps := p.formDependencies(lang, formID)
	deps = append(deps, p.templatePaths(template)...)
	available := p.site.builder.AvailableLanguages(lang, formID)
	deps = append(deps, p.metaPaths(available)...)
	pdfName := ""
	if form, ok := p.site.catalog.Form(formID); ok {
		if ref, found := p.site.builder.PDF(lang, form); found {
			pdfName = ref.Name
			deps = append(deps, p.pdfPath(ref.URL))
		}
	}
	return Artifact{
		Kind:         KindTranslation,
		Language:     lang,
		Form:         formID,
		Target:       path.Join(lang, formID, "index.html"),
		Template:     template,
		Dependencies: deps,
		Fingerprint: fingerprint(
			"available", strings.Join(available, ","),
			"pdf", pdfName,
			p.cfg.BaseURL,
		),
	}
}

func (p planner) print(lang, formID string) Artifact {
	template := pageTemplates[KindPrint]
	deps := p.formDependencies(lang, formID)
	deps = append(deps, p.templatePaths(template)...)
	var pages []string
	if form, ok := p.site.catalog.Form(formID); ok {
		for i := range form.PageCount() {
			if p.site.hasBackground(formID, i) {
				deps = append(deps, p.staticPath(backgroundPath(formID, i)))
				pages = append(pages, strconv.Itoa(i))
			}
		}
	}
	return Artifact{
		Kind:         KindPrint,
		Language:     lang,
		Form:         formID,
		Target:       path.Join(lang, formID, "print", "index.html"),
		Template:     template,
		Dependencies: deps,
		Fingerprint:  fingerprint("backgrounds", strings.Join(pages, ","), p.cfg.BaseURL),
	}
}

func (p planner) resources(lang, formID string) ([]Artifact, error) {
	names, err := resourceNames(p.site.templates, formID)
	if err != nil {
		return nil, err
	}
	out := make([]Artifact, 0, len(names))
	for _, name := range names {
		template := path.Join(resourceTemplates, formID, name)
		deps := p.formDependencies(lang, formID)
		deps = append(deps, p.templatePaths(template)...)
		out = append(out, Artifact{
			Kind:         KindResource,
			Language:     lang,
			Form:         formID,
			Resource:     name,
			Target:       path.Join(lang, formID, "r", name),
			Template:     template,
			Dependencies: deps,
			Fingerprint:  fingerprint("resource", p.cfg.BaseURL),
		})
	}
	return out, nil
}

// resourceNames lists the custom templates of a form in sorted order.
func resourceNames(templates fs.FS, formID string) ([]string, error) {
	if templates == nil {
		return nil, nil
	}
	pattern := path.Join(resourceTemplates, formID, "*")
	matches, err := doublestar.Glob(templates, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("generator: list resources of %s: %w", formID, err)
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, path.Base(match))
	}
	slices.Sort(names)
	return names, nil
}

// templatePaths lists a page template together with the base layout.
func (p planner) templatePaths(name string) []string {
	names := []string{name}
	if name != baseTemplate && p.site.renderer.Exists(baseTemplate) {
		names = append(names, baseTemplate)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, joinSource(p.cfg.TemplateDir, n))
	}
	return out
}

func (p planner) dataPaths(files ...string) []string {
	out := make([]string, 0, len(files))
	for _, file := range files {
		if file == "" {
			continue
		}
		out = append(out, joinSource(p.cfg.DataDir, file))
	}
	return out
}

func (p planner) staticPath(rel string) string {
	return joinSource(p.cfg.StaticDir, rel)
}

// pdfPath maps a PDF link back to its file below the static directory.
func (p planner) pdfPath(url string) string {
	return p.staticPath(path.Join(p.cfg.PDFDir, path.Base(url)))
}

func (p planner) thresholdKey() string {
	return strconv.FormatFloat(p.cfg.Threshold, 'f', -1, 64)
}

func backgroundPath(formID string, page int) string {
	return path.Join("forms", formID, fmt.Sprintf("bg-%d.svg", page))
}

func joinSource(dir, rel string) string {
	if dir == "" {
		return rel
	}
	return path.Join(filepath.ToSlash(dir), rel)
}

func fingerprint(parts ...string) string {
	return staleness.Checksum([]byte(strings.Join(parts, "\x00")))
}
