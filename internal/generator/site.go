package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/goliatone/go-formulare/internal/availability"
	"github.com/goliatone/go-formulare/internal/completeness"
	"github.com/goliatone/go-formulare/internal/forms"
	"github.com/goliatone/go-formulare/internal/i18n"
	"github.com/goliatone/go-formulare/internal/pdfs"
	"github.com/goliatone/go-formulare/internal/templates"
	"github.com/goliatone/go-formulare/internal/views"
)

// site is the read-only snapshot a build renders from. It is assembled
// completely before any artifact is rendered.
type site struct {
	catalog    *forms.Catalog
	matrix     *completeness.Matrix
	view       *availability.View
	translator *i18n.Translator
	builder    *views.Builder
	renderer   *templates.Renderer
	templates  fs.FS
	static     fs.FS
}

func (s *service) loadSite(ctx context.Context) (*site, error) {
	data := s.deps.Data
	if data == nil {
		data = os.DirFS(s.cfg.DataDir)
	}
	catalog, err := forms.NewLoader(data,
		forms.WithBaseLanguage(s.cfg.BaseLanguage),
		forms.WithBaseFormTables(s.cfg.BaseFormTables),
		forms.WithLogger(s.loaderLogger),
	).Load(ctx, ".")
	if err != nil {
		return nil, err
	}

	tmplFS := s.deps.Templates
	opts := []templates.Option{}
	if tmplFS != nil {
		opts = append(opts, templates.WithFS(tmplFS))
	}
	renderer, err := templates.New(s.cfg.TemplateDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	if tmplFS == nil {
		tmplFS = os.DirFS(s.cfg.TemplateDir)
	}

	static := s.deps.Static
	if static == nil && s.cfg.StaticDir != "" {
		static = os.DirFS(s.cfg.StaticDir)
	}

	out := &site{
		catalog:   catalog,
		matrix:    completeness.Compute(catalog, s.cfg.MetaReference),
		view:      availability.New(catalog, s.cfg.Threshold),
		renderer:  renderer,
		templates: tmplFS,
		static:    static,
	}
	out.translator = i18n.NewTranslator(out.view, s.cfg.BaseLanguage)

	var finder *pdfs.Finder
	if static != nil {
		finder = pdfs.NewFinderFS(static, s.cfg.PDFDir, s.pdfURLPrefix())
	}
	out.builder = views.NewBuilder(views.Config{
		View:         out.view,
		Matrix:       out.matrix,
		Translator:   out.translator,
		PDFs:         finder,
		Backgrounds:  out.hasBackground,
		BaseLanguage: s.cfg.BaseLanguage,
		BaseURL:      s.cfg.BaseURL,
	})

	if err := out.installHelpers(s.deps.Markdown); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) pdfURLPrefix() string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	return base + "/" + path.Join("static", s.cfg.PDFDir)
}

// hasBackground reports whether static/forms/<form>/bg-<page>.svg exists.
func (st *site) hasBackground(formID string, page int) bool {
	if st.static == nil {
		return false
	}
	info, err := fs.Stat(st.static, backgroundPath(formID, page))
	return err == nil && !info.IsDir()
}

func (st *site) installHelpers(parser MarkdownParser) error {
	if err := st.renderer.GlobalContext(st.translator.Helpers()); err != nil {
		return fmt.Errorf("generator: install template helpers: %w", err)
	}
	if parser == nil {
		return nil
	}
	return st.renderer.RegisterFilter("markdown", func(input any, _ any) (any, error) {
		if input == nil {
			return templates.SafeString(""), nil
		}
		html, err := parser.String(fmt.Sprint(input))
		if err != nil {
			return nil, err
		}
		return templates.SafeString(html), nil
	})
}

// contextFor builds the template data of an artifact.
func (st *site) contextFor(artifact Artifact) (views.Context, error) {
	switch artifact.Kind {
	case KindIndex:
		return st.builder.Index(), nil
	case KindStats:
		return st.builder.Stats(), nil
	case KindOverview:
		return st.builder.Overview(), nil
	case KindLanguage:
		return st.builder.Language(artifact.Language)
	case KindTranslation:
		return st.builder.Translation(artifact.Language, artifact.Form)
	case KindPrint:
		return st.builder.Print(artifact.Language, artifact.Form)
	case KindResource:
		return st.builder.Resource(artifact.Language, artifact.Form)
	default:
		return nil, fmt.Errorf("generator: unknown artifact kind %q", artifact.Kind)
	}
}
