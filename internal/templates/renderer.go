// Package templates renders site pages with pongo2 (Django/Jinja syntax,
// template inheritance) from a template directory.
package templates

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formulare/pkg/interfaces"
)

// ErrTemplateNotFound is returned when a named template does not exist.
var ErrTemplateNotFound = errors.New("templates: template not found")

// NotFoundError names the missing template.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("templates: template %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrTemplateNotFound
}

// Renderer implements interfaces.TemplateRenderer on a pongo2 template set.
// A Renderer caches parsed templates; build a new one to pick up edits.
type Renderer struct {
	dir  string
	fsys fs.FS
	set  *pongo2.TemplateSet

	mu      sync.RWMutex
	globals pongo2.Context
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithFS renders from fsys instead of the directory on disk. dir is still
// used to report template paths.
func WithFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		if fsys != nil {
			r.fsys = fsys
		}
	}
}

// New returns a renderer for the templates under dir.
func New(dir string, opts ...Option) (*Renderer, error) {
	r := &Renderer{dir: dir, globals: pongo2.Context{}}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.fsys == nil {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("templates: inspect template directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("templates: template path %q is not a directory", dir)
		}
		r.fsys = os.DirFS(dir)
	}
	r.set = pongo2.NewSet("formulare", &rootLoader{fsys: r.fsys})
	r.set.Options.TrimBlocks = true
	r.set.Options.LStripBlocks = true
	return r, nil
}

// Exists reports whether name is a regular file in the template tree.
func (r *Renderer) Exists(name string) bool {
	clean, ok := cleanName(name)
	if !ok {
		return false
	}
	info, err := fs.Stat(r.fsys, clean)
	return err == nil && !info.IsDir()
}

// Path returns the on-disk location of name.
func (r *Renderer) Path(name string) (string, bool) {
	if !r.Exists(name) {
		return "", false
	}
	clean, _ := cleanName(name)
	return filepath.Join(r.dir, filepath.FromSlash(clean)), true
}

// Render executes the named template with data. Data must be a string keyed
// map. When out is given the result is streamed there and "" is returned.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	clean, ok := cleanName(name)
	if !ok || !r.Exists(clean) {
		return "", &NotFoundError{Name: name}
	}
	tpl, err := r.set.FromCache(clean)
	if err != nil {
		return "", fmt.Errorf("templates: parse %s: %w", clean, err)
	}
	return r.execute(tpl, clean, data, out...)
}

// RenderString executes an inline template.
func (r *Renderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("templates: parse inline template: %w", err)
	}
	return r.execute(tpl, "inline", data, out...)
}

func (r *Renderer) execute(tpl *pongo2.Template, name string, data any, out ...io.Writer) (string, error) {
	ctx, err := r.context(data)
	if err != nil {
		return "", err
	}
	if len(out) > 0 && out[0] != nil {
		if err := tpl.ExecuteWriter(ctx, out[0]); err != nil {
			return "", fmt.Errorf("templates: render %s: %w", name, err)
		}
		return "", nil
	}
	rendered, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("templates: render %s: %w", name, err)
	}
	return rendered, nil
}

func (r *Renderer) context(data any) (pongo2.Context, error) {
	r.mu.RLock()
	ctx := maps.Clone(r.globals)
	r.mu.RUnlock()
	if ctx == nil {
		ctx = pongo2.Context{}
	}
	switch values := data.(type) {
	case nil:
	case pongo2.Context:
		maps.Copy(ctx, values)
	case map[string]any:
		maps.Copy(ctx, values)
	default:
		return nil, fmt.Errorf("templates: unsupported context type %T", data)
	}
	return ctx, nil
}

// RegisterFilter installs fn as a pongo2 filter. pongo2 filters are process
// wide, so a later registration of the same name replaces earlier ones.
func (r *Renderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return fmt.Errorf("templates: filter name and function required")
	}
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		out, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		if safe, ok := out.(SafeString); ok {
			return pongo2.AsSafeValue(string(safe)), nil
		}
		return pongo2.AsValue(out), nil
	}
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, filter)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the values every render sees.
func (r *Renderer) GlobalContext(data any) error {
	var values map[string]any
	switch v := data.(type) {
	case pongo2.Context:
		values = v
	case map[string]any:
		values = v
	default:
		return fmt.Errorf("templates: unsupported global context type %T", data)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.globals, values)
	return nil
}

// rootLoader resolves template references from the template root, so
// {% extends "base.html" %} works the same from forms/<form>/ resources.
// Names starting with ./ or ../ stay relative to the including template.
type rootLoader struct {
	fsys fs.FS
}

func (l *rootLoader) Abs(base, name string) string {
	name = filepath.ToSlash(name)
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		return path.Join(path.Dir(filepath.ToSlash(base)), name)
	}
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l *rootLoader) Get(name string) (io.Reader, error) {
	return l.fsys.Open(name)
}

// SafeString marks filter output that must not be escaped.
type SafeString string

func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(filepath.ToSlash(name))
	if name == "" {
		return "", false
	}
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	return clean, true
}

var (
	_ interfaces.TemplateRenderer = (*Renderer)(nil)
	_ interfaces.TemplateResolver = (*Renderer)(nil)
)
