package interfaces

import (
	"io"
)

// TemplateRenderer renders named templates with a context mapping.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// TemplateResolver is implemented by renderers that can report whether a
// template exists without rendering it.
type TemplateResolver interface {
	Exists(name string) bool
	Path(name string) (string, bool)
}
