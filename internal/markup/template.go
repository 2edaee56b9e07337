package markup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/flosch/pongo2/v6"
)

// ErrTemplate indicates a template could not be parsed or executed.
var ErrTemplate = errors.New("template rendering failed")

// Vars are the variables visible to a template.
type Vars map[string]any

// TemplateSource renders a Django-style template ({{ var }}, {% for %},
// {% if %}, filters). Output is autoescaped; use the |safe filter for
// trusted markup.
type TemplateSource struct {
	text string
	path string
	vars Vars
}

// Template returns a Source rendering text with vars.
func Template(text string, vars Vars) *TemplateSource {
	return &TemplateSource{text: text, vars: vars}
}

// TemplateFile returns a Source rendering the template at path. Includes
// and extends resolve relative to the template's directory.
func TemplateFile(path string, vars Vars) *TemplateSource {
	return &TemplateSource{path: path, vars: vars}
}

// Markup executes the template.
func (t *TemplateSource) Markup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tpl, err := t.compile()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	out, err := tpl.Execute(pongo2.Context(t.vars))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return out, nil
}

func (t *TemplateSource) compile() (*pongo2.Template, error) {
	if t.path == "" {
		return pongo2.FromString(t.text)
	}
	dir, name := filepath.Split(t.path)
	if dir == "" {
		dir = "."
	}
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, err
	}
	// A private set keeps templates out of pongo2's global cache.
	return pongo2.NewSet("html2pdf", loader).FromFile(name)
}
