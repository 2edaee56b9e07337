package engine

import (
	"fmt"
	"html"
	"strings"
)

// Header and footer defaults, matching wkhtmltopdf.
const (
	defaultDecorationFontSize = 12
	defaultDecorationFont     = "Arial"
)

// Chrome fills these classes when printing headers and footers.
var substitutions = strings.NewReplacer(
	"[page]", `<span class="pageNumber"></span>`,
	"[topage]", `<span class="totalPages"></span>`,
	"[date]", `<span class="date"></span>`,
	"[title]", `<span class="title"></span>`,
	"[webpage]", `<span class="url"></span>`,
)

// decorationTemplate builds a print template from the header.* or
// footer.* keys of cfg. It returns "" when nothing would be printed.
func decorationTemplate(cfg *config, prefix string) string {
	left := cfg.text(prefix+".left", "")
	center := cfg.text(prefix+".center", "")
	right := cfg.text(prefix+".right", "")
	line := cfg.flag(prefix+".line", false)
	if left == "" && center == "" && right == "" && !line {
		return ""
	}

	border := ""
	if line {
		side := "bottom"
		if prefix == "footer" {
			side = "top"
		}
		border = fmt.Sprintf("border-%s: 1px solid #000; ", side)
	}

	return fmt.Sprintf(
		`<div style="%swidth: 100%%; margin: 0 0.4in; display: flex; justify-content: space-between; font-size: %dpt; font-family: %s;">`+
			`<span>%s</span><span>%s</span><span>%s</span></div>`,
		border,
		cfg.integer(prefix+".fontSize", defaultDecorationFontSize),
		html.EscapeString(cfg.text(prefix+".fontName", defaultDecorationFont)),
		substitute(left), substitute(center), substitute(right),
	)
}

// substitute escapes s and expands the page variables.
func substitute(s string) string {
	return substitutions.Replace(html.EscapeString(s))
}

// Templates returns the header and footer templates to hand to the
// browser. When only one is set, the other is blank instead of Chrome's
// default.
func (p *Page) Templates() (header, footer string) {
	header, footer = p.HeaderTemplate, p.FooterTemplate
	if header == "" {
		header = "<span></span>"
	}
	if footer == "" {
		footer = "<span></span>"
	}
	return header, footer
}
