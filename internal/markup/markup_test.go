package markup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

func TestMarkdown_Markup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:  "heading with id and title",
			input: "# Quarterly Report\n\nBody text.",
			wantContains: []string{
				`<h1 id="quarterly-report">Quarterly Report</h1>`,
				"<title>Quarterly Report</title>",
				`<meta charset="utf-8">`,
			},
		},
		{
			name:         "no heading means no title",
			input:        "just text",
			wantExcludes: []string{"<title>"},
		},
		{
			name:         "gfm table",
			input:        "| a | b |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:         "highlight marks",
			input:        "this is ==important== text",
			wantContains: []string{"<mark>important</mark>"},
			wantExcludes: []string{"\uE000", "\uE001"},
		},
		{
			name:         "footnote",
			input:        "claim[^1]\n\n[^1]: source",
			wantContains: []string{`class="footnotes"`},
		},
		{
			name:         "code highlighting uses classes",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
			wantExcludes: []string{"style=\"color"},
		},
		{
			name:         "raw html is not rendered",
			input:        "<script>alert(1)</script>",
			wantExcludes: []string{"<script>"},
		},
		{
			name:         "title is escaped",
			input:        "# Fish & <Chips>",
			wantContains: []string{"<title>Fish &amp; &lt;Chips&gt;</title>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Markdown(tt.input).Markup(context.Background())
			if err != nil {
				t.Fatalf("Markup() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Markup() missing %q in:\n%s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Markup() unexpectedly contains %q in:\n%s", exclude, got)
				}
			}
		})
	}
}

func TestMarkdown_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Markdown("# x").Markup(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Markup() error = %v, want context.Canceled", err)
	}
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	got := preprocess("a\r\nb\rc\n\n\n\n\nd")
	want := "a\nb\nc\n\nd"
	if got != want {
		t.Errorf("preprocess() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Template
// ---------------------------------------------------------------------------

func TestTemplate_Markup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		vars    Vars
		want    string
		wantErr error
	}{
		{
			name: "variable",
			text: "<h1>{{ title }}</h1>",
			vars: Vars{"title": "Invoice"},
			want: "<h1>Invoice</h1>",
		},
		{
			name: "loop and condition",
			text: "{% for item in items %}{% if item.paid %}<li>{{ item.name }}</li>{% endif %}{% endfor %}",
			vars: Vars{"items": []map[string]any{
				{"name": "a", "paid": true},
				{"name": "b", "paid": false},
				{"name": "c", "paid": true},
			}},
			want: "<li>a</li><li>c</li>",
		},
		{
			name: "autoescape",
			text: "{{ v }}",
			vars: Vars{"v": "<b>"},
			want: "&lt;b&gt;",
		},
		{
			name: "safe filter",
			text: "{{ v|safe }}",
			vars: Vars{"v": "<b>"},
			want: "<b>",
		},
		{
			name: "nil vars",
			text: "static",
			want: "static",
		},
		{
			name:    "syntax error",
			text:    "{% for %}",
			wantErr: ErrTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Template(tt.text, tt.vars).Markup(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Markup() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Markup() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Markup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemplateFile_Include(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "row.html"), "<td>{{ name }}</td>")
	writeFile(t, filepath.Join(dir, "page.html"), `<table><tr>{% include "row.html" %}</tr></table>`)

	got, err := TemplateFile(filepath.Join(dir, "page.html"), Vars{"name": "Ada"}).Markup(context.Background())
	if err != nil {
		t.Fatalf("Markup() error = %v", err)
	}
	if want := "<table><tr><td>Ada</td></tr></table>"; got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}

func TestTemplateFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := TemplateFile(filepath.Join(t.TempDir(), "nope.html"), nil).Markup(context.Background())
	if !errors.Is(err, ErrTemplate) {
		t.Errorf("Markup() error = %v, want ErrTemplate", err)
	}
}

// ---------------------------------------------------------------------------
// Stylesheets
// ---------------------------------------------------------------------------

func TestInjectStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		css     string
		want    string
	}{
		{
			name:    "before head close",
			content: "<html><head><title>x</title></head><body></body></html>",
			css:     "p{}",
			want:    "<html><head><title>x</title><style>p{}</style></head><body></body></html>",
		},
		{
			name:    "uppercase head",
			content: "<HEAD></HEAD>",
			css:     "p{}",
			want:    "<HEAD><style>p{}</style></HEAD>",
		},
		{
			name:    "after body open",
			content: `<body class="x"><p>hi</p></body>`,
			css:     "p{}",
			want:    `<body class="x"><style>p{}</style><p>hi</p></body>`,
		},
		{
			name:    "prepended to fragment",
			content: "<p>hi</p>",
			css:     "p{}",
			want:    "<style>p{}</style><p>hi</p>",
		},
		{
			name:    "empty css",
			content: "<p>hi</p>",
			want:    "<p>hi</p>",
		},
		{
			name:    "latin-1 bytes before head close",
			content: "<title>" + strings.Repeat("\xe9", 10) + "</title></head>",
			css:     "X",
			want:    "<title>" + strings.Repeat("\xe9", 10) + "</title><style>X</style></head>",
		},
		{
			name:    "invalid utf-8 only",
			content: strings.Repeat("\xe9", 10) + "</head>",
			css:     "X",
			want:    strings.Repeat("\xe9", 10) + "<style>X</style></head>",
		},
		{
			name:    "dotted capital I before head close",
			content: "<title>İİİİİİİİİİ</title></head>",
			css:     "X",
			want:    "<title>İİİİİİİİİİ</title><style>X</style></head>",
		},
		{
			name:    "latin-1 bytes before body open",
			content: "\xe9\xe9\xe9<BODY id=b><p>x</p>",
			css:     "X",
			want:    "\xe9\xe9\xe9<BODY id=b><style>X</style><p>x</p>",
		},
		{
			name:    "style close is escaped",
			content: "<p>hi</p>",
			css:     "</style><script>",
			want:    `<style><\/style><script></style><p>hi</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectStyle(tt.content, tt.css); got != tt.want {
				t.Errorf("InjectStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInjectLink(t *testing.T) {
	t.Parallel()

	got := InjectLink("<html><head></head><body></body></html>", `file:///srv/my%20css/a".css`)
	want := `<html><head><link href="file:///srv/my%20css/a&#34;.css" rel="stylesheet" type="text/css" media="screen"></head><body></body></html>`
	if got != want {
		t.Errorf("InjectLink() = %q, want %q", got, want)
	}

	if got := InjectLink("<p>x</p>", ""); got != "<p>x</p>" {
		t.Errorf("InjectLink() with empty href = %q", got)
	}
}

func TestStylesheetWrappers(t *testing.T) {
	t.Parallel()

	src := StylesheetLink(Stylesheet(HTML("<head></head>"), "a{}"), "b.css")
	got, err := src.Markup(context.Background())
	if err != nil {
		t.Fatalf("Markup() error = %v", err)
	}
	want := `<head><style>a{}</style><link href="b.css" rel="stylesheet" type="text/css" media="screen"></head>`
	if got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}

func TestStylesheet_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := Stylesheet(Func(func(context.Context) (string, error) { return "", boom }), "a{}")
	if _, err := src.Markup(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Markup() error = %v, want %v", err, boom)
	}
}

// ---------------------------------------------------------------------------
// Relative paths
// ---------------------------------------------------------------------------

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	dir := "/docs"
	if runtime.GOOS == "windows" {
		dir = `C:\docs`
	}

	tests := []struct {
		name         string
		content      string
		dir          string
		wantContains []string
	}{
		{
			name:         "relative image",
			content:      `<img src="./images/logo.png">`,
			dir:          dir,
			wantContains: []string{`src="file://`, `/docs/images/logo.png"`},
		},
		{
			name:         "relative stylesheet",
			content:      `<link rel="stylesheet" href="print.css">`,
			dir:          dir,
			wantContains: []string{`href="file://`, `/docs/print.css"`},
		},
		{
			name:         "relative link",
			content:      `<a href="other.html">x</a>`,
			dir:          dir,
			wantContains: []string{`href="file://`},
		},
		{
			name:         "anchor unchanged",
			content:      `<a href="#top">x</a>`,
			dir:          dir,
			wantContains: []string{`href="#top"`},
		},
		{
			name:         "url unchanged",
			content:      `<img src="https://example.com/a.png">`,
			dir:          dir,
			wantContains: []string{`src="https://example.com/a.png"`},
		},
		{
			name:         "mailto unchanged",
			content:      `<a href="mailto:me@example.com">x</a>`,
			dir:          dir,
			wantContains: []string{`href="mailto:me@example.com"`},
		},
		{
			name:         "traversal unchanged",
			content:      `<img src="../../etc/passwd">`,
			dir:          dir,
			wantContains: []string{`src="../../etc/passwd"`},
		},
		{
			name:         "empty dir unchanged",
			content:      `<img src="./a.png">`,
			wantContains: []string{`src="./a.png"`},
		},
		{
			name:         "full document keeps structure",
			content:      `<!DOCTYPE html><html><head></head><body><img src="a.png"></body></html>`,
			dir:          dir,
			wantContains: []string{"<!DOCTYPE html>", "<body>", `src="file://`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativePaths(tt.content, tt.dir)
			if err != nil {
				t.Fatalf("RewriteRelativePaths() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("RewriteRelativePaths() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestRewriteRelativePaths_FragmentNotWrapped(t *testing.T) {
	t.Parallel()

	got, err := RewriteRelativePaths(`<p>x</p>`, "/docs")
	if err != nil {
		t.Fatalf("RewriteRelativePaths() error = %v", err)
	}
	if got != "<p>x</p>" {
		t.Errorf("RewriteRelativePaths() = %q, want %q", got, "<p>x</p>")
	}
}

func TestBaseDir(t *testing.T) {
	t.Parallel()

	got, err := BaseDir(Markdown("![logo](logo.png)"), "/site").Markup(context.Background())
	if err != nil {
		t.Fatalf("Markup() error = %v", err)
	}
	if !strings.Contains(got, `src="file://`) {
		t.Errorf("Markup() = %q, want rewritten image", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
