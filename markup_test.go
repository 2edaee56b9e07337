package html2pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestObjectFrom(t *testing.T) {
	t.Parallel()

	settings := &ObjectSettings{PagesCount: Ptr(true)}
	obj, err := ObjectFrom(context.Background(), Markdown("# Title\n\nBody"), settings)
	if err != nil {
		t.Fatalf("ObjectFrom() error = %v", err)
	}
	if obj.Settings != settings {
		t.Error("settings not attached")
	}
	for _, want := range []string{"<title>Title</title>", `<h1 id="title">Title</h1>`, "<p>Body</p>"} {
		if !strings.Contains(obj.Content, want) {
			t.Errorf("content missing %q:\n%s", want, obj.Content)
		}
	}
}

func TestObjectFrom_Error(t *testing.T) {
	t.Parallel()

	_, err := ObjectFrom(context.Background(), Template("{{ ", nil), nil)
	if !errors.Is(err, ErrTemplate) {
		t.Errorf("ObjectFrom() error = %v, want ErrTemplate", err)
	}
}

func TestTemplateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.html")
	if err := os.WriteFile(path, []byte("<p>{{ total|floatformat:2 }}</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := TemplateFile(path, Vars{"total": 12.5}).Markup(context.Background())
	if err != nil {
		t.Fatalf("Markup() error = %v", err)
	}
	if got != "<p>12.50</p>" {
		t.Errorf("Markup() = %q, want <p>12.50</p>", got)
	}
}

func TestWithStylesheetLink(t *testing.T) {
	t.Parallel()

	got, err := WithStylesheetLink(HTML("<body>x</body>"), "print.css").Markup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := `<body><link href="print.css" rel="stylesheet" type="text/css" media="screen">x</body>`
	if got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}

func TestWithBaseDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := WithBaseDir(HTML(`<html><head></head><body><img src="logo.png"></body></html>`), dir).Markup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "file://") || !strings.Contains(got, "logo.png") {
		t.Errorf("Markup() = %q, want a file URL for logo.png", got)
	}
}
