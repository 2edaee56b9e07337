package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fieldName string
		value     string
		maxLength int
		wantErr   bool
	}{
		{
			name:      "empty value is valid",
			fieldName: "test",
			value:     "",
			maxLength: 10,
		},
		{
			name:      "value at limit is valid",
			fieldName: "test",
			value:     "1234567890",
			maxLength: 10,
		},
		{
			name:      "value over limit returns error",
			fieldName: "test.field",
			value:     "12345678901",
			maxLength: 10,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength(tt.fieldName, tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		yes := true
		return &Config{
			Engine: "chromedp",
			Global: GlobalConfig{
				Title:       "Quarterly Report",
				Orientation: "Landscape",
				ColorMode:   "grayscale",
				PaperSize:   "letter",
				Margins:     MarginsConfig{Top: "10mm", Bottom: "1in", Left: "0.5", Right: "12pt"},
				DPI:         300,
			},
			Object: ObjectConfig{
				Background: &yes,
				Encoding:   "utf-8",
				Zoom:       1.25,
				JSDelay:    200,
				Headers:    []HeaderConfig{{Name: "Authorization", Value: "Bearer x"}},
				Footer:     DecorationConfig{Center: "[page] / [topage]", FontSize: 9},
			},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: unexpected error: %v", err)
	}
	if err := (&Config{}).Validate(); err != nil {
		t.Fatalf("empty config: unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErr  error
		wantText string
	}{
		{
			name:     "unknown engine",
			mutate:   func(c *Config) { c.Engine = "wkhtmltopdf" },
			wantErr:  ErrInvalidField,
			wantText: "engine",
		},
		{
			name:     "bad orientation",
			mutate:   func(c *Config) { c.Global.Orientation = "sideways" },
			wantErr:  ErrInvalidField,
			wantText: "global.orientation",
		},
		{
			name:     "bad color mode",
			mutate:   func(c *Config) { c.Global.ColorMode = "sepia" },
			wantErr:  ErrInvalidField,
			wantText: "global.colorMode",
		},
		{
			name:     "bad paper size",
			mutate:   func(c *Config) { c.Global.PaperSize = "b5" },
			wantErr:  ErrInvalidField,
			wantText: "global.paperSize",
		},
		{
			name:     "bad margin unit",
			mutate:   func(c *Config) { c.Global.Margins.Left = "3em" },
			wantErr:  ErrInvalidField,
			wantText: "global.margins.left",
		},
		{
			name:     "negative dpi",
			mutate:   func(c *Config) { c.Global.DPI = -1 },
			wantErr:  ErrInvalidField,
			wantText: "global.dpi",
		},
		{
			name:     "title too long",
			mutate:   func(c *Config) { c.Global.Title = strings.Repeat("x", MaxTitleLength+1) },
			wantErr:  ErrFieldTooLong,
			wantText: "global.title",
		},
		{
			name:     "zoom out of range",
			mutate:   func(c *Config) { c.Object.Zoom = 3 },
			wantErr:  ErrInvalidField,
			wantText: "object.zoom",
		},
		{
			name:     "negative js delay",
			mutate:   func(c *Config) { c.Object.JSDelay = -5 },
			wantErr:  ErrInvalidField,
			wantText: "object.jsDelay",
		},
		{
			name:     "header without name",
			mutate:   func(c *Config) { c.Object.Headers = []HeaderConfig{{Value: "x"}} },
			wantErr:  ErrInvalidField,
			wantText: "object.headers[0].name",
		},
		{
			name: "too many headers",
			mutate: func(c *Config) {
				c.Object.Headers = make([]HeaderConfig, MaxHeaders+1)
			},
			wantErr:  ErrInvalidField,
			wantText: "object.headers",
		},
		{
			name:     "footer text too long",
			mutate:   func(c *Config) { c.Object.Footer.Right = strings.Repeat("x", MaxDecorationLength+1) },
			wantErr:  ErrFieldTooLong,
			wantText: "object.footer.right",
		},
		{
			name:     "header font size",
			mutate:   func(c *Config) { c.Object.Header.FontSize = 100 },
			wantErr:  ErrInvalidField,
			wantText: "object.header.fontSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantText)
			}
		})
	}
}

func TestDecorationConfig_IsZero(t *testing.T) {
	t.Parallel()

	if !(DecorationConfig{}).IsZero() {
		t.Error("IsZero() = false for empty decoration")
	}
	if (DecorationConfig{Line: true}).IsZero() {
		t.Error("IsZero() = true for decoration with a line")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")
	writeFile(t, path, `
engine: rod
timeout: 45s
output:
  defaultDir: out
global:
  title: Report
  orientation: landscape
  paperSize: a4
  margins:
    top: 15mm
  outline: true
object:
  background: false
  headers:
    - name: X-Tenant
      value: acme
  footer:
    center: "[page]"
    line: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Engine != "rod" || cfg.Timeout != "45s" {
		t.Errorf("engine/timeout = %q/%q", cfg.Engine, cfg.Timeout)
	}
	if cfg.Output.DefaultDir != "out" {
		t.Errorf("Output.DefaultDir = %q, want %q", cfg.Output.DefaultDir, "out")
	}
	if cfg.Global.Title != "Report" || cfg.Global.Orientation != "landscape" || cfg.Global.Margins.Top != "15mm" {
		t.Errorf("Global = %+v", cfg.Global)
	}
	if cfg.Global.Outline == nil || !*cfg.Global.Outline {
		t.Error("Global.Outline should be true")
	}
	if cfg.Object.Background == nil || *cfg.Object.Background {
		t.Error("Object.Background should be explicitly false")
	}
	if cfg.Object.JavaScript != nil {
		t.Error("Object.JavaScript should be unset")
	}
	if len(cfg.Object.Headers) != 1 || cfg.Object.Headers[0].Name != "X-Tenant" {
		t.Errorf("Object.Headers = %+v", cfg.Object.Headers)
	}
	if !cfg.Object.Footer.Line || cfg.Object.Footer.Center != "[page]" {
		t.Errorf("Object.Footer = %+v", cfg.Object.Footer)
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.toml")
	writeFile(t, path, `
engine = "chromedp"
timeout = "1m"

[global]
title = "Report"
paperSize = "letter"
outline = false

[global.margins]
left = "1in"

[object]
javascript = true

[[object.headers]]
name = "X-Tenant"
value = "acme"

[object.footer]
right = "[page] / [topage]"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Engine != "chromedp" || cfg.Timeout != "1m" {
		t.Errorf("engine/timeout = %q/%q", cfg.Engine, cfg.Timeout)
	}
	if cfg.Global.Title != "Report" || cfg.Global.PaperSize != "letter" || cfg.Global.Margins.Left != "1in" {
		t.Errorf("Global = %+v", cfg.Global)
	}
	if cfg.Global.Outline == nil || *cfg.Global.Outline {
		t.Error("Global.Outline should be explicitly false")
	}
	if cfg.Object.JavaScript == nil || !*cfg.Object.JavaScript {
		t.Error("Object.JavaScript should be true")
	}
	if len(cfg.Object.Headers) != 1 || cfg.Object.Headers[0].Value != "acme" {
		t.Errorf("Object.Headers = %+v", cfg.Object.Headers)
	}
	if cfg.Object.Footer.Right != "[page] / [topage]" {
		t.Errorf("Object.Footer = %+v", cfg.Object.Footer)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	unknownTOML := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknownTOML, "[global]\ncolour = \"red\"\n")

	brokenTOML := filepath.Join(dir, "broken.toml")
	writeFile(t, brokenTOML, "[global\ntitle = 1\n")

	unknown := filepath.Join(dir, "unknown.yaml")
	writeFile(t, unknown, "global:\n  colour: red\n")

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "global:\n  orientation: diagonal\n")

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty name", input: "", wantErr: ErrEmptyConfigName},
		{name: "missing file", input: filepath.Join(dir, "missing.yaml"), wantErr: ErrConfigNotFound},
		{name: "unknown field", input: unknown, wantErr: ErrConfigParse},
		{name: "invalid value", input: invalid, wantErr: ErrInvalidField},
		{name: "toml unknown field", input: unknownTOML, wantErr: ErrConfigParse},
		{name: "toml syntax", input: brokenTOML, wantErr: ErrConfigParse},
		{name: "toml missing", input: filepath.Join(dir, "missing.toml"), wantErr: ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// NOTE: changes the working directory and cannot run in parallel.
func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "invoice.yml"), "global:\n  title: Invoice\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("invoice")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Global.Title != "Invoice" {
		t.Errorf("Global.Title = %q, want %q", cfg.Global.Title, "Invoice")
	}

	_, err = LoadConfig("absent")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(absent) error = %v, want ErrConfigNotFound", err)
	}
	if err != nil && !strings.Contains(err.Error(), "absent.yaml") {
		t.Errorf("error %q should list tried paths", err)
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"report":          false,
		"./report":        true,
		"dir/report.yaml": true,
		"report.yaml":     true,
		"report.yml":      true,
		"report.toml":     true,
		`C:\cfg\r.yaml`:   true,
	}
	for input, want := range tests {
		if got := isFilePath(input); got != want {
			t.Errorf("isFilePath(%q) = %v, want %v", input, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestValidateLength(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"", "10mm", "0.5in", "12", "2.54cm", "72PT"} {
		if err := ValidateLength("margin", ok); err != nil {
			t.Errorf("ValidateLength(%q) = %v, want nil", ok, err)
		}
	}
	for _, bad := range []string{"ten", "-1mm", "10 furlongs", "1e3mm"} {
		if err := ValidateLength("margin", bad); !errors.Is(err, ErrInvalidField) {
			t.Errorf("ValidateLength(%q) = %v, want ErrInvalidField", bad, err)
		}
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("report")
	if len(paths) < 3 || paths[0] != "report.yaml" || paths[1] != "report.yml" || paths[2] != "report.toml" {
		t.Fatalf("SearchPaths() = %v, want local paths first", paths)
	}
	for _, p := range paths[3:] {
		if !strings.Contains(filepath.ToSlash(p), "go-html2pdf/report.") {
			t.Errorf("user path %q not under go-html2pdf/", p)
		}
	}
}
