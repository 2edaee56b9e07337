// Package config loads YAML and TOML conversion profiles.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid field value")
)

// Field length limits.
const (
	MaxTitleLength       = 200  // Document title
	MaxPathLength        = 4096 // Output directory, stylesheet
	MaxLengthLength      = 20   // "12.5mm", "1in"
	MaxEncodingLength    = 40   // "utf-8", "windows-1252"
	MaxFontNameLength    = 100  // "Helvetica Neue"
	MaxDecorationLength  = 500  // Header/footer text
	MaxHeaderNameLength  = 256  // HTTP header name
	MaxHeaderValueLength = 8192 // HTTP header value
	MaxHeaders           = 64   // Custom request headers
)

// lengthPattern accepts a number with an optional in, cm, mm, pt or px unit.
var lengthPattern = regexp.MustCompile(`^\d+(\.\d+)?(in|cm|mm|pt|px)?$`)

// Config is a conversion profile.
type Config struct {
	Engine  string       `yaml:"engine" toml:"engine"`  // "rod" or "chromedp" (empty = default)
	Timeout string       `yaml:"timeout" toml:"timeout"` // Go duration, e.g. "45s"
	Output  OutputConfig `yaml:"output" toml:"output"`
	Global  GlobalConfig `yaml:"global" toml:"global"`
	Object  ObjectConfig `yaml:"object" toml:"object"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir" toml:"defaultDir"` // Empty = next to the input
}

// GlobalConfig holds document-wide settings.
type GlobalConfig struct {
	Title       string        `yaml:"title" toml:"title"`
	Orientation string        `yaml:"orientation" toml:"orientation"` // "portrait", "landscape"
	ColorMode   string        `yaml:"colorMode" toml:"colorMode"`   // "color", "grayscale"
	PaperSize   string        `yaml:"paperSize" toml:"paperSize"`   // "a3", "a4", "a5", "letter", "legal"
	Margins     MarginsConfig `yaml:"margins" toml:"margins"`
	DPI         int           `yaml:"dpi" toml:"dpi"`
	Outline     *bool         `yaml:"outline" toml:"outline"`
}

// MarginsConfig holds page margins as CSS lengths.
type MarginsConfig struct {
	Top    string `yaml:"top" toml:"top"`
	Bottom string `yaml:"bottom" toml:"bottom"`
	Left   string `yaml:"left" toml:"left"`
	Right  string `yaml:"right" toml:"right"`
}

// ObjectConfig holds settings applied to every content object.
type ObjectConfig struct {
	Background *bool            `yaml:"background" toml:"background"`
	Images     *bool            `yaml:"images" toml:"images"`
	JavaScript *bool            `yaml:"javascript" toml:"javascript"`
	PrintMedia *bool            `yaml:"printMedia" toml:"printMedia"`
	Encoding   string           `yaml:"encoding" toml:"encoding"`
	Stylesheet string           `yaml:"stylesheet" toml:"stylesheet"` // Path or URL of a user stylesheet
	Zoom       float64          `yaml:"zoom" toml:"zoom"`       // 0 = default
	JSDelay    int              `yaml:"jsDelay" toml:"jsDelay"`    // milliseconds
	Headers    []HeaderConfig   `yaml:"headers" toml:"headers"`
	Header     DecorationConfig `yaml:"header" toml:"header"`
	Footer     DecorationConfig `yaml:"footer" toml:"footer"`
}

// HeaderConfig is one HTTP request header.
type HeaderConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Value string `yaml:"value" toml:"value"`
}

// DecorationConfig describes a page header or footer line.
// Text may use [page], [topage], [date], [title] and [webpage].
type DecorationConfig struct {
	Left     string `yaml:"left" toml:"left"`
	Center   string `yaml:"center" toml:"center"`
	Right    string `yaml:"right" toml:"right"`
	FontSize int    `yaml:"fontSize" toml:"fontSize"`
	FontName string `yaml:"fontName" toml:"fontName"`
	Line     bool   `yaml:"line" toml:"line"`
}

// IsZero reports whether d configures nothing.
func (d DecorationConfig) IsZero() bool {
	return d == DecorationConfig{}
}

// Validate checks enumerations, ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateChoice("engine", c.Engine, "rod", "chromedp"); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := c.Global.validate(); err != nil {
		return err
	}
	return c.Object.validate()
}

func (g *GlobalConfig) validate() error {
	if err := validateFieldLength("global.title", g.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateChoice("global.orientation", g.Orientation, "portrait", "landscape"); err != nil {
		return err
	}
	if err := validateChoice("global.colorMode", g.ColorMode, "color", "colour", "grayscale", "greyscale"); err != nil {
		return err
	}
	if err := validateChoice("global.paperSize", g.PaperSize, "a3", "a4", "a5", "letter", "legal"); err != nil {
		return err
	}
	margins := []struct{ name, value string }{
		{"global.margins.top", g.Margins.Top},
		{"global.margins.bottom", g.Margins.Bottom},
		{"global.margins.left", g.Margins.Left},
		{"global.margins.right", g.Margins.Right},
	}
	for _, m := range margins {
		if err := validateLength(m.name, m.value); err != nil {
			return err
		}
	}
	if g.DPI < 0 || g.DPI > 2400 {
		return fmt.Errorf("%w: global.dpi: must be between 0 and 2400, got %d", ErrInvalidField, g.DPI)
	}
	return nil
}

func (o *ObjectConfig) validate() error {
	if err := validateFieldLength("object.encoding", o.Encoding, MaxEncodingLength); err != nil {
		return err
	}
	if err := validateFieldLength("object.stylesheet", o.Stylesheet, MaxPathLength); err != nil {
		return err
	}
	if o.Zoom != 0 && (o.Zoom < 0.1 || o.Zoom > 2) {
		return fmt.Errorf("%w: object.zoom: must be between 0.1 and 2, got %.2f", ErrInvalidField, o.Zoom)
	}
	if o.JSDelay < 0 || o.JSDelay > 60000 {
		return fmt.Errorf("%w: object.jsDelay: must be between 0 and 60000, got %d", ErrInvalidField, o.JSDelay)
	}
	if len(o.Headers) > MaxHeaders {
		return fmt.Errorf("%w: object.headers: at most %d entries, got %d", ErrInvalidField, MaxHeaders, len(o.Headers))
	}
	for i, h := range o.Headers {
		if strings.TrimSpace(h.Name) == "" {
			return fmt.Errorf("%w: object.headers[%d].name: required", ErrInvalidField, i)
		}
		if err := validateFieldLength(fmt.Sprintf("object.headers[%d].name", i), h.Name, MaxHeaderNameLength); err != nil {
			return err
		}
		if err := validateFieldLength(fmt.Sprintf("object.headers[%d].value", i), h.Value, MaxHeaderValueLength); err != nil {
			return err
		}
	}
	if err := o.Header.validate("object.header"); err != nil {
		return err
	}
	return o.Footer.validate("object.footer")
}

func (d *DecorationConfig) validate(prefix string) error {
	texts := []struct{ name, value string }{
		{"left", d.Left},
		{"center", d.Center},
		{"right", d.Right},
	}
	for _, t := range texts {
		if err := validateFieldLength(prefix+"."+t.name, t.value, MaxDecorationLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength(prefix+".fontName", d.FontName, MaxFontNameLength); err != nil {
		return err
	}
	if d.FontSize < 0 || d.FontSize > 72 {
		return fmt.Errorf("%w: %s.fontSize: must be between 0 and 72, got %d", ErrInvalidField, prefix, d.FontSize)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateChoice accepts an empty value or one of choices, ignoring case.
func validateChoice(fieldName, value string, choices ...string) error {
	if value == "" {
		return nil
	}
	for _, c := range choices {
		if strings.EqualFold(value, c) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidField, fieldName, value, strings.Join(choices, ", "))
}

// ValidateLength checks that value is a length such as "10mm" or "0.5in".
// An empty value is valid.
func ValidateLength(fieldName, value string) error {
	return validateLength(fieldName, value)
}

func validateLength(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxLengthLength); err != nil {
		return err
	}
	if !lengthPattern.MatchString(strings.ToLower(strings.TrimSpace(value))) {
		return fmt.Errorf("%w: %s: %q is not a length", ErrInvalidField, fieldName, value)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := readConfigFile(configPath, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readConfigFile decodes path strictly, choosing TOML or YAML by extension.
func readConfigFile(path string, cfg *Config) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = readTOML(path, cfg)
	} else {
		err = yamlutil.ReadFile(path, cfg, true)
	}
	if err == nil {
		return nil
	}

	var decodeErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case errors.Is(err, yamlutil.ErrDecode),
		errors.Is(err, yamlutil.ErrNilData),
		errors.Is(err, yamlutil.ErrInputTooLarge):
		return fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	case errors.As(err, &decodeErr):
		row, col := decodeErr.Position()
		return fmt.Errorf("%w: %s:%d:%d: %v", ErrConfigParse, path, row, col, decodeErr)
	case errors.As(err, &strictErr):
		return fmt.Errorf("%w: %s: %s", ErrConfigParse, path, strictErr.String())
	}
	return fmt.Errorf("reading config file: %w", err)
}

// readTOML applies the same size limit as YAML profiles.
func readTOML(path string, cfg *Config) error {
	f, err := os.Open(path) // #nosec G304 -- profile path chosen by the user
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, int64(yamlutil.MaxInputSize)+1))
	if err != nil {
		return err
	}
	if len(data) > yamlutil.MaxInputSize {
		return yamlutil.ErrInputTooLarge
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

var profileExtensions = []string{".yaml", ".yml", ".toml"}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	for _, ext := range profileExtensions {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// SearchPaths lists where a profile name is looked up, in order:
// the current directory, then <user config dir>/go-html2pdf/, each with
// .yaml, .yml then .toml.
func SearchPaths(name string) []string {
	paths := make([]string, 0, len(profileExtensions)*2)
	for _, ext := range profileExtensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range profileExtensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-html2pdf", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
