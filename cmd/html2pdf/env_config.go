package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrEnvConfig is returned when an HTML2PDF_* variable cannot be parsed.
var ErrEnvConfig = errors.New("invalid environment variable")

// envPrefix marks the variables read by the CLI.
const envPrefix = "HTML2PDF_"

// envConfig holds configuration from environment variables.
// Precedence: CLI flags > env vars > profile > defaults.
type envConfig struct {
	ConfigPath string        `env:"HTML2PDF_CONFIG" env-description:"profile name or path"`
	Engine     string        `env:"HTML2PDF_ENGINE" env-description:"rod or chromedp"`
	Timeout    time.Duration `env:"HTML2PDF_TIMEOUT" env-description:"render timeout, e.g. 45s"`
	OutputDir  string        `env:"HTML2PDF_OUTPUT_DIR" env-description:"default output directory"`
}

// knownEnvVars lists valid HTML2PDF_* environment variables.
var knownEnvVars = map[string]bool{
	"HTML2PDF_CONFIG":     true,
	"HTML2PDF_ENGINE":     true,
	"HTML2PDF_TIMEOUT":    true,
	"HTML2PDF_OUTPUT_DIR": true,
	"HTML2PDF_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads the HTML2PDF_* variables.
func loadEnvConfig() (*envConfig, error) {
	var cfg envConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvConfig, err)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: HTML2PDF_TIMEOUT must be positive, got %v", ErrEnvConfig, cfg.Timeout)
	}
	return &cfg, nil
}

// warnUnknownEnvVars reports unrecognized HTML2PDF_* variables, usually typos.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// envUsage describes the supported variables for help output.
func envUsage() string {
	var cfg envConfig
	header := "Environment:"
	text, err := cleanenv.GetDescription(&cfg, &header)
	if err != nil {
		return ""
	}
	return text
}
