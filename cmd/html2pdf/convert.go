package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput     = errors.New("no input specified")
	ErrReadInput   = errors.New("failed to read input file")
	ErrReadCSS     = errors.New("failed to read CSS file")
	ErrReadData    = errors.New("failed to read template data")
	ErrWritePDF    = errors.New("failed to write PDF file")
	ErrInvalidFlag = errors.New("invalid flag value")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// pageNumbers is the footer text printed by --page-numbers.
const pageNumbers = "[page] / [topage]"

// conversionParams groups what every conversion job shares.
type conversionParams struct {
	global *html2pdf.GlobalSettings
	object *html2pdf.ObjectSettings
	css    string
	vars   html2pdf.Vars
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}
	warnUnknownEnvVars(env.Stderr)

	profile, err := loadProfile(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	engine := resolveEngine(flags.engine, envCfg, profile)
	if !slices.Contains(html2pdf.Engines(), engine) {
		return fmt.Errorf("%w: %q (must be one of %v)", html2pdf.ErrUnknownEngine, engine, html2pdf.Engines())
	}
	timeout, err := resolveTimeout(flags.timeout, envCfg, profile)
	if err != nil {
		return err
	}

	inputs, err := resolveInputs(positionalArgs)
	if err != nil {
		return err
	}
	jobs, err := planJobs(inputs, resolveOutputDir(flags.output, envCfg, profile), flags.batch)
	if err != nil {
		return err
	}

	global, object, err := buildSettings(flags, profile)
	if err != nil {
		return err
	}
	css, err := readCSS(flags.css)
	if err != nil {
		return withHint(err, engine)
	}
	vars, err := readTemplateData(flags.data)
	if err != nil {
		return withHint(err, engine)
	}
	params := &conversionParams{global: global, object: object, css: css, vars: vars}

	opts := []html2pdf.Option{
		html2pdf.WithEngine(engine),
		html2pdf.WithLogger(newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)),
	}
	if timeout > 0 {
		opts = append(opts, html2pdf.WithTimeout(timeout))
	}
	opts = append(opts, env.Options...)

	conv, err := html2pdf.NewConverter(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			fmt.Fprintf(env.Stderr, "warning: closing converter: %v\n", cerr)
		}
	}()

	progress := newProgressObserver(env.Stderr)
	if flags.common.verbose {
		conv.Subscribe(progress)
	}

	convertAndReport := func(jobs []conversionJob) (int, error) {
		results := convertBatch(ctx, conv, jobs, params, progress)
		for i := range results {
			results[i].Err = withHint(results[i].Err, engine)
		}
		return printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	}

	if !flags.watch {
		failed, first := convertAndReport(jobs)
		if failed > 0 {
			return fmt.Errorf("%d conversion(s) failed: %w", failed, first)
		}
		return nil
	}

	watcher, err := newInputWatcher(jobs, flags.css, flags.data)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	watcher.reload = func() error {
		css, err := readCSS(flags.css)
		if err != nil {
			return err
		}
		vars, err := readTemplateData(flags.data)
		if err != nil {
			return err
		}
		params.css, params.vars = css, vars
		return nil
	}

	_, _ = convertAndReport(jobs)
	if !flags.common.quiet {
		fmt.Fprintln(env.Stderr, "Watching for changes (Ctrl+C to stop)")
	}
	return watcher.run(ctx,
		func(changed []conversionJob) { _, _ = convertAndReport(changed) },
		func(err error) { fmt.Fprintf(env.Stderr, "warning: %v\n", withHint(err, engine)) },
	)
}

// loadProfile loads the profile named by the flag, or else by the env var.
// No name means no profile.
func loadProfile(flagName, envName string) (*html2pdf.Profile, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return nil, nil
	}
	p, err := html2pdf.LoadProfile(name)
	if errors.Is(err, html2pdf.ErrProfileNotFound) {
		return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
	}
	return p, err
}

// resolveEngine applies flag > env > profile precedence, falling back to rod.
func resolveEngine(flagEngine string, env *envConfig, profile *html2pdf.Profile) string {
	switch {
	case flagEngine != "":
		return flagEngine
	case env.Engine != "":
		return env.Engine
	case profile != nil && profile.Engine() != "":
		return profile.Engine()
	}
	return html2pdf.EngineRod
}

// resolveTimeout applies flag > env > profile precedence. Zero selects
// the library default.
func resolveTimeout(flagTimeout string, env *envConfig, profile *html2pdf.Profile) (time.Duration, error) {
	if flagTimeout != "" {
		d, err := time.ParseDuration(flagTimeout)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("%w: --timeout: %q is not a positive duration", ErrInvalidFlag, flagTimeout)
		}
		return d, nil
	}
	if env.Timeout > 0 {
		return env.Timeout, nil
	}
	if profile != nil {
		return profile.Timeout(), nil
	}
	return 0, nil
}

// resolveOutputDir applies flag > env > profile precedence.
func resolveOutputDir(flagOutput string, env *envConfig, profile *html2pdf.Profile) string {
	switch {
	case flagOutput != "":
		return flagOutput
	case env.OutputDir != "":
		return env.OutputDir
	case profile != nil:
		return profile.OutputDir()
	}
	return ""
}

// buildSettings starts from the profile and applies the flags on top.
func buildSettings(flags *convertFlags, profile *html2pdf.Profile) (*html2pdf.GlobalSettings, *html2pdf.ObjectSettings, error) {
	global := &html2pdf.GlobalSettings{}
	object := &html2pdf.ObjectSettings{}
	if profile != nil {
		global = profile.Global()
		object = profile.Object()
	}

	if s := flags.page.size; s != "" {
		k, err := html2pdf.ParsePaperKind(s)
		if err != nil {
			return nil, nil, err
		}
		global.Paper = &k
	}
	if s := flags.page.orientation; s != "" {
		o, err := html2pdf.ParseOrientation(s)
		if err != nil {
			return nil, nil, err
		}
		global.Orientation = &o
	}
	if flags.page.grayscale {
		global.ColorMode = html2pdf.Ptr(html2pdf.Grayscale)
	}
	if m := flags.page.margin; m != "" {
		if err := config.ValidateLength("--margin", m); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFlag, err)
		}
		global.Margins = html2pdf.Margins(m)
	}
	if flags.title != "" {
		global.DocumentTitle = html2pdf.Ptr(flags.title)
	}

	d := flags.decoration
	if d.headerCenter != "" {
		if object.Header == nil {
			object.Header = &html2pdf.HeaderSettings{}
		}
		object.Header.Center = html2pdf.Ptr(d.headerCenter)
	}
	if d.footerCenter != "" || d.pageNumbers {
		if object.Footer == nil {
			object.Footer = &html2pdf.FooterSettings{}
		}
		if d.footerCenter != "" {
			object.Footer.Center = html2pdf.Ptr(d.footerCenter)
		}
		if d.pageNumbers {
			object.Footer.Right = html2pdf.Ptr(pageNumbers)
		}
	}
	return global, object, nil
}

// readCSS reads the --css file, if any.
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(content), nil
}

// readTemplateData reads the --data YAML mapping, if any.
func readTemplateData(path string) (html2pdf.Vars, error) {
	if path == "" {
		return nil, nil
	}
	var vars html2pdf.Vars
	if err := yamlutil.ReadFile(path, &vars, false); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadData, path, err)
	}
	return vars, nil
}

// withHint appends an actionable hint to err when one applies.
func withHint(err error, engine string) error {
	if err == nil {
		return nil
	}
	var hint string
	switch {
	case errors.Is(err, html2pdf.ErrBrowserConnect), errors.Is(err, html2pdf.ErrBackendLoad):
		hint = hints.ForBrowserConnect(engine)
	case errors.Is(err, html2pdf.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		hint = hints.ForTimeout()
	case errors.Is(err, ErrReadCSS):
		hint = hints.ForStylesheet()
	case errors.Is(err, ErrReadData):
		hint = hints.ForTemplateData()
	case errors.Is(err, ErrCreateOutputDir):
		hint = hints.ForOutputDirectory()
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
