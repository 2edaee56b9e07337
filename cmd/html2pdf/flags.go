package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      string
	grayscale   bool
}

// decorationFlags holds header and footer flags.
type decorationFlags struct {
	headerCenter string
	footerCenter string
	pageNumbers  bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	engine     string
	timeout    string
	title      string
	css        string
	data       string
	batch      bool
	watch      bool
	page       pageFlags
	decoration decorationFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "profile name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show phases and timing")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a3, a4, a5, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.StringVar(&f.margin, "margin", "", "margin on every side, e.g. 10mm or 0.5in")
	fs.BoolVar(&f.grayscale, "grayscale", false, "print in grayscale")
}

// addDecorationFlags adds header and footer flags to a FlagSet.
func addDecorationFlags(fs *flag.FlagSet, f *decorationFlags) {
	fs.StringVar(&f.headerCenter, "header-center", "", "centered header text ([page], [topage], [date], [title])")
	fs.StringVar(&f.footerCenter, "footer-center", "", "centered footer text")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "print \"[page] / [topage]\" in the footer")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVar(&f.engine, "engine", "", "browser engine: rod, chromedp")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.title, "title", "", "document title")
	fs.StringVar(&f.css, "css", "", "stylesheet inlined into every input")
	fs.StringVar(&f.data, "data", "", "YAML file with template variables")
	fs.BoolVar(&f.batch, "batch", false, "one PDF per input instead of one combined PDF")
	fs.BoolVarP(&f.watch, "watch", "w", false, "convert again when an input changes")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addDecorationFlags(fs, &f.decoration)

	fs.Usage = func() { printConvertUsage(os.Stderr) }
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
