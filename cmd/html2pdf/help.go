package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf [convert] [flags] <input>...")
	fmt.Fprintln(w, "       html2pdf <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert HTML, Markdown or template files to PDF (default)")
	fmt.Fprintln(w, "  doctor     Check that a browser engine can run")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf convert <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert inputs to PDF. Inputs are .html/.htm, .md/.markdown,")
	fmt.Fprintln(w, ".tmpl/.j2 templates, or http(s) URLs. By default every input")
	fmt.Fprintln(w, "becomes a section of one PDF; --batch writes one PDF per input.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Profile name or path")
	fmt.Fprintln(w, "      --batch               One PDF per input")
	fmt.Fprintln(w, "      --data <file>         YAML template variables")
	fmt.Fprintln(w, "  -w, --watch               Convert again when an input, --css or --data changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "      --engine <name>       Browser engine: rod, chromedp")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a3, a4, a5, letter, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <len>        Margin on every side (e.g., 10mm, 0.5in)")
	fmt.Fprintln(w, "      --grayscale           Print in grayscale")
	fmt.Fprintln(w, "      --title <s>           Document title")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Header/Footer:")
	fmt.Fprintln(w, "      --header-center <s>   Centered header text")
	fmt.Fprintln(w, "      --footer-center <s>   Centered footer text")
	fmt.Fprintln(w, "      --page-numbers        Page numbers in the footer")
	fmt.Fprintln(w, "                            Substitutions: [page], [topage], [date], [title]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --css <path>          Stylesheet inlined into every input")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show phases and timing")
	if env := envUsage(); env != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, env)
	}
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: html2pdf doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check browser engines and the environment.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
