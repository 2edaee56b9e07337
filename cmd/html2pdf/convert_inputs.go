package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// ErrUnsupportedInput is returned for files with an unknown extension.
var ErrUnsupportedInput = errors.New("unsupported input")

// inputKind selects how an input becomes markup.
type inputKind int

const (
	kindHTML inputKind = iota
	kindMarkdown
	kindTemplate
	kindURL
)

// extensionKinds maps recognized file extensions to input kinds.
var extensionKinds = map[string]inputKind{
	".html":     kindHTML,
	".htm":      kindHTML,
	".md":       kindMarkdown,
	".markdown": kindMarkdown,
	".tmpl":     kindTemplate,
	".j2":       kindTemplate,
	".jinja":    kindTemplate,
}

// input is one page source named on the command line.
type input struct {
	path string
	kind inputKind
	root string // directory the input was discovered in, if any
}

// conversionJob is one output PDF built from one or more inputs.
type conversionJob struct {
	inputs []input
	output string
}

// label names the job in results and progress output.
func (j conversionJob) label() string {
	if len(j.inputs) == 1 {
		return j.inputs[0].path
	}
	return fmt.Sprintf("%s (+%d more)", j.inputs[0].path, len(j.inputs)-1)
}

// classifyInput returns the kind for a file path.
func classifyInput(path string) (inputKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, ok := extensionKinds[ext]
	if !ok {
		return 0, fmt.Errorf("%w: %s (want .html, .md or .tmpl)", ErrUnsupportedInput, path)
	}
	return kind, nil
}

// resolveInputs expands the positional arguments into inputs. Directories
// are walked for supported files; URLs are loaded by the browser.
func resolveInputs(args []string) ([]input, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	var inputs []input
	for _, arg := range args {
		if fileutil.IsURL(arg) {
			inputs = append(inputs, input{path: arg, kind: kindURL})
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		if !info.IsDir() {
			kind, err := classifyInput(arg)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input{path: arg, kind: kind})
			continue
		}

		found, err := discoverInputs(arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, found...)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no supported files in %s", ErrNoInput, strings.Join(args, ", "))
	}
	return inputs, nil
}

// discoverInputs walks dir in lexical order and keeps supported files.
func discoverInputs(dir string) ([]input, error) {
	var inputs []input
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		kind, err := classifyInput(path)
		if err != nil {
			return nil
		}
		inputs = append(inputs, input{path: path, kind: kind, root: dir})
		return nil
	})
	return inputs, err
}

// planJobs groups inputs into output PDFs. Batch mode writes one PDF per
// input; otherwise every input becomes a page source of one PDF.
func planJobs(inputs []input, output string, batch bool) ([]conversionJob, error) {
	if !batch {
		return []conversionJob{{inputs: inputs, output: resolveOutputPath(inputs[0], output)}}, nil
	}

	if len(inputs) > 1 && strings.HasSuffix(output, ".pdf") {
		return nil, fmt.Errorf("%w: --output must be a directory when --batch has several inputs", ErrInvalidFlag)
	}
	jobs := make([]conversionJob, len(inputs))
	for i, in := range inputs {
		jobs[i] = conversionJob{inputs: []input{in}, output: resolveOutputPath(in, output)}
	}
	return jobs, nil
}

// resolveOutputPath determines the PDF output path for an input.
func resolveOutputPath(in input, outputDir string) string {
	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if in.kind == kindURL {
		return filepath.Join(outputDir, urlBaseName(in.path)+".pdf")
	}

	ext := filepath.Ext(in.path)
	base := strings.TrimSuffix(filepath.Base(in.path), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(in.path), base+".pdf")
	}

	if in.root != "" {
		relPath, err := filepath.Rel(in.root, in.path)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// urlBaseName derives a file name from a URL's host and last path segment.
func urlBaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "page"
	}
	name := strings.ReplaceAll(u.Host, ":", "_")
	if seg := strings.Trim(u.Path, "/"); seg != "" {
		seg = filepath.Base(seg)
		name += "-" + strings.TrimSuffix(seg, filepath.Ext(seg))
	}
	return name
}

// buildObject turns one input into a content object.
func buildObject(ctx context.Context, in input, params *conversionParams) (*html2pdf.ContentObject, error) {
	if in.kind == kindURL {
		settings := html2pdf.ObjectSettings{}
		if params.object != nil {
			settings = *params.object
		}
		settings.Page = html2pdf.Ptr(in.path)
		return html2pdf.NewObject("", &settings), nil
	}

	src, err := inputSource(in, params.vars)
	if err != nil {
		return nil, err
	}
	src = html2pdf.WithBaseDir(src, filepath.Dir(in.path))
	if params.css != "" {
		src = html2pdf.WithStylesheet(src, params.css)
	}
	return html2pdf.ObjectFrom(ctx, src, params.object)
}

// inputSource returns the markup source for a file input.
func inputSource(in input, vars html2pdf.Vars) (html2pdf.Source, error) {
	if in.kind == kindTemplate {
		return html2pdf.TemplateFile(in.path, vars), nil
	}

	content, err := os.ReadFile(in.path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	if in.kind == kindMarkdown {
		return html2pdf.Markdown(string(content)), nil
	}
	return html2pdf.HTML(string(content)), nil
}
