package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	html2pdf "github.com/alnah/go-html2pdf"
)

// ErrCreateOutputDir is returned when an output directory cannot be created.
var ErrCreateOutputDir = errors.New("failed to create output directory")

// Converter is the conversion surface the CLI needs.
type Converter interface {
	Convert(ctx context.Context, doc *html2pdf.Document) ([]byte, error)
}

// Compile-time interface implementation check.
var _ Converter = (*html2pdf.Converter)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch submits every job at once, each from its own goroutine.
// The converter runs them one at a time in an unspecified order; results
// keep the order of jobs.
func convertBatch(ctx context.Context, conv Converter, jobs []conversionJob, params *conversionParams, progress *progressObserver) []ConversionResult {
	if len(jobs) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = convertJob(ctx, conv, job, params, progress)
		}()
	}
	wg.Wait()
	return results
}

// convertJob builds, converts and writes one output PDF.
func convertJob(ctx context.Context, conv Converter, job conversionJob, params *conversionParams, progress *progressObserver) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  job.label(),
		OutputPath: job.output,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	doc := html2pdf.NewDocument(params.global)
	for _, in := range job.inputs {
		obj, err := buildObject(ctx, in, params)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", in.path, err))
		}
		doc.Add(obj)
	}

	if err := os.MkdirAll(filepath.Dir(job.output), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrCreateOutputDir, err))
	}

	if progress != nil {
		progress.track(doc, job.label())
		defer progress.untrack(doc)
	}
	pdf, err := conv.Convert(ctx, doc)
	if err != nil {
		return fail(err)
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(job.output, pdf, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWritePDF, err))
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided
// writers. It returns the failure count and the first failure.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) (int, error) {
	summary := countResults(results)
	var first error

	for _, r := range results {
		if r.Err != nil {
			if first == nil {
				first = r.Err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed, first
}
