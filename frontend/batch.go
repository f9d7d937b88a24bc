package frontend

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Source is a named input for AnalyzeAll.
type Source struct {
	Name    string
	Content []byte
}

// ReadSources reads each path into a Source.
func ReadSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		sources = append(sources, Source{Name: path, Content: content})
	}
	return sources, nil
}

// AnalyzeAll analyses every source on a bounded pool of workers. Results
// are in input order. When ctx is cancelled no further sources are started;
// the results of sources that never ran are nil and ctx's error is
// returned.
func AnalyzeAll(ctx context.Context, sources []Source, opts ...Option) ([]*Result, error) {
	o := buildOptions(opts)
	jobs := o.jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	results := make([]*Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, src := range sources {
		i, src := i, src // per-iteration copies (go directive is below 1.22)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			so := o
			so.file = src.Name
			results[i] = analyze(src.Content, so)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Warningf("batch analysis stopped: %s", err)
		return results, err
	}
	log.Infof("analysed %d sources with %d jobs", len(sources), jobs)
	return results, nil
}

// ExitCode is the worst exit code among results.
func ExitCode(results []*Result) int {
	code := ExitOK
	for _, r := range results {
		if r == nil {
			continue
		}
		code = max(code, r.ExitCode())
	}
	return code
}
