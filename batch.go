package docshift

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult maps each input path to the Result of its conversion.
// Every requested input has an entry; failures do not abort the rest
// of the batch.
type BatchResult map[string]Result

// Succeeded reports how many conversions in the batch completed.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b {
		if r.Success {
			n++
		}
	}
	return n
}

// Failed reports how many conversions in the batch did not complete.
func (b BatchResult) Failed() int {
	return len(b) - b.Succeeded()
}

// convertBatch runs the requests on a bounded worker pool. Context
// cancellation stops unstarted work; requests already running finish
// under their own timeouts.
func (p *pipeline) convertBatch(ctx context.Context, reqs []Request, workers int) BatchResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{
					InputPath: req.InputPath,
					Err:       err,
					Kind:      Kind(err),
				}
				return nil
			}
			results[i] = p.convert(gctx, req)
			return nil
		})
	}
	// Workers never return errors; Wait only fences completion.
	_ = g.Wait()

	out := make(BatchResult, len(results))
	for _, r := range results {
		out[r.InputPath] = r
	}
	return out
}
