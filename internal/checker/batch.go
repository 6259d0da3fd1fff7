package checker

import "context"

// BatchResult is one document's outcome in a batch. Exactly one of Report
// and Err is set.
type BatchResult struct {
	Path   string
	Report *Report
	Err    error
}

// CheckBatch checks paths with at most concurrency documents in flight.
// Each document succeeds or fails on its own; results keep the order of
// paths. progress, if non-nil, is called once per finished document from
// the calling goroutine.
func (c *Checker) CheckBatch(ctx context.Context, paths []string, concurrency int, progress func(BatchResult)) []BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}

	type indexed struct {
		idx int
		res BatchResult
	}
	results := make(chan indexed, len(paths))
	sem := make(chan struct{}, concurrency)

	go func() {
		for i, path := range paths {
			sem <- struct{}{}
			go func(i int, path string) {
				defer func() { <-sem }()
				if err := ctx.Err(); err != nil {
					results <- indexed{idx: i, res: BatchResult{Path: path, Err: err}}
					return
				}
				rep, err := c.Check(ctx, path)
				results <- indexed{idx: i, res: BatchResult{Path: path, Report: rep, Err: err}}
			}(i, path)
		}
	}()

	out := make([]BatchResult, len(paths))
	for range paths {
		r := <-results
		out[r.idx] = r.res
		if progress != nil {
			progress(r.res)
		}
	}
	if err := ctx.Err(); err != nil {
		c.log.Warn("batch cancelled", "error", err)
	}
	return out
}
