package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/dgallion1/sylcheck/internal/checker"
)

// Checker checks one uploaded syllabus.
type Checker interface {
	CheckReader(ctx context.Context, r io.Reader, filename string) (*checker.Report, error)
}

// Worker processes a single batch job.
type Worker struct {
	checker       Checker
	log           *slog.Logger
	maxConcurrent int
}

func NewWorker(c Checker, log *slog.Logger, maxConcurrent int) *Worker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Worker{checker: c, log: log, maxConcurrent: maxConcurrent}
}

// Process checks every file of a job. Files with identical content are
// checked once and share the report.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	job.SetStatus(StatusChecking, "checking")

	files := job.Files()
	snap := job.Snapshot()

	// Group duplicate uploads by content hash.
	groups := make(map[string][]int)
	var order []string
	for i, r := range snap.Results {
		if _, ok := groups[r.ContentHash]; !ok {
			order = append(order, r.ContentHash)
		}
		groups[r.ContentHash] = append(groups[r.ContentHash], i)
	}

	type checkResult struct {
		hash string
		rep  *checker.Report
		err  error
	}
	results := make(chan checkResult, len(order))
	sem := make(chan struct{}, w.maxConcurrent)

	for _, hash := range order {
		sem <- struct{}{}
		go func(hash string) {
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results <- checkResult{hash: hash, err: err}
				return
			}
			f := files[groups[hash][0]]
			rep, err := w.checker.CheckReader(ctx, bytes.NewReader(f.Data), f.Name)
			results <- checkResult{hash: hash, rep: rep, err: err}
		}(hash)
	}

	for range order {
		r := <-results
		for _, i := range groups[r.hash] {
			rep := r.rep
			if rep != nil && files[i].Name != rep.Filename {
				dup := *rep
				dup.Filename = files[i].Name
				rep = &dup
			}
			job.SetResult(i, rep, r.err)
		}
		if r.err != nil {
			log.Warn("check failed", "file", files[groups[r.hash][0]].Name, "error", r.err)
		}
	}

	job.ReleaseFiles()
	status := job.Finish()
	if len(order) < len(files) {
		log.Info("duplicate uploads checked once", "files", len(files), "unique", len(order))
	}
	log.Info("job finished", "status", status, "files", len(files))
}
