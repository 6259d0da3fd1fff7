package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/sylcheck/internal/checker"
	"github.com/dgallion1/sylcheck/internal/config"
)

type fakeChecker struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeChecker) CheckReader(_ context.Context, r io.Reader, filename string) (*checker.Report, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filename)
	f.mu.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(string(data), "bad") {
		return nil, &checker.ExtractionError{Filename: filename, Err: errors.New("corrupt")}
	}
	return &checker.Report{Filename: filename, TextLength: len(data)}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_ProcessMixedBatch(t *testing.T) {
	fc := &fakeChecker{}
	w := NewWorker(fc, quietLogger(), 2)
	job := NewJob([]File{
		{Name: "one.txt", Data: []byte("syllabus one")},
		{Name: "broken.pdf", Data: []byte("bad bytes")},
		{Name: "two.txt", Data: []byte("syllabus two")},
	})

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusPartial, snap.Status)
	assert.Equal(t, 3, snap.Progress.FilesChecked)
	assert.Equal(t, 1, snap.Progress.FilesFailed)
	assert.NotNil(t, snap.Results[0].Report)
	assert.NotNil(t, snap.Results[2].Report)
	assert.Contains(t, snap.Results[1].Error, "corrupt")
	assert.Nil(t, job.Files(), "uploaded bytes released after processing")
}

func TestWorker_DuplicateContentCheckedOnce(t *testing.T) {
	fc := &fakeChecker{}
	w := NewWorker(fc, quietLogger(), 4)
	job := NewJob([]File{
		{Name: "a.txt", Data: []byte("same content")},
		{Name: "b.txt", Data: []byte("same content")},
	})

	w.Process(context.Background(), job)

	require.Len(t, fc.calls, 1)
	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, "a.txt", snap.Results[0].Report.Filename)
	assert.Equal(t, "b.txt", snap.Results[1].Report.Filename)
}

func TestWorker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewJob([]File{{Name: "a.txt", Data: []byte("x")}})
	NewWorker(&fakeChecker{}, quietLogger(), 1).Process(ctx, job)

	assert.Equal(t, StatusFailed, job.Snapshot().Status)
}

func TestOrchestrator_SubmitAndComplete(t *testing.T) {
	cfg := config.Default()
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 4
	o := NewOrchestrator(cfg, &fakeChecker{}, quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob([]File{{Name: "a.txt", Data: []byte("syllabus")}})
	require.NoError(t, o.Submit(job))
	assert.Same(t, job, o.GetJob(job.ID))

	assert.Eventually(t, func() bool {
		return job.Snapshot().Status == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Default()
	cfg.MaxQueueSize = 1
	// Not started, so nothing drains the queue.
	o := NewOrchestrator(cfg, &fakeChecker{}, quietLogger())

	require.NoError(t, o.Submit(NewJob(nil)))
	second := NewJob(nil)
	require.ErrorIs(t, o.Submit(second), ErrQueueFull)

	snap := second.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "queue_full", snap.Phase)
	assert.Equal(t, 1, o.QueueDepth())

	o.Stop()
	o.Stop()
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(config.Default(), &fakeChecker{}, quietLogger())
	o.Start(context.Background())
	o.Stop()

	job := NewJob([]File{{Name: "late.txt", Data: []byte("syllabus")}})
	var err error
	require.NotPanics(t, func() { err = o.Submit(job) })
	require.ErrorIs(t, err, ErrStopped)

	snap := o.GetJob(job.ID).Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "shutting_down", snap.Phase)
}

func TestOrchestrator_ConcurrentSubmitAndStop(t *testing.T) {
	cfg := config.Default()
	cfg.MaxQueueSize = 64
	o := NewOrchestrator(cfg, &fakeChecker{}, quietLogger())
	o.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				err := o.Submit(NewJob([]File{{Name: "a.txt", Data: []byte("x")}}))
				if err != nil && !errors.Is(err, ErrStopped) && !errors.Is(err, ErrQueueFull) {
					t.Errorf("unexpected submit error: %v", err)
				}
			}
		}()
	}
	o.Stop()
	wg.Wait()
}
