package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/sylcheck/internal/checker"
)

func TestContentHashHex(t *testing.T) {
	data := []byte("hello world")
	assert.Equal(t, ContentHashHex(data), ContentHashHex(data))
	// SHA-256 of "hello world" and of empty input are well-known.
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", ContentHashHex(data))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHashHex([]byte{}))
}

func TestNewJob(t *testing.T) {
	job := NewJob([]File{
		{Name: "a.txt", Data: []byte("aaa")},
		{Name: "b.txt", Data: []byte("bbb")},
	})
	_, err := uuid.Parse(job.ID)
	require.NoError(t, err, "job id %q", job.ID)

	snap := job.Snapshot()
	assert.Equal(t, StatusQueued, snap.Status)
	assert.Equal(t, 2, snap.Progress.TotalFiles)
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "a.txt", snap.Results[0].Filename)
	assert.Equal(t, ContentHashHex([]byte("aaa")), snap.Results[0].ContentHash)
	assert.NotEqual(t, job.ID, NewJob(nil).ID)
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob(nil)
	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusChecking, "checking"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		assert.Equal(t, tr.status, job.Status)
		assert.Equal(t, tr.phase, job.Phase)
		assert.True(t, job.UpdatedAt.After(before), "UpdatedAt should advance after SetStatus(%q)", tr.status)
	}
}

func TestJob_SetResultAndFinish(t *testing.T) {
	cases := []struct {
		name   string
		errs   []error
		status JobStatus
	}{
		{"all ok", []error{nil, nil}, StatusCompleted},
		{"some failed", []error{nil, errors.New("bad")}, StatusPartial},
		{"all failed", []error{errors.New("x"), errors.New("y")}, StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files := make([]File, len(tc.errs))
			for i := range files {
				files[i] = File{Name: string(rune('a'+i)) + ".txt"}
			}
			job := NewJob(files)
			for i, err := range tc.errs {
				var rep *checker.Report
				if err == nil {
					rep = &checker.Report{Filename: files[i].Name}
				}
				job.SetResult(i, rep, err)
			}
			assert.Equal(t, tc.status, job.Finish())

			snap := job.Snapshot()
			assert.Equal(t, len(tc.errs), snap.Progress.FilesChecked)
			for i, err := range tc.errs {
				r := snap.Results[i]
				if err != nil {
					assert.NotEmpty(t, r.Error, "file %d", i)
					assert.Nil(t, r.Report, "file %d", i)
				} else {
					assert.Empty(t, r.Error, "file %d", i)
					assert.NotNil(t, r.Report, "file %d", i)
				}
			}
		})
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob(nil)
	job.AddError("queue full")
	job.AddError("shutdown")

	assert.Equal(t, []string{"queue full", "shutdown"}, job.Snapshot().Progress.Errors)
}

func TestJob_ReleaseFiles(t *testing.T) {
	job := NewJob([]File{{Name: "a.txt", Data: []byte("content")}})
	require.Len(t, job.Files(), 1)
	job.ReleaseFiles()
	assert.Nil(t, job.Files())
	assert.NotEmpty(t, job.Snapshot().Results[0].ContentHash, "content hash survives release")
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	snap := NewJob(nil).Snapshot()
	assert.NotNil(t, snap.Progress.Errors)
	assert.Empty(t, snap.Progress.Errors)
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob(nil)
	store.Put(job)

	got := store.Get(job.ID)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, 1, store.Len())
	assert.Nil(t, store.Get("nonexistent"))
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	store.Put(&Job{ID: "old", UpdatedAt: time.Now()})
	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	store.Cleanup()

	assert.Nil(t, store.Get("old"), "expired job cleaned up")
	assert.NotNil(t, store.Get("new"), "fresh job survives")
}
