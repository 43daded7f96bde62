package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/service/extraction"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/queue"
	"github.com/feichai0017/docintel/pkg/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return nil, errs.NewIO(nil, "artifact %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) CleanupBefore(context.Context, time.Time) error { return nil }

type fakeQueue struct {
	mu       sync.Mutex
	statuses []*queue.JobStatus
}

func (q *fakeQueue) Enqueue(context.Context, *queue.Job) error { return nil }
func (q *fakeQueue) GetJobStatus(context.Context, string) (*queue.JobStatus, error) {
	return nil, errs.NewIO(nil, "not found")
}
func (q *fakeQueue) CancelJob(context.Context, string) error { return nil }
func (q *fakeQueue) SaveStatus(_ context.Context, status *queue.JobStatus) error {
	q.mu.Lock()
	q.statuses = append(q.statuses, status)
	q.mu.Unlock()
	return nil
}

func (q *fakeQueue) last() *queue.JobStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.statuses) == 0 {
		return nil
	}
	return q.statuses[len(q.statuses)-1]
}

func newTestWorker(t *testing.T) (*ExtractionWorker, *fakeStore, *fakeQueue) {
	t.Helper()
	log := logger.NewTestLogger()
	store := newFakeStore()
	q := &fakeQueue{}
	svc := extraction.NewService(nil, log)
	return NewExtractionWorker(&Config{}, svc, store, q, log), store, q
}

func jobTask(t *testing.T, job *queue.Job) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(job)
	require.NoError(t, err)
	return asynq.NewTask(queue.TaskTypeExtraction, payload)
}

func TestHandleExtractionStoresResult(t *testing.T) {
	w, store, q := newTestWorker(t)

	job := &queue.Job{ID: "job-1", Filename: "note.txt", MimeType: "text/plain"}
	require.NoError(t, store.Put(context.Background(), storage.DocumentKey(job.ID), bytes.NewReader([]byte("stored document"))))

	require.NoError(t, w.handleExtraction(context.Background(), jobTask(t, job)))

	raw, ok := store.objects[storage.ResultKey(job.ID)]
	require.True(t, ok, "result artifact must be stored")

	var result models.ExtractionResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, "stored document", result.Content)
	assert.Equal(t, "text/plain", result.MimeType)

	last := q.last()
	require.NotNil(t, last)
	assert.Equal(t, queue.StateCompleted, last.State)
}

func TestHandleExtractionMissingDocument(t *testing.T) {
	w, store, q := newTestWorker(t)

	job := &queue.Job{ID: "job-2", Filename: "ghost.txt", MimeType: "text/plain"}
	err := w.handleExtraction(context.Background(), jobTask(t, job))
	require.Error(t, err)

	_, ok := store.objects[storage.ResultKey(job.ID)]
	assert.False(t, ok)

	last := q.last()
	require.NotNil(t, last)
	assert.Equal(t, queue.StateFailed, last.State)
	assert.Equal(t, errs.KindIO, last.ErrorKind)
}

func TestHandleExtractionFailureKindPropagates(t *testing.T) {
	w, store, q := newTestWorker(t)

	job := &queue.Job{ID: "job-3", Filename: "bad.bin", MimeType: "application/zip"}
	require.NoError(t, store.Put(context.Background(), storage.DocumentKey(job.ID), bytes.NewReader([]byte("binary"))))

	err := w.handleExtraction(context.Background(), jobTask(t, job))
	require.Error(t, err)

	last := q.last()
	require.NotNil(t, last)
	assert.Equal(t, queue.StateFailed, last.State)
	assert.Equal(t, errs.KindInvalidFormat, last.ErrorKind)
}
