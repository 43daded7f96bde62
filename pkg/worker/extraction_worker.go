package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/service/extraction"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/queue"
	"github.com/feichai0017/docintel/pkg/storage"
)

// ExtractionWorker consumes extraction jobs: it loads the uploaded document
// from the artifact store, runs the pipeline and archives the JSON result.
type ExtractionWorker struct {
	BaseWorker
	service extraction.Service
	store   storage.Store
	queue   queue.Queue
}

func NewExtractionWorker(cfg *Config, svc extraction.Service, store storage.Store, q queue.Queue, log logger.Logger) *ExtractionWorker {
	cfg = cfg.withDefaults()
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &ExtractionWorker{
		BaseWorker: BaseWorker{
			server: server,
			mux:    asynq.NewServeMux(),
			log:    log,
		},
		service: svc,
		store:   store,
		queue:   q,
	}
	w.mux.HandleFunc(queue.TaskTypeExtraction, w.handleExtraction)
	return w
}

func (w *ExtractionWorker) handleExtraction(ctx context.Context, t *asynq.Task) error {
	var job queue.Job
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		w.log.Error("job payload unreadable", logger.Error(err))
		return err
	}

	w.log.Info("extraction job started",
		logger.String("jobId", job.ID),
		logger.String("filename", job.Filename),
	)
	startedAt := time.Now()
	w.saveStatus(ctx, &queue.JobStatus{JobID: job.ID, State: queue.StateRunning, StartedAt: startedAt})

	if err := w.runJob(ctx, &job); err != nil {
		w.log.Error("extraction job failed",
			logger.String("jobId", job.ID),
			logger.String("kind", string(errs.KindOf(err))),
			logger.Error(err),
		)
		w.saveStatus(ctx, &queue.JobStatus{
			JobID:      job.ID,
			State:      queue.StateFailed,
			Error:      err.Error(),
			ErrorKind:  errs.KindOf(err),
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		})
		return err
	}

	w.saveStatus(ctx, &queue.JobStatus{
		JobID:      job.ID,
		State:      queue.StateCompleted,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	})
	w.log.Info("extraction job completed", logger.String("jobId", job.ID))
	return nil
}

func (w *ExtractionWorker) runJob(ctx context.Context, job *queue.Job) error {
	reader, err := w.store.Get(ctx, storage.DocumentKey(job.ID))
	if err != nil {
		return err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return errs.NewIO(err, "cannot read document of job %s", job.ID)
	}

	result, err := w.service.ExtractBytes(ctx, data, job.MimeType, job.Filename, job.Config)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return errs.NewExtraction(err, "cannot marshal result of job %s", job.ID)
	}
	return w.store.Put(ctx, storage.ResultKey(job.ID), bytes.NewReader(payload))
}

func (w *ExtractionWorker) saveStatus(ctx context.Context, status *queue.JobStatus) {
	if err := w.queue.SaveStatus(ctx, status); err != nil {
		w.log.Warn("job status not saved",
			logger.String("jobId", status.JobID),
			logger.Error(err),
		)
	}
}
