package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
)

// TaskTypeExtraction is the asynq task type for one queued extraction job.
const TaskTypeExtraction = "extraction:run"

// Job states stored alongside the queue.
const (
	StatePending   = "pending"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Job describes one queued extraction. The document bytes live in the
// artifact store under the job's document key; the payload stays small.
type Job struct {
	ID        string                   `json:"id"`
	Filename  string                   `json:"filename"`
	MimeType  string                   `json:"mimeType,omitempty"`
	Priority  int                      `json:"priority"`
	Config    *models.ExtractionConfig `json:"config,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
}

// JobStatus is the externally visible state of a job.
type JobStatus struct {
	JobID      string    `json:"jobId"`
	State      string    `json:"state"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  errs.Kind `json:"errorKind,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Queue is the job surface the API and the worker share.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
	GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error)
	CancelJob(ctx context.Context, jobID string) error
	SaveStatus(ctx context.Context, status *JobStatus) error
}

// Config tunes the asynq queue.
type Config struct {
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	MaxRetries     int
	ProcessTimeout time.Duration
	StatusTTL      time.Duration
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.RedisAddr == "" {
		out.RedisAddr = "localhost:6379"
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = 3
	}
	if out.ProcessTimeout <= 0 {
		out.ProcessTimeout = 30 * time.Minute
	}
	if out.StatusTTL <= 0 {
		out.StatusTTL = 24 * time.Hour
	}
	return &out
}

// queueNames in weight order; job priority selects one.
var queueNames = []string{"critical", "default", "low"}

const statusKeyPrefix = "docintel:job:"

// AsynqQueue is the redis-backed Queue implementation. Job status snapshots
// live in redis under their own keys so status survives task completion.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
	cfg       *Config
}

func NewAsynqQueue(cfg *Config) *AsynqQueue {
	cfg = cfg.withDefaults()
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
		cfg: cfg,
	}
}

func (q *AsynqQueue) Enqueue(ctx context.Context, job *Job) error {
	if job.ID == "" {
		return errs.NewInvalidConfig(nil, "config error: job has no id")
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return errs.NewExtraction(err, "cannot marshal job %s", job.ID)
	}

	queueName := "low"
	switch job.Priority {
	case 1:
		queueName = "critical"
	case 2:
		queueName = "default"
	}

	task := asynq.NewTask(TaskTypeExtraction, payload,
		asynq.TaskID(job.ID),
		asynq.Queue(queueName),
		asynq.MaxRetry(q.cfg.MaxRetries),
		asynq.Timeout(q.cfg.ProcessTimeout),
	)
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return errs.NewIO(err, "cannot enqueue job %s", job.ID)
	}

	return q.SaveStatus(ctx, &JobStatus{
		JobID:     job.ID,
		State:     StatePending,
		StartedAt: time.Now(),
	})
}

func (q *AsynqQueue) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	data, err := q.redis.Get(ctx, statusKeyPrefix+jobID).Bytes()
	if err == nil {
		var status JobStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, errs.NewExtraction(err, "cannot decode status of job %s", jobID)
		}
		return &status, nil
	}
	if err != redis.Nil {
		return nil, errs.NewIO(err, "cannot read status of job %s", jobID)
	}

	// no snapshot yet; fall back to the queue's own view
	for _, queueName := range queueNames {
		info, err := q.inspector.GetTaskInfo(queueName, jobID)
		if err != nil {
			continue
		}
		return statusFromTaskInfo(info), nil
	}
	return nil, errs.NewIO(nil, "job %s not found", jobID).WithContext("job", jobID)
}

func (q *AsynqQueue) CancelJob(ctx context.Context, jobID string) error {
	var lastErr error
	for _, queueName := range queueNames {
		if err := q.inspector.DeleteTask(queueName, jobID); err == nil {
			return q.SaveStatus(ctx, &JobStatus{
				JobID:      jobID,
				State:      StateFailed,
				Error:      "cancelled",
				FinishedAt: time.Now(),
			})
		} else {
			lastErr = err
		}
	}
	return errs.NewIO(lastErr, "cannot cancel job %s", jobID)
}

func (q *AsynqQueue) SaveStatus(ctx context.Context, status *JobStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return errs.NewExtraction(err, "cannot marshal status of job %s", status.JobID)
	}
	if err := q.redis.Set(ctx, statusKeyPrefix+status.JobID, data, q.cfg.StatusTTL).Err(); err != nil {
		return errs.NewIO(err, "cannot save status of job %s", status.JobID)
	}
	return nil
}

// Close releases the queue's connections.
func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

func statusFromTaskInfo(info *asynq.TaskInfo) *JobStatus {
	status := &JobStatus{JobID: info.ID, StartedAt: info.NextProcessAt}
	switch info.State {
	case asynq.TaskStateActive:
		status.State = StateRunning
	case asynq.TaskStateCompleted:
		status.State = StateCompleted
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateRetry, asynq.TaskStateArchived:
		status.State = StateFailed
		status.Error = info.LastErr
		status.ErrorKind = errs.Classify(info.LastErr)
	default:
		status.State = StatePending
	}
	return status
}
