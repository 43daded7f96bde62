package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/docintel/pkg/logger"
)

type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config tunes the asynq consumer.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Queues        map[string]int
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.RedisAddr == "" {
		out.RedisAddr = "localhost:6379"
	}
	if out.Concurrency <= 0 {
		out.Concurrency = 5
	}
	if out.Queues == nil {
		out.Queues = map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		}
	}
	return &out
}

type BaseWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    logger.Logger
}

func (w *BaseWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.log.Error("worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

func (w *BaseWorker) Stop() error {
	w.server.Stop()
	w.server.Shutdown()
	return nil
}
