package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/feichai0017/docintel/config"
	"github.com/feichai0017/docintel/internal/cache"
	"github.com/feichai0017/docintel/internal/enrich"
	"github.com/feichai0017/docintel/internal/ocr"
	"github.com/feichai0017/docintel/internal/service/extraction"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/queue"
	"github.com/feichai0017/docintel/pkg/storage"
	"github.com/feichai0017/docintel/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisCfg := cfg.GetRedisConfig()
	ollamaCfg := cfg.GetOllamaConfig()

	storageKind := storage.Kind(os.Getenv("STORAGE_BACKEND"))
	if storageKind == "" {
		storageKind = storage.KindMinio
	}
	store, err := storage.NewStore(storageKind, log)
	if err != nil {
		log.Error("artifact store unavailable", logger.Error(err))
		os.Exit(1)
	}

	q := queue.NewAsynqQueue(&queue.Config{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
	})
	defer q.Close()

	svc := extraction.NewService(&extraction.ServiceConfig{
		Cache: cache.NewRedisCache(&cache.RedisCacheConfig{
			Addr: redisCfg.Addr,
			DB:   redisCfg.DB,
		}, log),
		Detector: enrich.NewLanguageDetector(),
		Embedder: enrich.NewOllamaEmbedder(&enrich.OllamaConfig{
			Endpoint: ollamaCfg.Endpoint,
			Model:    ollamaCfg.Model,
		}),
	}, log)

	// worker hosts the OCR backends; the API never runs recognition itself
	if err := svc.RegisterOcrBackend(ocr.NewTesseractBackend(nil, log)); err != nil {
		log.Warn("tesseract backend not registered", logger.Error(err))
	}
	textractCfg := cfg.GetTextractConfig()
	if textractCfg.AccessKey != "" {
		backend, err := ocr.NewTextractBackend(context.Background(), &ocr.TextractConfig{
			Region:    textractCfg.Region,
			AccessKey: textractCfg.AccessKey,
			SecretKey: textractCfg.SecretKey,
		}, log)
		if err != nil {
			log.Warn("textract backend not built", logger.Error(err))
		} else if err := svc.RegisterOcrBackend(backend); err != nil {
			log.Warn("textract backend not registered", logger.Error(err))
		}
	}

	workerCfg := &worker.Config{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
		Concurrency:   10,
	}
	w := worker.NewExtractionWorker(workerCfg, svc, store, q, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		log.Error("worker start failed", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down worker")
	w.Stop()
	log.Info("worker stopped")
}
