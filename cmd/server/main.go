package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/docintel/api/handlers"
	"github.com/feichai0017/docintel/api/routes"
	cfg "github.com/feichai0017/docintel/config"
	"github.com/feichai0017/docintel/internal/cache"
	"github.com/feichai0017/docintel/internal/enrich"
	"github.com/feichai0017/docintel/internal/service/extraction"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/queue"
	"github.com/feichai0017/docintel/pkg/storage"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/server.log"}),
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
		log.Fatal("artifact store unavailable", logger.Error(err))
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

	h := handlers.NewHandlers(svc, q, store, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		log.Info("server starting on :8080")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", logger.Error(err))
	}
}
