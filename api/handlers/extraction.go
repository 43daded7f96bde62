package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/pipeline"
	"github.com/feichai0017/docintel/internal/service/extraction"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/queue"
	"github.com/feichai0017/docintel/pkg/storage"
)

// ExtractionHandler exposes the extraction engine over HTTP: synchronous
// extraction, batch extraction and the queued job surface.
type ExtractionHandler struct {
	service extraction.Service
	queue   queue.Queue
	store   storage.Store
	log     logger.Logger
}

type ErrorResponse struct {
	Error   string    `json:"error,omitempty"`
	Kind    errs.Kind `json:"kind,omitempty"`
	Message string    `json:"message"`
}

type JobResponse struct {
	JobID     string `json:"jobId"`
	State     string `json:"state"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"createdAt"`
}

func NewExtractionHandler(svc extraction.Service, q queue.Queue, store storage.Store, log logger.Logger) *ExtractionHandler {
	return &ExtractionHandler{service: svc, queue: q, store: store, log: log}
}

// Extract runs the pipeline synchronously on an uploaded file. An optional
// "config" form field carries a JSON extraction configuration.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}
	config, ok := h.readConfig(c)
	if !ok {
		return
	}

	result, err := h.service.ExtractBytes(c.Request.Context(), data, c.PostForm("mimeType"), filename, config)
	if err != nil {
		h.handleError(c, "Extraction failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExtractBatch runs the pipeline over every uploaded file and reports a
// per-file outcome.
func (h *ExtractionHandler) ExtractBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "Invalid form data", err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		h.badRequest(c, "No files provided", nil)
		return
	}
	config, ok := h.readConfig(c)
	if !ok {
		return
	}

	inputs := make([]pipeline.Input, len(files))
	for i, header := range files {
		file, err := header.Open()
		if err != nil {
			h.badRequest(c, "Cannot open "+header.Filename, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.badRequest(c, "Cannot read "+header.Filename, err)
			return
		}
		inputs[i] = pipeline.Input{Data: data, Filename: header.Filename}
	}

	items, err := h.service.ExtractBatchItems(c.Request.Context(), inputs, config)
	if err != nil {
		h.handleError(c, "Batch extraction failed", err)
		return
	}

	type batchEntry struct {
		Filename string                   `json:"filename"`
		Result   *models.ExtractionResult `json:"result,omitempty"`
		Error    string                   `json:"error,omitempty"`
		Kind     errs.Kind                `json:"kind,omitempty"`
	}
	entries := make([]batchEntry, len(items))
	for i, item := range items {
		entries[i] = batchEntry{Filename: files[i].Filename, Result: item.Result}
		if item.Err != nil {
			entries[i].Error = item.Err.Error()
			entries[i].Kind = errs.KindOf(item.Err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// SubmitJob stores the upload and enqueues an asynchronous extraction job.
func (h *ExtractionHandler) SubmitJob(c *gin.Context) {
	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}
	config, ok := h.readConfig(c)
	if !ok {
		return
	}

	job := &queue.Job{
		ID:        uuid.New().String(),
		Filename:  filename,
		MimeType:  c.PostForm("mimeType"),
		Config:    config,
		CreatedAt: time.Now(),
	}

	if err := h.store.Put(c.Request.Context(), storage.DocumentKey(job.ID), bytes.NewReader(data)); err != nil {
		h.handleError(c, "Cannot store document", err)
		return
	}
	if err := h.queue.Enqueue(c.Request.Context(), job); err != nil {
		h.handleError(c, "Cannot enqueue job", err)
		return
	}

	h.log.Info("extraction job submitted",
		logger.String("jobId", job.ID),
		logger.String("filename", filename),
	)
	c.JSON(http.StatusAccepted, JobResponse{
		JobID:     job.ID,
		State:     queue.StatePending,
		Filename:  filename,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

// JobStatus reports the state of a queued job.
func (h *ExtractionHandler) JobStatus(c *gin.Context) {
	status, err := h.queue.GetJobStatus(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		h.handleError(c, "Cannot get job status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// JobResult streams the archived extraction result of a completed job.
func (h *ExtractionHandler) JobResult(c *gin.Context) {
	jobID := c.Param("jobId")
	reader, err := h.store.Get(c.Request.Context(), storage.ResultKey(jobID))
	if err != nil {
		h.handleError(c, "Result not available", err)
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		h.handleError(c, "Cannot read result", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=result_"+jobID+".json")
	c.Data(http.StatusOK, "application/json", data)
}

// CancelJob removes a pending job from the queue.
func (h *ExtractionHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("jobId")
	if err := h.queue.CancelJob(c.Request.Context(), jobID); err != nil {
		h.handleError(c, "Cannot cancel job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobId": jobID, "state": queue.StateFailed})
}

// Plugins lists the registered plugin names per registry.
func (h *ExtractionHandler) Plugins(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"extractors":     h.service.ListExtractors(),
		"postProcessors": h.service.ListPostProcessors(),
		"validators":     h.service.ListValidators(),
		"ocrBackends":    h.service.ListOcrBackends(),
		"mimeTypes":      h.service.SupportedMimeTypes(),
	})
}

// CacheStats reports the result cache counters.
func (h *ExtractionHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CacheStats(c.Request.Context()))
}

// ClearCache empties the result cache.
func (h *ExtractionHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		h.handleError(c, "Cannot clear cache", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Health is the liveness probe.
func (h *ExtractionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ExtractionHandler) readUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.badRequest(c, "Invalid file upload", err)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.badRequest(c, "Cannot read upload", err)
		return nil, "", false
	}
	return data, header.Filename, true
}

func (h *ExtractionHandler) readConfig(c *gin.Context) (*models.ExtractionConfig, bool) {
	raw := c.PostForm("config")
	if raw == "" {
		return nil, true
	}
	cfg := models.DefaultConfig()
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		h.badRequest(c, "Invalid extraction config", err)
		return nil, false
	}
	return cfg, true
}

func (h *ExtractionHandler) badRequest(c *gin.Context, message string, err error) {
	h.respondError(c, http.StatusBadRequest, message, err)
}

// handleError maps the error taxonomy onto HTTP statuses.
func (h *ExtractionHandler) handleError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindInvalidFormat:
		status = http.StatusUnsupportedMediaType
	case errs.KindInvalidConfig:
		status = http.StatusBadRequest
	case errs.KindIO:
		status = http.StatusNotFound
	}
	h.respondError(c, status, message, err)
}

func (h *ExtractionHandler) respondError(c *gin.Context, status int, message string, err error) {
	h.log.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)
	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
		response.Kind = errs.KindOf(err)
	}
	c.JSON(status, response)
}
