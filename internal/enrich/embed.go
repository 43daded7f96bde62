package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
)

// EmbeddingModel produces a vector for a piece of text.
type EmbeddingModel interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaConfig configures the Ollama embedding client.
type OllamaConfig struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// OllamaEmbedder calls a local Ollama server's embeddings API.
type OllamaEmbedder struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func NewOllamaEmbedder(cfg *OllamaConfig) *OllamaEmbedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaEmbedder{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OllamaEmbedder) Name() string { return "ollama:" + c.model }

func (c *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqData, err := json.Marshal(ollamaEmbedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, errs.NewExtraction(err, "cannot marshal embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/embeddings", bytes.NewReader(reqData))
	if err != nil {
		return nil, errs.NewExtraction(err, "cannot build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewExtraction(err, "embedding request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errs.NewExtraction(nil, "embedding server returned %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errs.NewExtraction(err, "cannot decode embedding response")
	}
	if result.Error != "" {
		return nil, errs.NewExtraction(nil, "embedding server error: %s", result.Error)
	}
	return result.Embedding, nil
}

func (c *OllamaEmbedder) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// EmbedChunks fills the Embedding field of each chunk in place. The first
// failure aborts; the caller decides whether that is fatal for the request.
func EmbedChunks(ctx context.Context, model EmbeddingModel, chunks []models.Chunk) error {
	for i := range chunks {
		vec, err := model.Embed(ctx, chunks[i].Content)
		if err != nil {
			return err
		}
		chunks[i].Embedding = vec
	}
	return nil
}
