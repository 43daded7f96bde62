package handlers

import (
	"github.com/feichai0017/docintel/internal/service/extraction"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/queue"
	"github.com/feichai0017/docintel/pkg/storage"
)

type Handlers struct {
	Extraction *ExtractionHandler
}

func NewHandlers(
	svc extraction.Service,
	q queue.Queue,
	store storage.Store,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Extraction: NewExtractionHandler(svc, q, store, log),
	}
}
