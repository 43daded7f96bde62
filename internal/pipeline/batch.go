package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
)

// BatchItem is the per-input outcome of ExtractBatchItems. Exactly one of
// Result and Err is set.
type BatchItem struct {
	Result *models.ExtractionResult
	Err    error
}

func batchLimit(config *models.ExtractionConfig) int {
	if config != nil && config.MaxConcurrentExtractions > 0 {
		return config.MaxConcurrentExtractions
	}
	return models.DefaultMaxConcurrency()
}

// ExtractBatch extracts every input concurrently, bounded by the config's
// concurrency limit, and fails fast: the first error cancels the remaining
// work and is returned naming the input that caused it. Results keep input
// order.
func (o *Orchestrator) ExtractBatch(ctx context.Context, inputs []Input, config *models.ExtractionConfig) ([]*models.ExtractionResult, error) {
	if len(inputs) == 0 {
		return nil, errs.NewInvalidConfig(nil, "config error: batch input is empty")
	}
	if config == nil {
		config = models.DefaultConfig()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLimit(config))

	results := make([]*models.ExtractionResult, len(inputs))
	for i := range inputs {
		i := i
		g.Go(func() error {
			result, err := o.Extract(gctx, inputs[i], config)
			if err != nil {
				return fmt.Errorf("batch input %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractBatchItems extracts every input concurrently and reports a per-input
// outcome instead of failing fast: one bad document does not sink the batch.
// Outcomes keep input order.
func (o *Orchestrator) ExtractBatchItems(ctx context.Context, inputs []Input, config *models.ExtractionConfig) ([]BatchItem, error) {
	if len(inputs) == 0 {
		return nil, errs.NewInvalidConfig(nil, "config error: batch input is empty")
	}
	if config == nil {
		config = models.DefaultConfig()
	}

	sem := semaphore.NewWeighted(int64(batchLimit(config)))
	items := make([]BatchItem, len(inputs))

	var wg sync.WaitGroup
	for i := range inputs {
		if err := sem.Acquire(ctx, 1); err != nil {
			items[i] = BatchItem{Err: err}
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			result, err := o.Extract(ctx, inputs[i], config)
			items[i] = BatchItem{Result: result, Err: err}
		}(i)
	}
	wg.Wait()
	return items, nil
}
