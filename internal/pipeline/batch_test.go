package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/extractors"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/pkg/logger"
)

func TestExtractBatchEmptyInput(t *testing.T) {
	o := newTextOrchestrator(t, Deps{})

	_, err := o.ExtractBatch(context.Background(), nil, plainConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
	assert.Equal(t, errs.KindInvalidConfig, errs.KindOf(err))

	_, err = o.ExtractBatchItems(context.Background(), nil, plainConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestExtractBatchPreservesOrder(t *testing.T) {
	o := newTextOrchestrator(t, Deps{})

	inputs := []Input{
		{Data: []byte("first"), MimeType: "text/plain"},
		{Data: []byte("second"), MimeType: "text/plain"},
		{Data: []byte("third"), MimeType: "text/plain"},
	}
	results, err := o.ExtractBatch(context.Background(), inputs, plainConfig())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
	assert.Equal(t, "third", results[2].Content)
}

func TestExtractBatchFailFastNamesInput(t *testing.T) {
	o := newTextOrchestrator(t, Deps{})

	inputs := []Input{
		{Data: []byte("fine"), MimeType: "text/plain"},
		{Data: []byte{0xff, 0xfe, 0xfd}, MimeType: "text/plain"},
	}
	results, err := o.ExtractBatch(context.Background(), inputs, plainConfig())
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "batch input 1")
	assert.Equal(t, errs.KindInvalidFormat, errs.KindOf(err))
}

func TestExtractBatchRespectsConcurrencyLimit(t *testing.T) {
	log := logger.NewTestLogger()
	stub := &stubExtractor{
		name:      "stub",
		mimes:     []string{"text/plain"},
		echoInput: true,
		delay:     10 * time.Millisecond,
	}
	reg := extractors.NewRegistry(log)
	require.NoError(t, reg.Register(stub))

	o := newTextOrchestrator(t, Deps{Extractors: reg, Logger: log})

	cfg := plainConfig()
	cfg.MaxConcurrentExtractions = 2

	inputs := make([]Input, 8)
	for i := range inputs {
		inputs[i] = Input{Data: []byte{byte('a' + i)}, MimeType: "text/plain"}
	}
	_, err := o.ExtractBatch(context.Background(), inputs, cfg)
	require.NoError(t, err)
	assert.LessOrEqual(t, stub.maxInFlight.Load(), int32(2))
	assert.Equal(t, int32(8), stub.calls.Load())
}

func TestExtractBatchItemsMixedOutcomes(t *testing.T) {
	o := newTextOrchestrator(t, Deps{})

	inputs := []Input{
		{Data: []byte("good"), MimeType: "text/plain"},
		{Data: []byte{0xff, 0xfe}, MimeType: "text/plain"},
		{Data: []byte("also good"), MimeType: "text/plain"},
	}
	items, err := o.ExtractBatchItems(context.Background(), inputs, plainConfig())
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NoError(t, items[0].Err)
	assert.Equal(t, "good", items[0].Result.Content)

	require.Error(t, items[1].Err)
	assert.Nil(t, items[1].Result)
	assert.Equal(t, errs.KindInvalidFormat, errs.KindOf(items[1].Err))

	require.NoError(t, items[2].Err)
	assert.Equal(t, "also good", items[2].Result.Content)
}
