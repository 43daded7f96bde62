package plugins

import (
	"context"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/pkg/logger"
)

// ProcessorStageCheck rejects post-processors declaring a stage outside the
// closed early/middle/late enumeration.
func ProcessorStageCheck(p PostProcessor) error {
	if !p.Stage().Valid() {
		return errs.NewInvalidConfig(nil, "post-processor stage %q is not one of early/middle/late", p.Stage())
	}
	return nil
}

var stageOrder = []Stage{StageEarly, StageMiddle, StageLate}

// RunPostProcessors runs processors grouped by stage (early, middle, late),
// in registration order within a stage, threading the mutated result through
// sequentially. A processor error aborts the run unless the config downgrades
// processor failures to log-and-continue.
func RunPostProcessors(
	ctx context.Context,
	processors []PostProcessor,
	result *models.ExtractionResult,
	config *models.ExtractionConfig,
	log logger.Logger,
) error {
	if log == nil {
		log = logger.NewNop()
	}
	for _, stage := range stageOrder {
		for _, p := range processors {
			if p.Stage() != stage {
				continue
			}
			if !processorAllowed(config, p.Name()) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.Process(ctx, result, config); err != nil {
				if config != nil && config.ContinueOnProcessorError {
					log.Warn("post-processor failed, continuing",
						logger.String("processor", p.Name()),
						logger.String("stage", string(stage)),
						logger.Error(err),
					)
					continue
				}
				return errs.NewPlugin(p.Name(), err, "post-processor %q failed", p.Name())
			}
		}
	}
	return nil
}

func processorAllowed(config *models.ExtractionConfig, name string) bool {
	if config == nil {
		return true
	}
	for _, denied := range config.ProcessorDenyList {
		if denied == name {
			return false
		}
	}
	if len(config.ProcessorAllowList) == 0 {
		return true
	}
	for _, allowed := range config.ProcessorAllowList {
		if allowed == name {
			return true
		}
	}
	return false
}
