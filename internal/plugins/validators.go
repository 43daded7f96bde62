package plugins

import (
	"context"
	"sort"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
)

// ValidatorPriorityCheck rejects validators registered with an out-of-range
// priority.
func ValidatorPriorityCheck(v Validator) error {
	p := v.Priority()
	if p < MinPriority || p > MaxPriority {
		return errs.NewInvalidConfig(nil, "validator priority %d outside [%d, %d]", p, MinPriority, MaxPriority)
	}
	return nil
}

// RunValidators executes validators against result, highest priority first
// (ties keep registration order). Each validator's ShouldValidate gate is
// consulted before Validate. The first validation error aborts the run.
func RunValidators(ctx context.Context, validators []Validator, result *models.ExtractionResult) error {
	sorted := make([]Validator, len(validators))
	copy(sorted, validators)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	for _, v := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !v.ShouldValidate(result) {
			continue
		}
		if err := v.Validate(ctx, result); err != nil {
			return errs.NewPlugin(v.Name(), err, "validator %q rejected result", v.Name())
		}
	}
	return nil
}
