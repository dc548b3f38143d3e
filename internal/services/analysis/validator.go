package analysis

import (
	"context"
	"fmt"

	"TrueSignal/internal/domain/models"
	"TrueSignal/pkg/validation"
)

// Validator checks a sanitized analysis against the strict schema. It never
// modifies its input.
type Validator struct {
	engine *validation.Engine
}

func NewValidator() *Validator {
	return &Validator{engine: validation.New()}
}

// Validate returns the failed constraints, or nil when r is valid.
func (v *Validator) Validate(ctx context.Context, r *models.AnalysisResult) []validation.Issue {
	if r == nil {
		return []validation.Issue{{Code: "ERR_REQUIRED", Message: "analysis is required"}}
	}
	issues, err := v.engine.Struct(ctx, r)
	if err != nil {
		return []validation.Issue{{Code: "ERR_VALIDATOR", Message: fmt.Sprintf("validator: %v", err)}}
	}
	return issues
}

// ValidateRoot rejects parsed output whose root is not an object. Sanitize
// would otherwise turn it into an all-defaults analysis.
func (v *Validator) ValidateRoot(root Value) []validation.Issue {
	if _, ok := root.(*Object); ok {
		return nil
	}
	kind := Kind(root)
	return []validation.Issue{{
		Code:    "ERR_TYPE",
		Message: "analysis must be a JSON object, got " + kind,
		Params:  map[string]interface{}{"kind": kind},
	}}
}
