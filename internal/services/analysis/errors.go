package analysis

import (
	"errors"
	"fmt"
	"strings"

	"TrueSignal/pkg/validation"
)

// Classification of a terminal orchestration failure.
type Classification string

const (
	ClassUpstreamTimeout    Classification = "upstream-timeout"
	ClassUpstreamError      Classification = "upstream-error"
	ClassNonJSON            Classification = "non-json-output"
	ClassSchemaInvalidAfter Classification = "schema-invalid-after-repair"
)

var (
	// ErrNoContent means the generation source returned an empty completion.
	ErrNoContent = errors.New("empty completion")
	// ErrNotJSON means the text could not be parsed even after repair.
	ErrNotJSON = errors.New("output is not JSON")
)

// ValidationError carries the issues of one failed validation.
type ValidationError struct {
	Issues []validation.Issue
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(validation.Messages(e.Issues), "; ")
}

// Details is the diagnostic context attached to a Failure.
type Details struct {
	Issues    []validation.Issue `json:"issues,omitempty"`
	Raw       string             `json:"raw,omitempty"`
	LatencyMs int64              `json:"latencyMs"`
	Attempts  int                `json:"attempts"`
}

// Failure is the terminal error of an orchestration run.
type Failure struct {
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
	Details        Details        `json:"details"`
	Err            error          `json:"-"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Classification, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
