// Package analysis turns untrusted model output into a validated analysis:
// parse, repair, sanitize, validate, with one guided retry.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TrueSignal/internal/domain/models"
	"TrueSignal/internal/domain/repository"
	xlogger "TrueSignal/pkg/logger"
	"TrueSignal/pkg/validation"

	"github.com/kaptinlin/jsonrepair"
)

// State of the orchestration loop.
type State string

const (
	StateRequesting State = "requesting"
	StateParsing    State = "parsing"
	StateSanitizing State = "sanitizing"
	StateValidating State = "validating"
	StateRetrying   State = "retrying"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

const logSnippetBytes = 600

// Task is one analysis to generate.
type Task struct {
	Ticker       string
	Facts        *models.Facts
	SystemPrompt string
	UserPrompt   string
}

// Outcome is a successful run. Repaired is true when the guided retry produced it.
type Outcome struct {
	Result   *models.AnalysisResult
	Usage    models.TokenUsage
	Latency  time.Duration
	Repaired bool
	Attempts int
}

type Orchestrator struct {
	gen       repository.Generator
	ids       repository.IDGenerator
	validator *Validator
	policy    RetryPolicy
	metrics   repository.Metrics
	logger    *xlogger.Logger
}

type Option func(*Orchestrator)

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

func NewOrchestrator(gen repository.Generator, ids repository.IDGenerator, metrics repository.Metrics, logger *xlogger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:       gen,
		ids:       ids,
		validator: NewValidator(),
		policy:    DefaultRetryPolicy(),
		metrics:   metrics,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run drives the generation loop. Errors are always *Failure.
func (o *Orchestrator) Run(ctx context.Context, task Task) (*Outcome, error) {
	start := time.Now()
	log := o.logger.With(xlogger.String("ticker", task.Ticker))

	var (
		usage models.TokenUsage
		hint  string
	)
	for attempt := 1; ; attempt++ {
		o.transition(log, StateRequesting, attempt)
		comp, err := o.gen.Complete(ctx, models.CompletionRequest{
			SystemPrompt:  task.SystemPrompt,
			UserPrompt:    task.UserPrompt,
			RepairHint:    hint,
			LowCreativity: attempt > 1,
		})
		if err != nil {
			class := ClassUpstreamError
			if isTimeout(err) {
				class = ClassUpstreamTimeout
			}
			o.metrics.RecordAttempt(string(class))
			return nil, o.fail(log, class, err.Error(), err, Details{}, start, attempt)
		}
		usage = usage.Add(comp.Usage)
		o.metrics.RecordTokens("prompt", comp.Usage.PromptTokens)
		o.metrics.RecordTokens("completion", comp.Usage.CompletionTokens)
		log.Debug("analysis.raw",
			xlogger.Int("bytes", len(comp.Text)),
			xlogger.Int64("latency_ms", comp.Latency.Milliseconds()),
		)

		o.transition(log, StateParsing, attempt)
		raw, err := ParseLenient(comp.Text)
		if err != nil {
			o.metrics.RecordAttempt(string(ClassNonJSON))
			return nil, o.fail(log, ClassNonJSON, "model did not return valid JSON after repair", err,
				Details{Raw: comp.Text}, start, attempt)
		}
		log.Debug("analysis.pre_sanitize", xlogger.String("root", Kind(raw)), xlogger.Any("lengths", shapeOf(raw)))

		o.transition(log, StateSanitizing, attempt)
		result := Sanitize(raw, task.Facts, o.ids)
		log.Debug("analysis.post_sanitize",
			xlogger.Int("signals_top", len(result.SignalsTop)),
			xlogger.Int("scenarios", len(result.Scenarios)),
		)

		o.transition(log, StateValidating, attempt)
		issues := o.validator.ValidateRoot(raw)
		if len(issues) == 0 {
			issues = o.validator.Validate(ctx, result)
		}
		if len(issues) == 0 {
			o.metrics.RecordAttempt("ok")
			o.transition(log, StateSuccess, attempt)
			out := &Outcome{
				Result:   result,
				Usage:    usage,
				Latency:  time.Since(start),
				Repaired: attempt > 1,
				Attempts: attempt,
			}
			o.metrics.RecordLatency("analysis_generate", out.Latency.Seconds())
			return out, nil
		}

		verr := &ValidationError{Issues: issues}
		o.metrics.RecordAttempt("invalid")
		log.Warn("analysis.validate_fail",
			xlogger.Int("attempt", attempt),
			xlogger.Strings("issues", validation.Messages(issues)),
			xlogger.Snippet("raw", comp.Text, logSnippetBytes),
		)
		if !o.policy.ShouldRetry(attempt, verr) {
			return nil, o.fail(log, ClassSchemaInvalidAfter, "model output invalid after repair attempt", verr,
				Details{Issues: issues, Raw: comp.Text}, start, attempt)
		}

		o.transition(log, StateRetrying, attempt)
		if err := o.policy.Wait(ctx); err != nil {
			class := ClassUpstreamError
			if isTimeout(err) {
				class = ClassUpstreamTimeout
			}
			return nil, o.fail(log, class, err.Error(), err, Details{Issues: issues, Raw: comp.Text}, start, attempt)
		}
		hint = RepairHint(issues, comp.Text)
	}
}

func (o *Orchestrator) transition(log *xlogger.Logger, s State, attempt int) {
	log.Debug("analysis."+string(s), xlogger.Int("attempt", attempt))
}

func (o *Orchestrator) fail(log *xlogger.Logger, class Classification, msg string, err error, d Details, start time.Time, attempt int) *Failure {
	d.LatencyMs = time.Since(start).Milliseconds()
	d.Attempts = attempt
	f := &Failure{Classification: class, Message: msg, Details: d, Err: err}
	o.metrics.RecordError(string(class))
	log.Error("analysis.failure",
		xlogger.String("classification", string(class)),
		xlogger.Int("attempts", attempt),
		xlogger.Int64("latency_ms", d.LatencyMs),
		xlogger.Snippet("raw", d.Raw, logSnippetBytes),
		xlogger.Error(err),
	)
	o.transition(log, StateFailed, attempt)
	return f
}

func isTimeout(err error) bool {
	return errors.Is(err, repository.ErrUpstreamTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// ParseLenient parses model text as JSON. When that fails it retries on the
// outermost object found in the text, then on a repaired copy. A recovered
// value is only accepted when its root is an object: repairing prose yields
// a string or array, which is not an answer.
func ParseLenient(text string) (Value, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrNoContent
	}
	if v, err := Parse([]byte(trimmed)); err == nil {
		return v, nil
	}

	candidate := trimmed
	if extracted := ExtractObject(trimmed); extracted != "" {
		if v, err := Parse([]byte(extracted)); err == nil {
			return v, nil
		}
		candidate = extracted
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	v, err := Parse([]byte(repaired))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if _, ok := v.(*Object); !ok {
		return nil, fmt.Errorf("%w: repaired root is %s", ErrNotJSON, Kind(v))
	}
	return v, nil
}

// ExtractObject returns the first balanced {...} block of text, ignoring
// braces inside strings. An unterminated block runs to the end of text.
func ExtractObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

// shapeOf summarises the list lengths the sanitizer clamps, for debug logs.
func shapeOf(v Value) map[string]int {
	o, ok := v.(*Object)
	if !ok {
		return nil
	}
	out := map[string]int{}
	for _, k := range []string{"signalsTop", "scenarios", "catalysts", "nextActions", "rationale"} {
		if a, ok := o.Get(k).(Array); ok {
			out[k] = len(a)
		}
	}
	return out
}
