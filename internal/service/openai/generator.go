// Package openai adapts the OpenAI chat completions API to repository.Generator.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrueSignal/internal/domain/models"
	drepo "TrueSignal/internal/domain/repository"
	xlogger "TrueSignal/pkg/logger"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

var (
	ErrTimeout  = fmt.Errorf("openai: %w", drepo.ErrUpstreamTimeout)
	ErrUpstream = fmt.Errorf("openai: %w", drepo.ErrUpstream)
)

type Config struct {
	APIKey           string
	BaseURL          string
	Model            string
	Timeout          time.Duration
	MaxTokens        int64
	Temperature      float64
	RetryTemperature float64
}

// Generator requests JSON-mode chat completions.
type Generator struct {
	client sdk.Client
	cfg    Config
	logger *xlogger.Logger
}

func New(cfg Config, logger *xlogger.Logger) *Generator {
	if cfg.Model == "" {
		cfg.Model = string(sdk.ChatModelGPT4o)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 5000
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// the orchestrator owns retries
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Generator{
		client: sdk.NewClient(opts...),
		cfg:    cfg,
		logger: logger,
	}
}

var _ drepo.Generator = (*Generator)(nil)

// Complete sends the system and user prompts, plus the repair hint when set,
// and returns the first choice.
func (g *Generator) Complete(ctx context.Context, req models.CompletionRequest) (*models.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	msgs := []sdk.ChatCompletionMessageParamUnion{
		sdk.SystemMessage(req.SystemPrompt),
		sdk.UserMessage(req.UserPrompt),
	}
	if req.RepairHint != "" {
		msgs = append(msgs, sdk.UserMessage(req.RepairHint))
	}
	temp := g.cfg.Temperature
	if req.LowCreativity {
		temp = g.cfg.RetryTemperature
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(g.cfg.Model),
		Messages:    msgs,
		Temperature: sdk.Float(temp),
		MaxTokens:   sdk.Int(g.cfg.MaxTokens),
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	latency := time.Since(start)
	if err != nil {
		err = mapError(err)
		g.logger.Warn("openai.request_failed",
			xlogger.String("model", g.cfg.Model),
			xlogger.Duration("took", latency),
			xlogger.Error(err),
		)
		return nil, err
	}

	out := &models.Completion{
		Usage: models.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Latency: latency,
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	g.logger.Debug("openai.completion",
		xlogger.String("model", g.cfg.Model),
		xlogger.Int("chars", len(out.Text)),
		xlogger.Int64("total_tokens", out.Usage.TotalTokens),
		xlogger.Duration("took", latency),
	)
	return out, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 408 || apiErr.StatusCode == 504 {
			return fmt.Errorf("%w: status %d", ErrTimeout, apiErr.StatusCode)
		}
		return fmt.Errorf("%w: status %d: %v", ErrUpstream, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
