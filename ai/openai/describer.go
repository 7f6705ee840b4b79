package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/assetmatch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Describer implements ai.Describer using OpenAI-compatible vision chat APIs.
type Describer struct {
	client  llms.Model
	limiter *rate.Limiter
	logger  *slog.Logger
}

// newDescriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newDescriber(config *ai.Config, limiter *rate.Limiter) (*Describer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for vision chat
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.DescriberHost),
		openai.WithToken("none"),
		openai.WithModel(config.DescriberModel),
	)
	if err != nil {
		return nil, err
	}

	return &Describer{
		client:  client,
		limiter: limiter,
		logger:  slog.Default().With("component", "openai-describer"),
	}, nil
}

// NewDescriber creates a new describer using the provided configuration.
//
// Returns ai.Describer interface to enforce abstraction.
func NewDescriber(config *ai.Config) (ai.Describer, error) {
	return newDescriber(config, nil)
}

// Describe sends the asset bytes to a vision-capable model and returns the
// generated description. Failures wrap ai.ErrDescribeFailed.
func (d *Describer) Describe(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty asset data", ai.ErrDescribeFailed)
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", ai.ErrDescribeFailed, err)
		}
	}

	d.logger.Debug("describing asset", "bytes", len(data))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(http.DetectContentType(data), data),
				llms.TextPart(descriptionPrompt),
			},
		},
	}

	response, err := d.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		d.logger.Error("failed to generate description", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrDescribeFailed, err)
	}

	if len(response.Choices) < 1 {
		d.logger.Warn("no choices returned from vision model")
		return "", fmt.Errorf("%w: model returned no content", ai.ErrDescribeFailed)
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
