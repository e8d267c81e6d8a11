package llm

import (
	"context"

	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/sandevgo/momobot/pkg/log"
)

// NewCaller builds the ModelCaller from configuration.
func NewCaller(ctx context.Context, cfg *config.OpenAIConfig) core.ModelCaller {
	log.FromCtx(ctx).Info().
		Str("base_url", cfg.BaseURL).
		Str("model", cfg.DefaultModel).
		Msg("starting model caller")

	return NewOpenAICompatible(cfg.BaseURL, cfg.APIKey)
}
