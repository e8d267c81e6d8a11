package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/momobot/pkg/log"
)

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com"`

	// DefaultModel is used when an agent does not pin one.
	DefaultModel string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	// CompressionModel handles history summarization; a fast model is enough.
	CompressionModel string `env:"COMPRESSION_MODEL" envDefault:"gpt-4o-mini"`
}

func NewOpenAIConfig(ctx context.Context) *OpenAIConfig {
	c := &OpenAIConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse openai config")
	}
	return c
}
