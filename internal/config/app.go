package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/momobot/pkg/log"
)

// GetRuntimePath resolves the runtime directory before the full config is
// parsed, so the .env file living there can be loaded first.
func GetRuntimePath() string {
	if p := os.Getenv("MOMO_RUNTIME_PATH"); p != "" {
		return p
	}
	return ".momo"
}

type AppConfig struct {
	RuntimePath string `env:"MOMO_RUNTIME_PATH" envDefault:".momo"`

	// Context management
	MaxContextTokens int `env:"MAX_CONTEXT_TOKENS" envDefault:"4096"`
	HistoryLimit     int `env:"HISTORY_LIMIT" envDefault:"50"`

	// Context compression
	EnableCompression     bool `env:"ENABLE_CONTEXT_COMPRESSION" envDefault:"true"`
	CompressionThreshold  int  `env:"COMPRESSION_THRESHOLD" envDefault:"20"`
	CompressionKeepRecent int  `env:"COMPRESSION_KEEP_RECENT" envDefault:"10"`

	// Moment deduplication
	DedupWindowHours int `env:"DEDUP_WINDOW_HOURS" envDefault:"2"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "momo.db")
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}
