package main

import (
	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/providers/llm"
	"github.com/sandevgo/momobot/internal/service/chat"
	"github.com/sandevgo/momobot/internal/transport/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <conversation-id>",
	Short: "Open an interactive chat in the given conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		aiCfg := config.NewOpenAIConfig(ctx)
		caller := llm.NewCaller(ctx, aiCfg)
		compressor := chat.NewContextCompressor(caller, aiCfg.CompressionModel, a.cfg.EnableCompression)

		svc := chat.NewService(a.cfg, a.messages, a.convs, a.agents, caller, compressor, a.moments)

		repl, err := cli.NewReadLine(a.cfg, svc, args[0])
		if err != nil {
			return err
		}
		return repl.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
