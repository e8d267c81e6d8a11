package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/sandevgo/momobot/internal/service/chat"
	"github.com/sandevgo/momobot/internal/service/ui"
	"github.com/sandevgo/momobot/pkg/log"
	"github.com/sandevgo/momobot/pkg/retry"
)

// ReadLine is the interactive chat loop bound to one conversation.
type ReadLine struct {
	cfg            *config.AppConfig
	svc            *chat.Service
	conversationID string
	rl             *readline.Instance
	retrier        *retry.Retrier
}

func NewReadLine(cfg *config.AppConfig, svc *chat.Service, conversationID string) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.PromptStyle.Render("you> "),
		HistoryFile:     cfg.GetHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:            cfg,
		svc:            svc,
		conversationID: conversationID,
		rl:             rl,
		retrier:        retry.NewDefaultRetrier(),
	}, nil
}

// Run reads lines until exit/EOF, handing each one to the chat service.
// Upstream model failures are retried here, at the calling layer; everything
// else surfaces once and the loop continues.
func (r *ReadLine) Run(ctx context.Context) error {
	defer r.rl.Close()
	logger := log.FromCtx(ctx)
	logger.Info().Str("conversation_id", r.conversationID).Msg("chat started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "" {
			continue
		}

		// Only upstream model failures are worth retrying; anything else is
		// surfaced immediately.
		var result chat.TurnResult
		var permErr error
		err = r.retrier.Do(ctx, func() error {
			res, turnErr := r.svc.HandleTurn(ctx, r.conversationID, line)
			if turnErr == nil {
				result = res
				return nil
			}
			if errors.Is(turnErr, core.ErrUpstreamModel) {
				return turnErr
			}
			permErr = turnErr
			return nil
		})
		if err == nil {
			err = permErr
		}
		if err != nil {
			logger.Error().Err(err).Msg("chat turn failed")
			fmt.Fprintf(r.rl.Stdout(), "error: %v\n", err)
			continue
		}

		fmt.Fprintln(r.rl.Stdout(), ui.ReplyStyle.Render(result.Reply))
		if result.Moment != nil {
			fmt.Fprintln(r.rl.Stdout(), ui.MomentStyle.Render(
				fmt.Sprintf("[moment] %s at %s (remind %s)",
					result.Moment.EventDescription,
					result.Moment.EventTime.Format("2006-01-02 15:04"),
					result.Moment.RemindTime.Format("2006-01-02 15:04"),
				)))
		}
	}
}
