package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/momobot/internal/core"
	"github.com/sandevgo/momobot/pkg/log"
)

const (
	summaryHeader = "[Conversation summary]"
	summaryFooter = "[End of summary; the turns below are the most recent conversation]"
)

const compressionInstruction = `Compress the following conversation history into a concise summary.

Rules:
1. Extract the key facts, decisions and conclusions.
2. Keep important background information and user preferences.
3. Describe everything in the third person.
4. Target roughly one third of the original length.
5. Answer in the same language as the conversation.

Conversation history:
%s

Summary:`

// ContextCompressor squeezes the older part of a long history into one
// synthetic system turn via a single model call. It never fails a turn: if
// the call errors out it degrades to a fixed placeholder naming only the
// number of compressed messages.
type ContextCompressor struct {
	caller  core.ModelCaller
	model   string
	enabled bool
}

func NewContextCompressor(caller core.ModelCaller, model string, enabled bool) *ContextCompressor {
	return &ContextCompressor{
		caller:  caller,
		model:   model,
		enabled: enabled,
	}
}

// ShouldCompress is a pure threshold check behind the feature flag.
func (c *ContextCompressor) ShouldCompress(historyLen, threshold int) bool {
	if !c.enabled {
		return false
	}
	return historyLen > threshold
}

// Compact replaces all but the newest keepTarget turns with a summary turn.
// The result is ready to hand to the assembler as history.
func (c *ContextCompressor) Compact(ctx context.Context, history []core.Turn, keepTarget int) []core.Turn {
	if len(history) <= keepTarget {
		return history
	}

	toCompress := history[:len(history)-keepTarget]
	toKeep := history[len(history)-keepTarget:]

	summary := c.compress(ctx, toCompress)

	compacted := make([]core.Turn, 0, len(toKeep)+1)
	compacted = append(compacted, core.Turn{
		Role:    core.RoleSystem,
		Content: summaryHeader + "\n" + summary + "\n" + summaryFooter,
	})
	compacted = append(compacted, toKeep...)
	return compacted
}

func (c *ContextCompressor) compress(ctx context.Context, turns []core.Turn) string {
	logger := log.FromCtx(ctx)

	prompt := fmt.Sprintf(compressionInstruction, formatForCompression(turns))
	summary, err := c.caller.Complete(ctx, c.model, []core.Turn{
		{Role: core.RoleSystem, Content: "You are a conversation summarizer. You extract key information and nothing else."},
		{Role: core.RoleUser, Content: prompt},
	}, core.ChatOptions{Temperature: 0.3, MaxTokens: 500})
	if err != nil {
		logger.Error().Err(err).Int("count", len(turns)).Msg("context compression failed, using fallback")
		return fmt.Sprintf("[Summary unavailable: %d earlier messages were compressed]", len(turns))
	}

	logger.Debug().Int("count", len(turns)).Int("summary_len", len(summary)).Msg("context compressed")
	return strings.TrimSpace(summary)
}

func formatForCompression(turns []core.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case core.RoleUser:
			b.WriteString("User: ")
		case core.RoleAssistant:
			b.WriteString("Assistant: ")
		case core.RoleSystem:
			b.WriteString("System: ")
		default:
			continue
		}
		b.WriteString(t.Content)
		b.WriteByte('\n')
	}
	return b.String()
}
