package chat

import (
	"context"
	"fmt"

	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/sandevgo/momobot/pkg/log"
)

// MomentReconciler is the moment side-channel. Reconcile returns the stored
// moment (created or merged) or nil when the candidate was skipped.
type MomentReconciler interface {
	Reconcile(ctx context.Context, userID, conversationID string, candidate *core.MomentCandidate, contextMessages []core.Turn) (*core.Moment, error)
}

// TurnResult is what a transport gets back for one user message.
type TurnResult struct {
	Reply        string
	EmotionTags  []string
	EmotionLevel int
	Moment       *core.Moment
}

// Service runs one chat turn end to end: context assembly, the model call,
// extraction, persistence, and the best-effort moment side-channel.
type Service struct {
	cfg       *config.AppConfig
	messages  core.MessageStore
	convs     core.ConversationStore
	agents    core.AgentStore
	caller    core.ModelCaller
	counter   *TokenCounter
	assembler *ContextAssembler
	comp      *ContextCompressor
	moments   MomentReconciler
}

func NewService(
	cfg *config.AppConfig,
	messages core.MessageStore,
	convs core.ConversationStore,
	agents core.AgentStore,
	caller core.ModelCaller,
	comp *ContextCompressor,
	moments MomentReconciler,
) *Service {
	counter := NewTokenCounter()
	return &Service{
		cfg:       cfg,
		messages:  messages,
		convs:     convs,
		agents:    agents,
		caller:    caller,
		counter:   counter,
		assembler: NewContextAssembler(counter),
		comp:      comp,
		moments:   moments,
	}
}

// HandleTurn is the single entry point per user message.
//
// Persistence order within a turn is fixed: user turn, model call, assistant
// turn, conversation touch, then moment reconciliation. Reconciliation is
// best-effort and never fails the turn; the only hard failure a caller sees
// is core.ErrUpstreamModel.
func (s *Service) HandleTurn(ctx context.Context, conversationID, userText string) (TurnResult, error) {
	logger := log.FromCtx(ctx)

	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load conversation: %w", err)
	}
	agent, err := s.agents.Get(ctx, conv.AgentID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load agent: %w", err)
	}

	userTokens := s.counter.Count([]core.Turn{{Role: core.RoleUser, Content: userText}})
	if _, err := s.messages.Append(ctx, conversationID, core.RoleUser, userText, userTokens); err != nil {
		return TurnResult{}, fmt.Errorf("persist user turn: %w", err)
	}

	// History excludes the turn just appended.
	history, err := s.loadHistory(ctx, conversationID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load history: %w", err)
	}

	if s.comp.ShouldCompress(len(history), s.cfg.CompressionThreshold) {
		history = s.comp.Compact(ctx, history, s.cfg.CompressionKeepRecent)
	}

	window := s.assembler.Assemble(agent.SystemPrompt, history, userText, s.cfg.MaxContextTokens)

	raw, err := s.caller.Complete(ctx, agent.Model, window, core.ChatOptions{Temperature: 0.7, MaxTokens: 1024})
	if err != nil {
		return TurnResult{}, fmt.Errorf("%w: %w", core.ErrUpstreamModel, err)
	}

	ext := ParseResponse(raw)
	if ext.Degraded {
		logger.Warn().Str("conversation_id", conversationID).Msg("model output not structured, degraded to raw reply")
	}
	reply := ext.Reply
	if reply == "" {
		reply = raw
	}

	replyTokens := s.counter.Count([]core.Turn{{Role: core.RoleAssistant, Content: reply}})
	if _, err := s.messages.Append(ctx, conversationID, core.RoleAssistant, reply, replyTokens); err != nil {
		return TurnResult{}, fmt.Errorf("persist assistant turn: %w", err)
	}

	if err := s.convs.Touch(ctx, conversationID); err != nil {
		return TurnResult{}, fmt.Errorf("touch conversation: %w", err)
	}

	result := TurnResult{
		Reply:        reply,
		EmotionTags:  ext.EmotionTags,
		EmotionLevel: ext.EmotionLevel,
	}

	// Side-channel: the chat turn is already committed, a failed
	// reconciliation must not undo or block it.
	if ext.Moment != nil {
		snapshot := make([]core.Turn, 0, len(window))
		snapshot = append(snapshot, window[1:]...)
		snapshot = append(snapshot, core.Turn{Role: core.RoleAssistant, Content: reply})
		moment, err := s.moments.Reconcile(ctx, conv.UserID, conversationID, ext.Moment, snapshot)
		if err != nil {
			logger.Error().Err(err).Str("conversation_id", conversationID).Msg("moment reconciliation failed")
		} else {
			result.Moment = moment
		}
	}

	return result, nil
}

// loadHistory drops the trailing user turn that HandleTurn just persisted, so
// the assembler appends exactly one copy of it.
func (s *Service) loadHistory(ctx context.Context, conversationID string) ([]core.Turn, error) {
	records, err := s.messages.Recent(ctx, conversationID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	if n := len(records); n > 0 && records[n-1].Role == core.RoleUser {
		records = records[:n-1]
	}

	turns := make([]core.Turn, 0, len(records))
	for _, r := range records {
		turns = append(turns, core.Turn{Role: r.Role, Content: r.Content})
	}
	return turns, nil
}
