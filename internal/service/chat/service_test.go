package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
)

type fakeMessages struct {
	appended []core.MessageRecord
}

func (f *fakeMessages) Append(_ context.Context, conversationID, role, content string, tokenCount int) (core.MessageRecord, error) {
	rec := core.MessageRecord{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TokenCount:     tokenCount,
		CreatedAt:      time.Now(),
	}
	f.appended = append(f.appended, rec)
	return rec, nil
}

func (f *fakeMessages) Recent(_ context.Context, _ string, limit int) ([]core.MessageRecord, error) {
	if len(f.appended) > limit {
		return f.appended[len(f.appended)-limit:], nil
	}
	return f.appended, nil
}

type fakeConvs struct {
	conv    core.Conversation
	touched int
}

func (f *fakeConvs) Create(context.Context, core.Conversation) error { return nil }
func (f *fakeConvs) Get(_ context.Context, id string) (core.Conversation, error) {
	if id != f.conv.ConversationID {
		return core.Conversation{}, core.ErrNotFound
	}
	return f.conv, nil
}
func (f *fakeConvs) ListByUser(context.Context, string) ([]core.Conversation, error) {
	return nil, nil
}
func (f *fakeConvs) Touch(context.Context, string) error {
	f.touched++
	return nil
}

type fakeAgents struct {
	agent core.Agent
}

func (f *fakeAgents) Create(context.Context, core.Agent) error { return nil }
func (f *fakeAgents) Get(context.Context, string) (core.Agent, error) {
	return f.agent, nil
}
func (f *fakeAgents) List(context.Context) ([]core.Agent, error) { return nil, nil }

type fakeReconciler struct {
	candidate *core.MomentCandidate
	snapshot  []core.Turn
	calls     int
	moment    *core.Moment
	err       error
}

func (f *fakeReconciler) Reconcile(_ context.Context, _, _ string, candidate *core.MomentCandidate, contextMessages []core.Turn) (*core.Moment, error) {
	f.calls++
	f.candidate = candidate
	f.snapshot = contextMessages
	return f.moment, f.err
}

func newTestService(caller core.ModelCaller, msgs *fakeMessages, convs *fakeConvs, rec *fakeReconciler) *Service {
	cfg := &config.AppConfig{
		MaxContextTokens:      4096,
		HistoryLimit:          50,
		CompressionThreshold:  20,
		CompressionKeepRecent: 10,
	}
	counter := NewTokenCounterWithTokenizer(wordTokenizer)
	return &Service{
		cfg:       cfg,
		messages:  msgs,
		convs:     convs,
		agents:    &fakeAgents{agent: core.Agent{AgentID: "a1", SystemPrompt: "be kind", Model: "test-model"}},
		caller:    caller,
		counter:   counter,
		assembler: NewContextAssembler(counter),
		comp:      NewContextCompressor(caller, "fast-model", false),
		moments:   rec,
	}
}

func testConv() core.Conversation {
	return core.Conversation{ConversationID: "c1", UserID: "u1", AgentID: "a1"}
}

func TestHandleTurn_StructuredReply(t *testing.T) {
	caller := &fakeCaller{reply: `{"chat_response": "see you tomorrow", "emotion_tags": ["warm"], "emotion_level": 3}`}
	msgs := &fakeMessages{}
	convs := &fakeConvs{conv: testConv()}
	rec := &fakeReconciler{}
	svc := newTestService(caller, msgs, convs, rec)

	result, err := svc.HandleTurn(context.Background(), "c1", "let's meet tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reply != "see you tomorrow" {
		t.Errorf("Reply = %q", result.Reply)
	}
	if len(result.EmotionTags) != 1 || result.EmotionTags[0] != "warm" {
		t.Errorf("EmotionTags = %v", result.EmotionTags)
	}
	if result.EmotionLevel != 3 {
		t.Errorf("EmotionLevel = %d", result.EmotionLevel)
	}

	if len(msgs.appended) != 2 {
		t.Fatalf("expected user and assistant turns persisted, got %d", len(msgs.appended))
	}
	if msgs.appended[0].Role != core.RoleUser || msgs.appended[1].Role != core.RoleAssistant {
		t.Errorf("persisted roles = %s, %s", msgs.appended[0].Role, msgs.appended[1].Role)
	}
	if msgs.appended[1].Content != "see you tomorrow" {
		t.Errorf("assistant content = %q, want the extracted reply", msgs.appended[1].Content)
	}
	if convs.touched != 1 {
		t.Errorf("conversation touched %d times, want 1", convs.touched)
	}
	if rec.calls != 0 {
		t.Errorf("no moment in reply, reconciler called %d times", rec.calls)
	}
}

func TestHandleTurn_PlainTextDegrades(t *testing.T) {
	caller := &fakeCaller{reply: "just plain text"}
	msgs := &fakeMessages{}
	convs := &fakeConvs{conv: testConv()}
	svc := newTestService(caller, msgs, convs, &fakeReconciler{})

	result, err := svc.HandleTurn(context.Background(), "c1", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reply != "just plain text" {
		t.Errorf("Reply = %q, want the raw text", result.Reply)
	}
	if msgs.appended[1].Content != "just plain text" {
		t.Errorf("assistant content = %q", msgs.appended[1].Content)
	}
}

func TestHandleTurn_UpstreamFailure(t *testing.T) {
	caller := &fakeCaller{err: errors.New("503 from gateway")}
	msgs := &fakeMessages{}
	convs := &fakeConvs{conv: testConv()}
	svc := newTestService(caller, msgs, convs, &fakeReconciler{})

	_, err := svc.HandleTurn(context.Background(), "c1", "hi")
	if !errors.Is(err, core.ErrUpstreamModel) {
		t.Fatalf("expected ErrUpstreamModel, got %v", err)
	}

	// The user turn was persisted before the call failed, nothing after it.
	if len(msgs.appended) != 1 || msgs.appended[0].Role != core.RoleUser {
		t.Errorf("persisted = %v", msgs.appended)
	}
	if convs.touched != 0 {
		t.Errorf("conversation must not be touched on a failed turn")
	}
}

func TestHandleTurn_MomentHandedToReconciler(t *testing.T) {
	caller := &fakeCaller{reply: `{
		"chat_response": "got it, good luck!",
		"moment": {"is_moment": true, "time": "明天9点", "event_description": "面试"}
	}`}
	msgs := &fakeMessages{}
	convs := &fakeConvs{conv: testConv()}
	stored := &core.Moment{MomentID: "m1", EventDescription: "面试"}
	rec := &fakeReconciler{moment: stored}
	svc := newTestService(caller, msgs, convs, rec)

	result, err := svc.HandleTurn(context.Background(), "c1", "明天有面试")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.calls != 1 {
		t.Fatalf("reconciler called %d times, want 1", rec.calls)
	}
	if rec.candidate.EventDescription != "面试" {
		t.Errorf("candidate = %v", rec.candidate)
	}
	if result.Moment != stored {
		t.Errorf("result must carry the stored moment")
	}

	// The snapshot ends with the assistant reply and excludes the system turn.
	last := rec.snapshot[len(rec.snapshot)-1]
	if last.Role != core.RoleAssistant || last.Content != "got it, good luck!" {
		t.Errorf("snapshot tail = %v", last)
	}
	for _, turn := range rec.snapshot {
		if turn.Role == core.RoleSystem {
			t.Errorf("snapshot must not contain the system prompt")
		}
	}
}

func TestHandleTurn_ReconcileFailureDoesNotFailTurn(t *testing.T) {
	caller := &fakeCaller{reply: `{
		"chat_response": "noted",
		"moment": {"is_moment": true, "time": "tomorrow", "event_description": "dentist"}
	}`}
	msgs := &fakeMessages{}
	convs := &fakeConvs{conv: testConv()}
	rec := &fakeReconciler{err: errors.New("db locked")}
	svc := newTestService(caller, msgs, convs, rec)

	result, err := svc.HandleTurn(context.Background(), "c1", "dentist tomorrow")
	if err != nil {
		t.Fatalf("reconcile failure must not fail the turn: %v", err)
	}
	if result.Reply != "noted" {
		t.Errorf("Reply = %q", result.Reply)
	}
	if result.Moment != nil {
		t.Errorf("failed reconciliation must not yield a moment")
	}
	if convs.touched != 1 {
		t.Errorf("turn must be fully committed, touched = %d", convs.touched)
	}
}
