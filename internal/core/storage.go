package core

import (
	"context"
	"time"
)

type MessageStore interface {
	Append(ctx context.Context, conversationID, role, content string, tokenCount int) (MessageRecord, error)
	// Recent returns up to limit messages in chronological order, oldest first.
	Recent(ctx context.Context, conversationID string, limit int) ([]MessageRecord, error)
}

type ConversationStore interface {
	Create(ctx context.Context, conv Conversation) error
	Get(ctx context.Context, conversationID string) (Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]Conversation, error)
	// Touch bumps updated_at after a completed turn.
	Touch(ctx context.Context, conversationID string) error
}

type AgentStore interface {
	Create(ctx context.Context, agent Agent) error
	Get(ctx context.Context, agentID string) (Agent, error)
	List(ctx context.Context) ([]Agent, error)
}

type UserStore interface {
	Create(ctx context.Context, user User) error
	Get(ctx context.Context, userID string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// MomentUpdate carries the final merged values for an existing moment.
// event_time, remind_time, status and confirmed are deliberately absent:
// a merge never rewrites them.
type MomentUpdate struct {
	Emotion         string
	EmotionLevel    int
	Importance      string
	SuggestedTiming string
	FirstMessage    string
	AIAttitude      string
	Reason          string
	ContextMessages []Turn
	UpdatedAt       time.Time
}

type MomentStore interface {
	Create(ctx context.Context, moment Moment) error
	Get(ctx context.Context, momentID string) (Moment, error)
	Update(ctx context.Context, momentID string, update MomentUpdate) (Moment, error)
	SetStatus(ctx context.Context, momentID, status string, confirmed bool) (Moment, error)
	List(ctx context.Context, userID, status string, limit int) ([]Moment, error)
	// FindWindow returns non-cancelled moments for the user whose event_time
	// lies in [from, to], most recent event first, capped at limit. A non-empty
	// conversationID narrows the search to that conversation.
	FindWindow(ctx context.Context, userID, conversationID string, from, to time.Time, limit int) ([]Moment, error)
	// FindDue is the dispatcher feed: scheduled moments with
	// remind_time <= before, ascending by remind_time.
	FindDue(ctx context.Context, before time.Time, limit int) ([]Moment, error)
}
