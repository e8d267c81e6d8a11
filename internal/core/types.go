package core

import "time"

const (
	AppName    = "momobot"
	AppVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message unit inside a context window.
// Turns are transient: they exist only while a context is being built.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type User struct {
	UserID    string
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// Agent is a chat persona: a system prompt plus the model that speaks it.
type Agent struct {
	AgentID      string
	Name         string
	SystemPrompt string
	Model        string
	CreatedAt    time.Time
}

type Conversation struct {
	ConversationID string
	UserID         string
	AgentID        string
	Title          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MessageRecord struct {
	MessageID      string
	ConversationID string
	Role           string
	Content        string
	TokenCount     int
	CreatedAt      time.Time
}
