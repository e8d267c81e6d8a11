package core

import "time"

// Moment types.
const (
	MomentEvent   = "event"
	MomentHabit   = "habit"
	MomentEmotion = "emotion"
)

// Importance levels.
const (
	ImportanceLow  = "low"
	ImportanceMid  = "mid"
	ImportanceHigh = "high"
)

// Moment statuses. StatusCompleted is written by the external dispatcher
// once a reminder has actually fired; this codebase never sets it.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Suggested reach-out actions and timings.
const (
	ActionCall    = "call"
	ActionMessage = "message"

	TimingBeforeEvent = "before_event"
	TimingAfterEvent  = "after_event"
	TimingOnTime      = "on_time"
)

// MomentCandidate is what the model claims to have spotted in a turn.
// Every field except EventDescription is optional and untrusted; the
// extractor only guarantees the shape, not the content.
type MomentCandidate struct {
	Type              string `json:"type"`
	RawTimeExpression string `json:"time"`
	EventDescription  string `json:"event_description"`
	Emotion           string `json:"emotion"`
	EmotionLevel      int    `json:"emotion_level"`
	Importance        string `json:"importance"`
	SuggestedAction   string `json:"suggested_action"`
	SuggestedTiming   string `json:"suggested_timing"`
	FirstMessage      string `json:"first_message"`
	AIAttitude        string `json:"ai_attitude"`
	Reason            string `json:"reason"`
}

// Moment is the persisted record of a candidate that resolved to a time.
type Moment struct {
	MomentID         string
	UserID           string
	ConversationID   string
	EventTime        time.Time
	RemindTime       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Type             string
	EventDescription string
	Emotion          string
	EmotionLevel     int
	Importance       string
	SuggestedAction  string
	SuggestedTiming  string
	FirstMessage     string
	AIAttitude       string
	Reason           string
	Status           string
	Confirmed        bool
	ExecutedAt       *time.Time
	ContextMessages  []Turn
}
