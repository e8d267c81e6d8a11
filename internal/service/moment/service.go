package moment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/sandevgo/momobot/pkg/log"
)

const (
	// mergeThreshold is the similarity above which a candidate updates an
	// existing moment instead of creating a new one.
	mergeThreshold = 0.8

	// windowLimit caps how many nearby moments a dedup query considers.
	windowLimit = 10
)

// Service owns the moment lifecycle: reconciliation of extracted candidates,
// manual creation, confirm/cancel, and the dispatcher feed.
type Service struct {
	cfg      *config.AppConfig
	store    core.MomentStore
	resolver *TimeResolver
	now      func() time.Time
}

func NewService(cfg *config.AppConfig, store core.MomentStore) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		resolver: NewTimeResolver(),
		now:      time.Now,
	}
}

// Reconcile decides merge-vs-create for a candidate extracted from a chat
// turn. Returns nil without error when the candidate's time cannot be
// resolved: unresolvable candidates are skipped, not failed.
//
// Dedup is a read-then-write window check; concurrent turns for the same
// user can still race into duplicates. Moments are advisory reminders, so
// that is accepted rather than locked around.
func (s *Service) Reconcile(ctx context.Context, userID, conversationID string, candidate *core.MomentCandidate, contextMessages []core.Turn) (*core.Moment, error) {
	logger := log.FromCtx(ctx)
	now := s.now()

	eventTime, ok := s.resolver.Resolve(candidate.RawTimeExpression, candidate.EventDescription, now)
	if !ok {
		logger.Debug().
			Str("expression", candidate.RawTimeExpression).
			Msg("moment candidate dropped: time expression unresolved")
		return nil, nil
	}

	window := time.Duration(s.cfg.DedupWindowHours) * time.Hour
	nearby, err := s.store.FindWindow(ctx, userID, conversationID, eventTime.Add(-window), eventTime.Add(window), windowLimit)
	if err != nil {
		return nil, fmt.Errorf("dedup window query: %w", err)
	}

	// Greedy first-match: the most recently created plausible duplicate wins
	// over an exhaustive best-match search.
	for _, existing := range nearby {
		score := Similarity(candidate.EventDescription, existing.EventDescription)
		if score > mergeThreshold {
			logger.Info().
				Str("moment_id", existing.MomentID).
				Float64("similarity", score).
				Msg("merging candidate into existing moment")
			return s.merge(ctx, existing, candidate, contextMessages)
		}
	}

	return s.create(ctx, userID, conversationID, eventTime, candidate, contextMessages)
}

func (s *Service) create(ctx context.Context, userID, conversationID string, eventTime time.Time, candidate *core.MomentCandidate, contextMessages []core.Turn) (*core.Moment, error) {
	now := s.now()

	momentType := candidate.Type
	if momentType == "" {
		momentType = core.MomentEvent
	}
	importance := candidate.Importance
	if importance == "" {
		importance = core.ImportanceMid
	}
	action := candidate.SuggestedAction
	if action == "" {
		action = core.ActionMessage
	}

	m := core.Moment{
		MomentID:         uuid.NewString(),
		UserID:           userID,
		ConversationID:   conversationID,
		EventTime:        eventTime,
		RemindTime:       RemindTime(eventTime, importance, momentType, now),
		CreatedAt:        now,
		UpdatedAt:        now,
		Type:             momentType,
		EventDescription: candidate.EventDescription,
		Emotion:          candidate.Emotion,
		EmotionLevel:     candidate.EmotionLevel,
		Importance:       importance,
		SuggestedAction:  action,
		SuggestedTiming:  candidate.SuggestedTiming,
		FirstMessage:     candidate.FirstMessage,
		AIAttitude:       candidate.AIAttitude,
		Reason:           candidate.Reason,
		Status:           core.StatusPending,
		Confirmed:        false,
		ContextMessages:  contextMessages,
	}

	if err := s.store.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create moment: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("moment_id", m.MomentID).
		Str("type", m.Type).
		Time("event_time", m.EventTime).
		Time("remind_time", m.RemindTime).
		Msg("moment created")
	return &m, nil
}

// merge folds the candidate's non-empty fields into the stored moment. The
// context snapshot and updated_at always refresh; event_time, remind_time,
// status and confirmed never change on merge.
func (s *Service) merge(ctx context.Context, existing core.Moment, candidate *core.MomentCandidate, contextMessages []core.Turn) (*core.Moment, error) {
	update := core.MomentUpdate{
		Emotion:         orKeep(candidate.Emotion, existing.Emotion),
		EmotionLevel:    existing.EmotionLevel,
		Importance:      orKeep(candidate.Importance, existing.Importance),
		SuggestedTiming: orKeep(candidate.SuggestedTiming, existing.SuggestedTiming),
		FirstMessage:    orKeep(candidate.FirstMessage, existing.FirstMessage),
		AIAttitude:      orKeep(candidate.AIAttitude, existing.AIAttitude),
		Reason:          orKeep(candidate.Reason, existing.Reason),
		ContextMessages: contextMessages,
		UpdatedAt:       s.now(),
	}
	if candidate.EmotionLevel != 0 {
		update.EmotionLevel = candidate.EmotionLevel
	}

	merged, err := s.store.Update(ctx, existing.MomentID, update)
	if err != nil {
		return nil, fmt.Errorf("merge moment %s: %w", existing.MomentID, err)
	}
	return &merged, nil
}

// orKeep keeps the stored value when the candidate did not supply one.
func orKeep(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}

// Create registers a manually supplied moment (CLI path, no extraction).
func (s *Service) Create(ctx context.Context, userID, conversationID string, eventTime time.Time, candidate core.MomentCandidate) (*core.Moment, error) {
	return s.create(ctx, userID, conversationID, eventTime, &candidate, nil)
}

func (s *Service) Get(ctx context.Context, momentID string) (core.Moment, error) {
	return s.store.Get(ctx, momentID)
}

func (s *Service) List(ctx context.Context, userID, status string, limit int) ([]core.Moment, error) {
	return s.store.List(ctx, userID, status, limit)
}

// Confirm moves a moment to scheduled and marks it user-confirmed.
// Idempotent on an already scheduled moment; confirming a cancelled or
// completed moment is an invalid transition.
func (s *Service) Confirm(ctx context.Context, momentID string) (core.Moment, error) {
	m, err := s.store.Get(ctx, momentID)
	if err != nil {
		return core.Moment{}, err
	}
	if !CanConfirm(m.Status) {
		return core.Moment{}, fmt.Errorf("confirm %s in status %s: %w", momentID, m.Status, core.ErrInvalidTransition)
	}
	return s.store.SetStatus(ctx, momentID, core.StatusScheduled, true)
}

// Cancel moves a moment to cancelled. Idempotent on an already cancelled
// moment; cancelling a completed moment is an invalid transition.
func (s *Service) Cancel(ctx context.Context, momentID string) (core.Moment, error) {
	m, err := s.store.Get(ctx, momentID)
	if err != nil {
		return core.Moment{}, err
	}
	if !CanCancel(m.Status) {
		return core.Moment{}, fmt.Errorf("cancel %s in status %s: %w", momentID, m.Status, core.ErrInvalidTransition)
	}
	if m.Status == core.StatusCancelled {
		return m, nil
	}
	return s.store.SetStatus(ctx, momentID, core.StatusCancelled, m.Confirmed)
}

// ListDue is the feed a reminder dispatcher polls: scheduled moments whose
// remind_time has passed, soonest first.
func (s *Service) ListDue(ctx context.Context, before time.Time, limit int) ([]core.Moment, error) {
	return s.store.FindDue(ctx, before, limit)
}
