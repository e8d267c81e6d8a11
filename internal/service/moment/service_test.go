package moment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusCall struct {
	momentID  string
	status    string
	confirmed bool
}

type fakeMomentStore struct {
	moments     map[string]core.Moment
	window      []core.Moment
	created     []core.Moment
	updates     map[string]core.MomentUpdate
	statusCalls []statusCall
	due         []core.Moment
}

func newFakeMomentStore() *fakeMomentStore {
	return &fakeMomentStore{
		moments: make(map[string]core.Moment),
		updates: make(map[string]core.MomentUpdate),
	}
}

func (f *fakeMomentStore) Create(_ context.Context, m core.Moment) error {
	f.created = append(f.created, m)
	f.moments[m.MomentID] = m
	return nil
}

func (f *fakeMomentStore) Get(_ context.Context, momentID string) (core.Moment, error) {
	m, ok := f.moments[momentID]
	if !ok {
		return core.Moment{}, core.ErrNotFound
	}
	return m, nil
}

func (f *fakeMomentStore) Update(_ context.Context, momentID string, update core.MomentUpdate) (core.Moment, error) {
	m, ok := f.moments[momentID]
	if !ok {
		return core.Moment{}, core.ErrNotFound
	}
	f.updates[momentID] = update
	m.Emotion = update.Emotion
	m.EmotionLevel = update.EmotionLevel
	m.Importance = update.Importance
	m.SuggestedTiming = update.SuggestedTiming
	m.FirstMessage = update.FirstMessage
	m.AIAttitude = update.AIAttitude
	m.Reason = update.Reason
	m.ContextMessages = update.ContextMessages
	m.UpdatedAt = update.UpdatedAt
	f.moments[momentID] = m
	return m, nil
}

func (f *fakeMomentStore) SetStatus(_ context.Context, momentID, status string, confirmed bool) (core.Moment, error) {
	m, ok := f.moments[momentID]
	if !ok {
		return core.Moment{}, core.ErrNotFound
	}
	f.statusCalls = append(f.statusCalls, statusCall{momentID, status, confirmed})
	m.Status = status
	m.Confirmed = confirmed
	f.moments[momentID] = m
	return m, nil
}

func (f *fakeMomentStore) List(_ context.Context, _, _ string, _ int) ([]core.Moment, error) {
	return nil, nil
}

func (f *fakeMomentStore) FindWindow(_ context.Context, _, _ string, _, _ time.Time, _ int) ([]core.Moment, error) {
	return f.window, nil
}

func (f *fakeMomentStore) FindDue(_ context.Context, _ time.Time, _ int) ([]core.Moment, error) {
	return f.due, nil
}

var fixedNow = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func newTestService(store *fakeMomentStore) *Service {
	svc := NewService(&config.AppConfig{DedupWindowHours: 2}, store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestReconcile_UnresolvableCandidateSkipped(t *testing.T) {
	store := newFakeMomentStore()
	svc := newTestService(store)

	candidate := &core.MomentCandidate{
		RawTimeExpression: "",
		EventDescription:  "随便聊聊而已",
	}

	m, err := svc.Reconcile(context.Background(), "u1", "c1", candidate, nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, store.created)
}

func TestReconcile_CreatesWithDefaults(t *testing.T) {
	store := newFakeMomentStore()
	svc := newTestService(store)

	snapshot := []core.Turn{{Role: core.RoleUser, Content: "明天9点面试"}}
	candidate := &core.MomentCandidate{
		RawTimeExpression: "明天9点",
		EventDescription:  "去公司面试",
	}

	m, err := svc.Reconcile(context.Background(), "u1", "c1", candidate, snapshot)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Len(t, store.created, 1)

	assert.NotEmpty(t, m.MomentID)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, "c1", m.ConversationID)
	assert.Equal(t, core.MomentEvent, m.Type)
	assert.Equal(t, core.ImportanceMid, m.Importance)
	assert.Equal(t, core.ActionMessage, m.SuggestedAction)
	assert.Equal(t, core.StatusPending, m.Status)
	assert.False(t, m.Confirmed)

	expectedEvent := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.True(t, m.EventTime.Equal(expectedEvent), "event time %v", m.EventTime)
	assert.True(t, m.RemindTime.Equal(expectedEvent.Add(-time.Hour)), "remind time %v", m.RemindTime)
	assert.Equal(t, snapshot, m.ContextMessages)
}

func TestReconcile_HighImportanceRemindTime(t *testing.T) {
	store := newFakeMomentStore()
	svc := newTestService(store)

	candidate := &core.MomentCandidate{
		RawTimeExpression: "明天9点",
		EventDescription:  "去公司面试",
		Importance:        core.ImportanceHigh,
	}

	m, err := svc.Reconcile(context.Background(), "u1", "c1", candidate, nil)
	require.NoError(t, err)

	expected := time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)
	assert.True(t, m.RemindTime.Equal(expected), "remind time %v", m.RemindTime)
}

func TestReconcile_MergesNearDuplicate(t *testing.T) {
	store := newFakeMomentStore()
	existing := core.Moment{
		MomentID:         "m1",
		UserID:           "u1",
		EventDescription: "明天去打羽毛球",
		EventTime:        time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		RemindTime:       time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		Emotion:          "开心",
		EmotionLevel:     3,
		Importance:       core.ImportanceMid,
		Status:           core.StatusPending,
	}
	store.moments["m1"] = existing
	store.window = []core.Moment{existing}
	svc := newTestService(store)

	candidate := &core.MomentCandidate{
		RawTimeExpression: "明天9点",
		EventDescription:  "明天去打羽毛球吧",
		Reason:            "mentioned it again",
	}

	m, err := svc.Reconcile(context.Background(), "u1", "c1", candidate, nil)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Empty(t, store.created, "a near-duplicate must not create a second moment")
	update, ok := store.updates["m1"]
	require.True(t, ok, "existing moment must be updated")

	// Candidate fields win only when non-empty; level 0 means unstated.
	assert.Equal(t, "开心", update.Emotion)
	assert.Equal(t, 3, update.EmotionLevel)
	assert.Equal(t, core.ImportanceMid, update.Importance)
	assert.Equal(t, "mentioned it again", update.Reason)

	// Event and remind time survive the merge untouched.
	assert.True(t, m.EventTime.Equal(existing.EventTime))
	assert.True(t, m.RemindTime.Equal(existing.RemindTime))
	assert.Equal(t, core.StatusPending, m.Status)
}

func TestReconcile_DissimilarDescriptionCreates(t *testing.T) {
	store := newFakeMomentStore()
	existing := core.Moment{
		MomentID:         "m1",
		UserID:           "u1",
		EventDescription: "医院复诊预约",
		EventTime:        time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		Status:           core.StatusPending,
	}
	store.moments["m1"] = existing
	store.window = []core.Moment{existing}
	svc := newTestService(store)

	candidate := &core.MomentCandidate{
		RawTimeExpression: "明天9点",
		EventDescription:  "去打羽毛球",
	}

	m, err := svc.Reconcile(context.Background(), "u1", "c1", candidate, nil)
	require.NoError(t, err)
	require.NotNil(t, m)

	require.Len(t, store.created, 1)
	assert.NotEqual(t, "m1", m.MomentID)
	assert.Empty(t, store.updates)
}

func TestCreate_ManualBypassesDedup(t *testing.T) {
	store := newFakeMomentStore()
	// A near-identical moment sits in the window; manual creation ignores it.
	store.window = []core.Moment{{MomentID: "m1", EventDescription: "去打羽毛球"}}
	svc := newTestService(store)

	eventTime := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	m, err := svc.Create(context.Background(), "u1", "", eventTime, core.MomentCandidate{
		EventDescription: "去打羽毛球",
		Type:             core.MomentHabit,
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, core.MomentHabit, m.Type)
	assert.True(t, m.RemindTime.Equal(eventTime), "habit reminds at the event itself")
	assert.Empty(t, m.ConversationID)
}

func TestConfirm(t *testing.T) {
	store := newFakeMomentStore()
	store.moments["m1"] = core.Moment{MomentID: "m1", Status: core.StatusPending}
	store.moments["m2"] = core.Moment{MomentID: "m2", Status: core.StatusScheduled, Confirmed: true}
	store.moments["m3"] = core.Moment{MomentID: "m3", Status: core.StatusCancelled}
	store.moments["m4"] = core.Moment{MomentID: "m4", Status: core.StatusCompleted}
	svc := newTestService(store)
	ctx := context.Background()

	m, err := svc.Confirm(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusScheduled, m.Status)
	assert.True(t, m.Confirmed)

	// Confirming an already scheduled moment stays scheduled.
	m, err = svc.Confirm(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, core.StatusScheduled, m.Status)

	_, err = svc.Confirm(ctx, "m3")
	assert.True(t, errors.Is(err, core.ErrInvalidTransition))

	_, err = svc.Confirm(ctx, "m4")
	assert.True(t, errors.Is(err, core.ErrInvalidTransition))

	_, err = svc.Confirm(ctx, "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestCancel(t *testing.T) {
	store := newFakeMomentStore()
	store.moments["m1"] = core.Moment{MomentID: "m1", Status: core.StatusPending}
	store.moments["m2"] = core.Moment{MomentID: "m2", Status: core.StatusCancelled}
	store.moments["m3"] = core.Moment{MomentID: "m3", Status: core.StatusCompleted}
	svc := newTestService(store)
	ctx := context.Background()

	m, err := svc.Cancel(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, m.Status)

	// Cancelling an already cancelled moment is a no-op, not a write.
	writes := len(store.statusCalls)
	m, err = svc.Cancel(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, m.Status)
	assert.Len(t, store.statusCalls, writes)

	_, err = svc.Cancel(ctx, "m3")
	assert.True(t, errors.Is(err, core.ErrInvalidTransition))
}

func TestListDue(t *testing.T) {
	store := newFakeMomentStore()
	store.due = []core.Moment{
		{MomentID: "m1", Status: core.StatusScheduled},
		{MomentID: "m2", Status: core.StatusScheduled},
	}
	svc := newTestService(store)

	due, err := svc.ListDue(context.Background(), fixedNow, 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}
