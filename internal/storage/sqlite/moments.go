package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/momobot/internal/core"
)

const momentColumns = `moment_id, user_id, conversation_id, event_time, remind_time,
	created_at, updated_at, type, event_description, emotion, emotion_level,
	importance, suggested_action, suggested_timing, first_message, ai_attitude,
	reason, status, confirmed, executed_at, context_messages`

type MomentsRepo struct {
	db *sql.DB
}

func NewMomentsRepo(db *sql.DB) *MomentsRepo {
	return &MomentsRepo{db: db}
}

func (r *MomentsRepo) Create(ctx context.Context, m core.Moment) error {
	contextJSON, err := marshalContext(m.ContextMessages)
	if err != nil {
		return err
	}

	query := `INSERT INTO moments (` + momentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		m.MomentID, m.UserID, nullIfEmpty(m.ConversationID), m.EventTime, m.RemindTime,
		m.CreatedAt, m.UpdatedAt, m.Type, m.EventDescription, m.Emotion, m.EmotionLevel,
		m.Importance, m.SuggestedAction, m.SuggestedTiming, m.FirstMessage, m.AIAttitude,
		m.Reason, m.Status, m.Confirmed, m.ExecutedAt, contextJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert moment: %w", err)
	}
	return nil
}

func (r *MomentsRepo) Get(ctx context.Context, momentID string) (core.Moment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+momentColumns+` FROM moments WHERE moment_id = ?`, momentID)
	m, err := scanMoment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Moment{}, fmt.Errorf("moment %s: %w", momentID, core.ErrNotFound)
	}
	if err != nil {
		return core.Moment{}, fmt.Errorf("failed to query moment: %w", err)
	}
	return m, nil
}

// Update writes the merged advisory fields. Event and remind times, status
// and confirmed are untouchable through this path.
func (r *MomentsRepo) Update(ctx context.Context, momentID string, update core.MomentUpdate) (core.Moment, error) {
	contextJSON, err := marshalContext(update.ContextMessages)
	if err != nil {
		return core.Moment{}, err
	}

	query := `UPDATE moments SET emotion = ?, emotion_level = ?, importance = ?,
		suggested_timing = ?, first_message = ?, ai_attitude = ?, reason = ?,
		context_messages = ?, updated_at = ?
		WHERE moment_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		update.Emotion, update.EmotionLevel, update.Importance,
		update.SuggestedTiming, update.FirstMessage, update.AIAttitude, update.Reason,
		contextJSON, update.UpdatedAt, momentID,
	)
	if err != nil {
		return core.Moment{}, fmt.Errorf("failed to update moment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Moment{}, fmt.Errorf("moment %s: %w", momentID, core.ErrNotFound)
	}
	return r.Get(ctx, momentID)
}

func (r *MomentsRepo) SetStatus(ctx context.Context, momentID, status string, confirmed bool) (core.Moment, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE moments SET status = ?, confirmed = ?, updated_at = ? WHERE moment_id = ?`,
		status, confirmed, time.Now().UTC(), momentID,
	)
	if err != nil {
		return core.Moment{}, fmt.Errorf("failed to set moment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Moment{}, fmt.Errorf("moment %s: %w", momentID, core.ErrNotFound)
	}
	return r.Get(ctx, momentID)
}

func (r *MomentsRepo) List(ctx context.Context, userID, status string, limit int) ([]core.Moment, error) {
	query := `SELECT ` + momentColumns + ` FROM moments WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY event_time LIMIT ?`
	args = append(args, limit)

	return r.queryMoments(ctx, query, args...)
}

func (r *MomentsRepo) FindWindow(ctx context.Context, userID, conversationID string, from, to time.Time, limit int) ([]core.Moment, error) {
	query := `SELECT ` + momentColumns + ` FROM moments
		WHERE user_id = ? AND event_time >= ? AND event_time <= ? AND status != 'cancelled'`
	args := []any{userID, from, to}
	if conversationID != "" {
		query += ` AND conversation_id = ?`
		args = append(args, conversationID)
	}
	query += ` ORDER BY event_time DESC LIMIT ?`
	args = append(args, limit)

	return r.queryMoments(ctx, query, args...)
}

func (r *MomentsRepo) FindDue(ctx context.Context, before time.Time, limit int) ([]core.Moment, error) {
	query := `SELECT ` + momentColumns + ` FROM moments
		WHERE status = 'scheduled' AND remind_time <= ?
		ORDER BY remind_time ASC LIMIT ?`
	return r.queryMoments(ctx, query, before, limit)
}

func (r *MomentsRepo) queryMoments(ctx context.Context, query string, args ...any) ([]core.Moment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query moments: %w", err)
	}
	defer rows.Close()

	var moments []core.Moment
	for rows.Next() {
		m, err := scanMoment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moment: %w", err)
		}
		moments = append(moments, m)
	}
	return moments, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMoment(row rowScanner) (core.Moment, error) {
	var m core.Moment
	var conversationID, contextJSON sql.NullString
	var executedAt sql.NullTime

	err := row.Scan(
		&m.MomentID, &m.UserID, &conversationID, &m.EventTime, &m.RemindTime,
		&m.CreatedAt, &m.UpdatedAt, &m.Type, &m.EventDescription, &m.Emotion, &m.EmotionLevel,
		&m.Importance, &m.SuggestedAction, &m.SuggestedTiming, &m.FirstMessage, &m.AIAttitude,
		&m.Reason, &m.Status, &m.Confirmed, &executedAt, &contextJSON,
	)
	if err != nil {
		return core.Moment{}, err
	}

	m.ConversationID = conversationID.String
	if executedAt.Valid {
		t := executedAt.Time
		m.ExecutedAt = &t
	}
	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &m.ContextMessages); err != nil {
			return core.Moment{}, fmt.Errorf("failed to unmarshal context messages: %w", err)
		}
	}
	return m, nil
}

func marshalContext(turns []core.Turn) (any, error) {
	if len(turns) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(turns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal context messages: %w", err)
	}
	return string(data), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
