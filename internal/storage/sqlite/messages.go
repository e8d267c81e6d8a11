package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sandevgo/momobot/internal/core"
	"github.com/sandevgo/momobot/pkg/log"
)

type MessagesRepo struct {
	db      *sql.DB
	entropy *rand.Rand
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newID returns a ULID so message_id sorts in creation order.
func (r *MessagesRepo) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), r.entropy).String()
}

func (r *MessagesRepo) Append(ctx context.Context, conversationID, role, content string, tokenCount int) (core.MessageRecord, error) {
	rec := core.MessageRecord{
		MessageID:      r.newID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TokenCount:     tokenCount,
		CreatedAt:      time.Now().UTC(),
	}

	query := `INSERT INTO messages (message_id, conversation_id, role, content, token_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, rec.MessageID, rec.ConversationID, rec.Role, rec.Content, rec.TokenCount, rec.CreatedAt)
	if err != nil {
		return core.MessageRecord{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return rec, nil
}

func (r *MessagesRepo) Recent(ctx context.Context, conversationID string, limit int) ([]core.MessageRecord, error) {
	// Fetch the last 'limit' messages by ordering DESC, then flip them back
	// to chronological order.
	query := `SELECT message_id, conversation_id, role, content, token_count, created_at
		FROM messages WHERE conversation_id = ? ORDER BY message_id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var records []core.MessageRecord
	for rows.Next() {
		var rec core.MessageRecord
		if err := rows.Scan(&rec.MessageID, &rec.ConversationID, &rec.Role, &rec.Content, &rec.TokenCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(records)).Msg("loaded history messages")
	return records, nil
}
