package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/momobot/internal/core"
)

type ConversationsRepo struct {
	db *sql.DB
}

func NewConversationsRepo(db *sql.DB) *ConversationsRepo {
	return &ConversationsRepo{db: db}
}

func (r *ConversationsRepo) Create(ctx context.Context, conv core.Conversation) error {
	query := `INSERT INTO conversations (conversation_id, user_id, agent_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, conv.ConversationID, conv.UserID, conv.AgentID, conv.Title, conv.CreatedAt, conv.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationsRepo) Get(ctx context.Context, conversationID string) (core.Conversation, error) {
	var c core.Conversation
	query := `SELECT conversation_id, user_id, agent_id, title, created_at, updated_at FROM conversations WHERE conversation_id = ?`
	err := r.db.QueryRowContext(ctx, query, conversationID).Scan(&c.ConversationID, &c.UserID, &c.AgentID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Conversation{}, fmt.Errorf("conversation %s: %w", conversationID, core.ErrNotFound)
	}
	if err != nil {
		return core.Conversation{}, fmt.Errorf("failed to query conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationsRepo) ListByUser(ctx context.Context, userID string) ([]core.Conversation, error) {
	query := `SELECT conversation_id, user_id, agent_id, title, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var convs []core.Conversation
	for rows.Next() {
		var c core.Conversation
		if err := rows.Scan(&c.ConversationID, &c.UserID, &c.AgentID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *ConversationsRepo) Touch(ctx context.Context, conversationID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE conversation_id = ?`, time.Now().UTC(), conversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, core.ErrNotFound)
	}
	return nil
}
