package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/momobot/internal/core"
)

type AgentsRepo struct {
	db *sql.DB
}

func NewAgentsRepo(db *sql.DB) *AgentsRepo {
	return &AgentsRepo{db: db}
}

func (r *AgentsRepo) Create(ctx context.Context, agent core.Agent) error {
	query := `INSERT INTO agents (agent_id, name, system_prompt, model, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, agent.AgentID, agent.Name, agent.SystemPrompt, agent.Model, agent.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert agent: %w", err)
	}
	return nil
}

func (r *AgentsRepo) Get(ctx context.Context, agentID string) (core.Agent, error) {
	var a core.Agent
	query := `SELECT agent_id, name, system_prompt, model, created_at FROM agents WHERE agent_id = ?`
	err := r.db.QueryRowContext(ctx, query, agentID).Scan(&a.AgentID, &a.Name, &a.SystemPrompt, &a.Model, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Agent{}, fmt.Errorf("agent %s: %w", agentID, core.ErrNotFound)
	}
	if err != nil {
		return core.Agent{}, fmt.Errorf("failed to query agent: %w", err)
	}
	return a, nil
}

func (r *AgentsRepo) List(ctx context.Context) ([]core.Agent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT agent_id, name, system_prompt, model, created_at FROM agents ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []core.Agent
	for rows.Next() {
		var a core.Agent
		if err := rows.Scan(&a.AgentID, &a.Name, &a.SystemPrompt, &a.Model, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
