package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kestrelhq/kestrel/internal/domain"
)

// ThreadStore implements agent.Store backed by SQLite. Each Append runs
// in one transaction touching both the message row and the thread's
// updated_at stamp, so concurrent turns on distinct threads stay
// consistent.
type ThreadStore struct {
	db *DB
}

// NewThreadStore creates a thread store using the given database.
func NewThreadStore(db *DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// Load returns the ordered message history of a thread. An unseen
// thread id yields an empty history, not an error.
func (s *ThreadStore) Load(ctx context.Context, threadID string) ([]domain.Message, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT role, content, tool_calls, tool_call_id, timestamp
		 FROM messages WHERE thread_id = ? ORDER BY id`, threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", threadID, err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var role, ts string
		var toolCalls sql.NullString

		if err := rows.Scan(&role, &msg.Content, &toolCalls, &msg.ToolCallID, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.Role(role)
		msg.Timestamp, _ = time.Parse(time.DateTime, ts)
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("decoding tool calls: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// Append adds one message to a thread, creating the thread row on first
// reference.
func (s *ThreadStore) Append(ctx context.Context, threadID string, msg domain.Message) error {
	var toolCalls sql.NullString
	if len(msg.ToolCalls) > 0 {
		data, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("encoding tool calls: %w", err)
		}
		toolCalls = sql.NullString{String: string(data), Valid: true}
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	now := time.Now().Format(time.DateTime)

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO threads (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		threadID, now, now,
	); err != nil {
		return fmt.Errorf("upserting thread %s: %w", threadID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (thread_id, role, content, tool_calls, tool_call_id, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		threadID, string(msg.Role), msg.Content, toolCalls, msg.ToolCallID, ts.Format(time.DateTime),
	); err != nil {
		return fmt.Errorf("appending message to %s: %w", threadID, err)
	}

	return tx.Commit()
}

// List returns metadata for all threads, most recently updated first.
func (s *ThreadStore) List(ctx context.Context) ([]domain.Thread, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, created_at, updated_at FROM threads ORDER BY updated_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var t domain.Thread
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		t.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		threads = append(threads, t)
	}
	return threads, rows.Err()
}
