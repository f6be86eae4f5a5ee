package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Session struct {
	ID           string
	OwnerID      string
	Capabilities string
	CreatedAt    time.Time
}

func (s *Storage) CreateSession(ctx context.Context, sess Session) error {
	const query = `INSERT INTO sessions (id, owner_id, capabilities, created_at) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, sess.ID, sess.OwnerID, sess.Capabilities, sess.CreatedAt.UTC())
	if err != nil {
		s.log.Error("failed to create session", "owner_id", sess.OwnerID, "error", err)
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (*Session, error) {
	const query = `SELECT id, owner_id, capabilities, created_at FROM sessions WHERE id = ?`

	var sess Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(&sess.ID, &sess.OwnerID, &sess.Capabilities, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
