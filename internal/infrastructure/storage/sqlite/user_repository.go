package sqlite

import (
	"context"
	"fmt"
	"time"
)

// CreateUser registers ownerID. Registering twice is not an error.
func (s *Storage) CreateUser(ctx context.Context, ownerID string, now time.Time) error {
	const query = `INSERT INTO users (owner_id, created_at) VALUES (?, ?) ON CONFLICT(owner_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, ownerID, now.UTC()); err != nil {
		s.log.Error("failed to create user", "owner_id", ownerID, "error", err)
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) UserExists(ctx context.Context, ownerID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE owner_id = ?)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
