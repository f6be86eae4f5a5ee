package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type ListQuery struct {
	Prefix  string
	Cursor  string
	Reverse bool
	Limit   int
}

func (s *Storage) PutEntry(ctx context.Context, ownerID, path string, data []byte, now time.Time) error {
	const query = `
		INSERT INTO entries (owner_id, path, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, ownerID, path, data, now.UTC()); err != nil {
		s.log.Error("failed to put entry", "owner_id", ownerID, "path", path, "error", err)
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *Storage) GetEntry(ctx context.Context, ownerID, path string) ([]byte, error) {
	const query = `SELECT data FROM entries WHERE owner_id = ? AND path = ?`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, ownerID, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return data, nil
}

// DeleteEntry removes one entry; ErrNotFound when there was nothing to remove.
func (s *Storage) DeleteEntry(ctx context.Context, ownerID, path string) error {
	const query = `DELETE FROM entries WHERE owner_id = ? AND path = ?`

	res, err := s.db.ExecContext(ctx, query, ownerID, path)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEntries returns the paths under q.Prefix in lexical order.
func (s *Storage) ListEntries(ctx context.Context, ownerID string, q ListQuery) ([]string, error) {
	query := `SELECT path FROM entries WHERE owner_id = ? AND substr(path, 1, length(?)) = ?`
	args := []any{ownerID, q.Prefix, q.Prefix}

	if q.Cursor != "" {
		if q.Reverse {
			query += ` AND path < ?`
		} else {
			query += ` AND path > ?`
		}
		args = append(args, q.Cursor)
	}
	if q.Reverse {
		query += ` ORDER BY path DESC`
	} else {
		query += ` ORDER BY path ASC`
	}
	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.log.Error("failed to list entries", "owner_id", ownerID, "prefix", q.Prefix, "error", err)
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
