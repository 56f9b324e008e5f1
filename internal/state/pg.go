package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"placement-backend/internal/placement"
	"placement-backend/internal/shared/storage/db"
)

// PGStore keeps each user as one JSONB row in placement_users. The version
// column guards writes from API, worker and Lambda processes against each other.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Get(ctx context.Context, userID string) (placement.User, error) {
	const query = `SELECT payload, version FROM placement_users WHERE id = $1`
	var (
		payload []byte
		version int64
	)
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&payload, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return placement.User{}, ErrNotFound
		}
		return placement.User{}, err
	}
	var u placement.User
	if err := json.Unmarshal(payload, &u); err != nil {
		return placement.User{}, fmt.Errorf("decode user %s: %w", userID, err)
	}
	u.Version = version
	return u, nil
}

// Put inserts a new row or updates the row still at user.Version.
func (s *PGStore) Put(ctx context.Context, user placement.User) error {
	const query = `
INSERT INTO placement_users (id, payload, updated_at, version)
VALUES ($1, $2, $3, $4::bigint + 1)
ON CONFLICT (id) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at,
    version = EXCLUDED.version
WHERE placement_users.version = $4::bigint`
	stored := user
	stored.Version++
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.ID, err)
	}
	err = db.ExecVersioned(ctx, s.DB, query, user.ID, payload, user.UpdatedAt.UTC(), user.Version)
	if errors.Is(err, db.ErrStale) {
		return ErrConflict
	}
	return err
}

func (s *PGStore) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM placement_users WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM placement_users ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
