package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SelectionRepository struct {
	pool *pgxpool.Pool
}

func NewSelectionRepository(pool *pgxpool.Pool) *SelectionRepository {
	return &SelectionRepository{pool: pool}
}

// Toggle flips the selection row for (photoID, userID): inserted if
// absent, deleted if present. Returns the resulting state, so that an
// alternating sequence of calls is idempotent in outcome.
func (r *SelectionRepository) Toggle(ctx context.Context, photoID, userID string) (bool, error) {
	const insert = `
		INSERT INTO photo_selections (photo_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (photo_id, user_id) DO NOTHING
	`
	cmd, err := r.pool.Exec(ctx, insert, photoID, userID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return true, nil
	}

	const remove = `DELETE FROM photo_selections WHERE photo_id = $1 AND user_id = $2`
	if _, err := r.pool.Exec(ctx, remove, photoID, userID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *SelectionRepository) IsSelected(ctx context.Context, photoID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM photo_selections WHERE photo_id = $1 AND user_id = $2)`
	var selected bool
	if err := r.pool.QueryRow(ctx, query, photoID, userID).Scan(&selected); err != nil {
		return false, err
	}
	return selected, nil
}

func (r *SelectionRepository) CountByPhoto(ctx context.Context, photoID string) (int, error) {
	const query = `SELECT COUNT(*) FROM photo_selections WHERE photo_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, photoID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
