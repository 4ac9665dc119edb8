package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"photoselect/internal/models"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrDuplicateSlug     = errors.New("slug already in use")
)

type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

const workspaceColumns = `id, name, slug, status, owner_id, created_at, updated_at`

func scanWorkspace(row pgx.Row) (models.Workspace, error) {
	var ws models.Workspace
	err := row.Scan(
		&ws.ID,
		&ws.Name,
		&ws.Slug,
		&ws.Status,
		&ws.OwnerID,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Workspace{}, ErrWorkspaceNotFound
		}
		return models.Workspace{}, err
	}
	return ws, nil
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws models.Workspace) error {
	const query = `
		INSERT INTO workspaces (id, name, slug, status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, ws.ID, ws.Name, ws.Slug, ws.Status, ws.OwnerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (models.Workspace, error) {
	const query = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`
	return scanWorkspace(r.pool.QueryRow(ctx, query, id))
}

func (r *WorkspaceRepository) GetBySlug(ctx context.Context, slug string) (models.Workspace, error) {
	const query = `SELECT ` + workspaceColumns + ` FROM workspaces WHERE slug = $1`
	return scanWorkspace(r.pool.QueryRow(ctx, query, slug))
}

func (r *WorkspaceRepository) List(ctx context.Context, limit, offset int) ([]models.Workspace, error) {
	const query = `
		SELECT ` + workspaceColumns + `
		FROM workspaces
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) UpdateStatus(ctx context.Context, id string, status models.WorkspaceStatus) error {
	const query = `UPDATE workspaces SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}
