package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photoselect/internal/models"
)

var ErrPhotoNotFound = errors.New("photo not found")

type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

const photoColumns = `id, workspace_id, uploader_id, filename, original_name, url, mime_type, size_bytes, checksum, created_at, updated_at`

func scanPhoto(row pgx.Row) (models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID,
		&photo.WorkspaceID,
		&photo.UploaderID,
		&photo.Filename,
		&photo.OriginalName,
		&photo.URL,
		&photo.MimeType,
		&photo.SizeBytes,
		&photo.Checksum,
		&photo.CreatedAt,
		&photo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Photo{}, ErrPhotoNotFound
		}
		return models.Photo{}, err
	}
	return photo, nil
}

func (r *PhotoRepository) Create(ctx context.Context, photo models.Photo) error {
	const query = `
		INSERT INTO photos (
			id, workspace_id, uploader_id, filename, original_name, url, mime_type, size_bytes, checksum, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		photo.ID,
		photo.WorkspaceID,
		photo.UploaderID,
		photo.Filename,
		photo.OriginalName,
		photo.URL,
		photo.MimeType,
		photo.SizeBytes,
		photo.Checksum,
	)
	return err
}

func (r *PhotoRepository) GetByID(ctx context.Context, id string) (models.Photo, error) {
	const query = `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	return scanPhoto(r.pool.QueryRow(ctx, query, id))
}

// ListByWorkspace returns photos newest first, each carrying the ids
// of the users that currently have it selected.
func (r *PhotoRepository) ListByWorkspace(ctx context.Context, workspaceID string, limit, offset int) ([]models.PhotoWithSelections, error) {
	const query = `
		SELECT ` + photoColumns + `,
		       COALESCE(
		           (SELECT array_agg(ps.user_id) FROM photo_selections ps WHERE ps.photo_id = photos.id),
		           '{}'
		       ) AS selected_by
		FROM photos
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.PhotoWithSelections
	for rows.Next() {
		var p models.PhotoWithSelections
		if err := rows.Scan(
			&p.ID,
			&p.WorkspaceID,
			&p.UploaderID,
			&p.Filename,
			&p.OriginalName,
			&p.URL,
			&p.MimeType,
			&p.SizeBytes,
			&p.Checksum,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.SelectedBy,
		); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM photos WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

// DeleteBulk removes the given photos, constrained to one workspace so a
// caller can never reach across tenants. Selections go first, then the
// photo rows, all in one transaction. Returns the filenames of the rows
// actually deleted so storage cleanup can follow.
func (r *PhotoRepository) DeleteBulk(ctx context.Context, workspaceID string, photoIDs []string) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const deleteSelections = `
		DELETE FROM photo_selections
		WHERE photo_id IN (
			SELECT id FROM photos WHERE workspace_id = $1 AND id = ANY($2)
		)
	`
	if _, err := tx.Exec(ctx, deleteSelections, workspaceID, photoIDs); err != nil {
		return nil, err
	}

	const deletePhotos = `
		DELETE FROM photos
		WHERE workspace_id = $1 AND id = ANY($2)
		RETURNING filename
	`
	rows, err := tx.Query(ctx, deletePhotos, workspaceID, photoIDs)
	if err != nil {
		return nil, err
	}

	var filenames []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			return nil, err
		}
		filenames = append(filenames, filename)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return filenames, nil
}
