package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photoselect/internal/models"
)

var ErrInvitationNotFound = errors.New("invitation not found")

type InvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

const invitationColumns = `id, token, email, role, workspace_id, inviter_id, status, expires_at, created_at, updated_at`

func scanInvitation(row pgx.Row) (models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.Token,
		&inv.Email,
		&inv.Role,
		&inv.WorkspaceID,
		&inv.InviterID,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Invitation{}, ErrInvitationNotFound
		}
		return models.Invitation{}, err
	}
	return inv, nil
}

func (r *InvitationRepository) Create(ctx context.Context, inv models.Invitation) error {
	const query = `
		INSERT INTO invitations (
			id, token, email, role, workspace_id, inviter_id, status, expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		inv.ID,
		inv.Token,
		inv.Email,
		inv.Role,
		inv.WorkspaceID,
		inv.InviterID,
		inv.Status,
		inv.ExpiresAt,
	)
	return err
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	const query = `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, token))
}

func (r *InvitationRepository) GetByID(ctx context.Context, id string) (models.Invitation, error) {
	const query = `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, id))
}

func (r *InvitationRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Invitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *InvitationRepository) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	const query = `UPDATE invitations SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// ExpirePending marks pending invitations whose deadline has passed.
// Returns how many rows changed.
func (r *InvitationRepository) ExpirePending(ctx context.Context) (int64, error) {
	const query = `
		UPDATE invitations
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND expires_at < NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
