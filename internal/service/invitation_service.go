package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photoselect/internal/apperror"
	"photoselect/internal/config"
	"photoselect/internal/ids"
	"photoselect/internal/models"
	"photoselect/internal/repository"
	"photoselect/internal/security"
)

type InvitationService struct {
	invitations *repository.InvitationRepository
	workspaces  *repository.WorkspaceRepository
	queue       *redis.Client
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewInvitationService(
	invitations *repository.InvitationRepository,
	workspaces *repository.WorkspaceRepository,
	queue *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		workspaces:  workspaces,
		queue:       queue,
		cfg:         cfg,
		log:         log,
	}
}

type CreateInvitationInput struct {
	Inviter     models.User
	WorkspaceID string
	Email       string
	Role        models.UserRole
}

// Create issues a time-limited invitation token and queues the email
// for the worker to deliver.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (models.Invitation, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" {
		return models.Invitation{}, apperror.New(apperror.KindValidation, "email required")
	}
	switch input.Role {
	case models.UserRoleStaff, models.UserRoleUser:
	default:
		return models.Invitation{}, apperror.New(apperror.KindValidation, "role must be staff or user")
	}
	if !input.Inviter.CanManage(input.WorkspaceID) {
		return models.Invitation{}, apperror.New(apperror.KindAuthorization, "not allowed to invite into this workspace")
	}

	workspace, err := s.workspaces.GetByID(ctx, input.WorkspaceID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			return models.Invitation{}, apperror.New(apperror.KindNotFound, "workspace not found")
		}
		return models.Invitation{}, apperror.Wrap(apperror.KindDatabase, "load workspace", err)
	}
	if workspace.Status != models.WorkspaceStatusActive {
		return models.Invitation{}, apperror.New(apperror.KindConflict, "workspace is not active")
	}

	token, _, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return models.Invitation{}, apperror.Wrap(apperror.KindInternal, "generate invitation token", err)
	}

	invitation := models.Invitation{
		ID:          ids.New(),
		Token:       token,
		Email:       input.Email,
		Role:        input.Role,
		WorkspaceID: input.WorkspaceID,
		InviterID:   input.Inviter.ID,
		Status:      models.InvitationStatusPending,
		ExpiresAt:   time.Now().Add(s.cfg.Invitation.TTL),
	}

	if err := s.invitations.Create(ctx, invitation); err != nil {
		return models.Invitation{}, apperror.Wrap(apperror.KindDatabase, "create invitation", err)
	}

	if err := s.enqueueEmail(ctx, invitation, workspace); err != nil {
		s.log.Warn().Err(err).Str("invitation_id", invitation.ID).Msg("enqueue invitation email failed")
	}

	return invitation, nil
}

func (s *InvitationService) enqueueEmail(ctx context.Context, invitation models.Invitation, workspace models.Workspace) error {
	if s.queue == nil {
		return nil
	}
	acceptLink := fmt.Sprintf("%s?token=%s", strings.TrimSuffix(s.cfg.Invitation.AcceptURL, "/"), invitation.Token)
	_, err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: s.cfg.Redis.Stream,
		Values: map[string]any{
			"type":       "invitation",
			"to":         invitation.Email,
			"workspace":  workspace.Name,
			"role":       string(invitation.Role),
			"acceptLink": acceptLink,
			"expiresAt":  invitation.ExpiresAt.Format(time.RFC3339),
		},
	}).Result()
	return err
}

func (s *InvitationService) List(ctx context.Context, caller models.User, workspaceID string) ([]models.Invitation, error) {
	if !caller.CanManage(workspaceID) {
		return nil, apperror.New(apperror.KindAuthorization, "not allowed to view invitations")
	}
	invitations, err := s.invitations.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindDatabase, "list invitations", err)
	}
	return invitations, nil
}

func (s *InvitationService) Revoke(ctx context.Context, caller models.User, invitationID string) error {
	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return apperror.New(apperror.KindNotFound, "invitation not found")
		}
		return apperror.Wrap(apperror.KindDatabase, "load invitation", err)
	}
	if !caller.CanManage(invitation.WorkspaceID) {
		return apperror.New(apperror.KindAuthorization, "not allowed to revoke this invitation")
	}
	if invitation.Status != models.InvitationStatusPending {
		return apperror.New(apperror.KindConflict, "invitation is not pending")
	}
	if err := s.invitations.UpdateStatus(ctx, invitationID, models.InvitationStatusRevoked); err != nil {
		return apperror.Wrap(apperror.KindDatabase, "revoke invitation", err)
	}
	return nil
}

// Lookup resolves a token for the public accept page. Expired
// invitations are marked on read.
func (s *InvitationService) Lookup(ctx context.Context, token string) (models.Invitation, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) {
			return models.Invitation{}, apperror.New(apperror.KindNotFound, "invitation not found")
		}
		return models.Invitation{}, apperror.Wrap(apperror.KindDatabase, "load invitation", err)
	}
	if invitation.Status == models.InvitationStatusPending && invitation.Expired(time.Now()) {
		if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationStatusExpired); err == nil {
			invitation.Status = models.InvitationStatusExpired
		}
	}
	return invitation, nil
}
