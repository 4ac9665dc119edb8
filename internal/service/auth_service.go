package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"photoselect/internal/apperror"
	"photoselect/internal/config"
	"photoselect/internal/ids"
	"photoselect/internal/models"
	"photoselect/internal/repository"
	"photoselect/internal/security"
)

// Default color tags cycled through as members join a workspace.
var memberColors = []string{"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4", "#46f0f0", "#f032e6", "#008080"}

type AuthService struct {
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	invitations *repository.InvitationRepository
	tracker     *security.SessionTracker
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	sessions *repository.SessionRepository,
	invitations *repository.InvitationRepository,
	tracker *security.SessionTracker,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		invitations: invitations,
		tracker:     tracker,
		cfg:         cfg,
		log:         log,
	}
}

type RegisterInput struct {
	Email           string
	Password        string
	Name            string
	InvitationToken string
	IPAddress       string
	UserAgent       string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	User         models.User
}

// Register creates an account. Without an invitation token the caller
// becomes a business owner with no workspace yet; with one, the account
// takes the invited role and workspace and the invitation is consumed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, apperror.New(apperror.KindValidation, "email and password required")
	}

	role := models.UserRoleBusinessOwner
	var workspaceID *string
	var invitation models.Invitation

	if input.InvitationToken != "" {
		var err error
		invitation, err = s.invitations.GetByToken(ctx, input.InvitationToken)
		if err != nil {
			if errors.Is(err, repository.ErrInvitationNotFound) {
				return AuthResult{}, apperror.New(apperror.KindNotFound, "invitation not found")
			}
			return AuthResult{}, apperror.Wrap(apperror.KindDatabase, "load invitation", err)
		}
		if invitation.Status != models.InvitationStatusPending {
			return AuthResult{}, apperror.New(apperror.KindConflict, "invitation no longer valid")
		}
		if invitation.Expired(time.Now()) {
			_ = s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationStatusExpired)
			return AuthResult{}, apperror.New(apperror.KindConflict, "invitation expired")
		}
		if !strings.EqualFold(invitation.Email, input.Email) {
			return AuthResult{}, apperror.New(apperror.KindAuthorization, "invitation issued for a different email")
		}
		role = invitation.Role
		workspaceID = &invitation.WorkspaceID
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, apperror.New(apperror.KindConflict, "email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, apperror.Wrap(apperror.KindDatabase, "lookup email", err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindInternal, "hash password", err)
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Role:         role,
		Status:       models.UserStatusActive,
		WorkspaceID:  workspaceID,
		Color:        memberColors[int(time.Now().UnixNano())%len(memberColors)],
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, apperror.New(apperror.KindConflict, "email already registered")
		}
		return AuthResult{}, apperror.Wrap(apperror.KindDatabase, "create user", err)
	}

	if input.InvitationToken != "" {
		if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationStatusAccepted); err != nil {
			s.log.Warn().Err(err).Str("invitation_id", invitation.ID).Msg("mark invitation accepted failed")
		}
	}

	s.tracker.RecordLoginSuccess(user.ID)
	return s.createSession(ctx, user, input.IPAddress, input.UserAgent)
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperror.New(apperror.KindAuth, "invalid credentials")
		}
		return AuthResult{}, apperror.Wrap(apperror.KindDatabase, "lookup email", err)
	}

	if s.tracker.Locked(user.ID) {
		return AuthResult{}, apperror.New(apperror.KindRateLimit, "account temporarily locked")
	}

	if user.Status != models.UserStatusActive {
		return AuthResult{}, apperror.New(apperror.KindAuthorization, "account suspended")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		if locked := s.tracker.RecordLoginFailure(user.ID); locked {
			s.log.Warn().Str("user_id", user.ID).Msg("account locked after repeated failures")
			return AuthResult{}, apperror.New(apperror.KindRateLimit, "account temporarily locked")
		}
		return AuthResult{}, apperror.New(apperror.KindAuth, "invalid credentials")
	}

	s.tracker.RecordLoginSuccess(user.ID)
	return s.createSession(ctx, user, input.IPAddress, input.UserAgent)
}

func (s *AuthService) createSession(ctx context.Context, user models.User, ipAddress, userAgent string) (AuthResult, error) {
	refreshToken, refreshHash, err := security.GenerateOpaqueToken(64)
	if err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindInternal, "generate refresh token", err)
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		RefreshTokenHash: refreshHash,
		IPAddress:        ipAddress,
		UserAgent:        userAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}

	workspaceID := ""
	if user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}
	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		string(user.Role),
		workspaceID,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindInternal, "sign access token", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindDatabase, "store session", err)
	}

	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		User:         user,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.Security.MaxSessions)
}

type RefreshInput struct {
	UserID       string
	RefreshToken string
	SessionID    string
}

func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return AuthResult{}, apperror.New(apperror.KindAuth, "invalid credentials")
	}
	if user.Status != models.UserStatusActive {
		return AuthResult{}, apperror.New(apperror.KindAuthorization, "account suspended")
	}

	refreshHash := security.HashToken(input.RefreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, input.UserID, refreshHash)
	if err != nil {
		return AuthResult{}, apperror.New(apperror.KindAuth, "invalid credentials")
	}
	if session.ID != input.SessionID {
		return AuthResult{}, apperror.New(apperror.KindAuth, "invalid credentials")
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, apperror.New(apperror.KindAuth, "session expired")
	}

	refreshToken, newHash, err := security.GenerateOpaqueToken(64)
	if err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindInternal, "rotate refresh token", err)
	}

	session.RefreshTokenHash = newHash
	session.ExpiresAt = time.Now().Add(s.cfg.Security.JWTRefreshTTL)
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindDatabase, "rotate session", err)
	}

	workspaceID := ""
	if user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}
	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		string(user.Role),
		workspaceID,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, apperror.Wrap(apperror.KindInternal, "sign access token", err)
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		User:         user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return apperror.Wrap(apperror.KindDatabase, "delete session", err)
	}
	return nil
}
