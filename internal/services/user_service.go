package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/financefusion/api/internal/models"
	"github.com/financefusion/api/pkg/auth"
	pkglogger "github.com/financefusion/api/pkg/logger"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateDevMode(ctx context.Context, id int64, enabled bool) (*models.User, error)
	UpdateTwoFactorSecret(ctx context.Context, id int64, secret *string) error
	RegisterLoginFailure(ctx context.Context, id int64, now time.Time, threshold int) (*models.User, error)
	ResetLoginFailures(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type SessionRepository interface {
	Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.Session, error)
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserService handles registration and self-service account management.
type UserService struct {
	users       UserRepository
	sessions    SessionRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewUserService(users UserRepository, sessions SessionRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		users:       users,
		sessions:    sessions,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = auth.NormalizeUsername(username)
	if err := auth.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: username must be %d-%d letters, digits, '.', '_' or '-'",
			models.ErrBadRequest, auth.MinUsernameLen, auth.MaxUsernameLen)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, &models.User{Username: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("registration rejected: username taken")
			return nil, fmt.Errorf("%w: username is already taken", models.ErrConflict)
		}
		return nil, storageError(s.logger, "failed to create user", err)
	}

	s.logger.Info("user created", slog.Int64("user_id", user.ID))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUserCreated, user.ID, "", nil)
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(s.logger, "failed to get user", err, slog.Int64("user_id", id))
	}
	return user, nil
}

// GetByUsername backs the public profile lookup.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, auth.NormalizeUsername(username))
	if err != nil {
		return nil, storageError(s.logger, "failed to get user by username", err)
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// ends every session of the user.
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next, ip string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return storageError(s.logger, "failed to get user", err, slog.Int64("user_id", id))
	}

	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		s.auditLogger.LogPasswordChange(ctx, id, ip, false)
		return fmt.Errorf("%w: current password is incorrect", models.ErrUnauthorized)
	}
	if err := auth.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return storageError(s.logger, "failed to update password", err, slog.Int64("user_id", id))
	}

	revoked, err := s.sessions.DeleteByUser(ctx, id)
	if err != nil {
		s.logger.Error("failed to revoke sessions after password change", slog.Int64("user_id", id), slog.Any("error", err))
	}

	s.logger.Info("password changed", slog.Int64("user_id", id), slog.Int64("sessions_revoked", revoked))
	s.auditLogger.LogPasswordChange(ctx, id, ip, true)
	return nil
}

func (s *UserService) SetDevMode(ctx context.Context, id int64, enabled bool) (*models.User, error) {
	user, err := s.users.UpdateDevMode(ctx, id, enabled)
	if err != nil {
		return nil, storageError(s.logger, "failed to update dev mode", err, slog.Int64("user_id", id))
	}
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventDevModeChange, id, "", map[string]string{
		"enabled": fmt.Sprint(enabled),
	})
	return user, nil
}

// DeleteUser removes the user and everything owned by it in one transaction.
// A currency of this user still referenced by another user's plan aborts the
// delete with ErrConflict.
func (s *UserService) DeleteUser(ctx context.Context, id int64, ip string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrForeignKeyViolation) {
			s.logger.Info("user delete blocked by foreign reference", slog.Int64("user_id", id), slog.Any("error", err))
			return fmt.Errorf("%w: a currency owned by this user is used by another user's plan", models.ErrConflict)
		}
		return storageError(s.logger, "failed to delete user", err, slog.Int64("user_id", id))
	}

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUserDeleted, id, ip, nil)
	return nil
}
