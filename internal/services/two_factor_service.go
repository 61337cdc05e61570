package services

import (
	"context"
	"log/slog"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/models"
	pkglogger "github.com/financefusion/api/pkg/logger"
)

// TOTPProvider is satisfied by *auth.TOTPManager.
type TOTPProvider interface {
	NewSetup(accountName string) (*auth.TOTPSetup, error)
	Validate(secret, code string) bool
	Seal(secret string) (string, error)
	Open(sealed string) (string, error)
}

// TwoFactorService enrols and removes TOTP secrets. Enrolment is stateless:
// the client holds the proposed secret until it confirms it with a code.
type TwoFactorService struct {
	users       UserRepository
	totp        TOTPProvider
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewTwoFactorService(users UserRepository, totp TOTPProvider, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *TwoFactorService {
	return &TwoFactorService{users: users, totp: totp, logger: logger, auditLogger: auditLogger}
}

func (s *TwoFactorService) BeginSetup(ctx context.Context, userID int64) (*auth.TOTPSetup, error) {
	if s.totp == nil {
		return nil, models.ErrTwoFactorUnavailable
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError(s.logger, "failed to get user", err, slog.Int64("user_id", userID))
	}
	if user.TwoFactorEnabled() {
		return nil, models.ErrTwoFactorEnabled
	}

	setup, err := s.totp.NewSetup(user.Username)
	if err != nil {
		s.logger.Error("failed to generate TOTP setup", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return setup, nil
}

// Enable stores secret once code proves the authenticator app holds it.
func (s *TwoFactorService) Enable(ctx context.Context, userID int64, secret, code string) error {
	if s.totp == nil {
		return models.ErrTwoFactorUnavailable
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storageError(s.logger, "failed to get user", err, slog.Int64("user_id", userID))
	}
	if user.TwoFactorEnabled() {
		return models.ErrTwoFactorEnabled
	}
	if !s.totp.Validate(secret, code) {
		return models.ErrInvalidTwoFactor
	}

	sealed, err := s.totp.Seal(secret)
	if err != nil {
		s.logger.Error("failed to seal TOTP secret", slog.Int64("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	if err := s.users.UpdateTwoFactorSecret(ctx, userID, &sealed); err != nil {
		return storageError(s.logger, "failed to store TOTP secret", err, slog.Int64("user_id", userID))
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventTwoFactorOn, userID, "", nil)
	return nil
}

// Disable clears the secret after checking a current code.
func (s *TwoFactorService) Disable(ctx context.Context, userID int64, code string) error {
	if s.totp == nil {
		return models.ErrTwoFactorUnavailable
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storageError(s.logger, "failed to get user", err, slog.Int64("user_id", userID))
	}
	if !user.TwoFactorEnabled() {
		return models.ErrTwoFactorDisabled
	}

	secret, err := s.totp.Open(*user.TwoFactorSecret)
	if err != nil {
		s.logger.Error("failed to open TOTP secret", slog.Int64("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	if !s.totp.Validate(secret, code) {
		return models.ErrInvalidTwoFactor
	}

	if err := s.users.UpdateTwoFactorSecret(ctx, userID, nil); err != nil {
		return storageError(s.logger, "failed to clear TOTP secret", err, slog.Int64("user_id", userID))
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventTwoFactorOff, userID, "", nil)
	return nil
}
