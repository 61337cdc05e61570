package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/models"
	pkgauth "github.com/financefusion/api/pkg/auth"
	pkglogger "github.com/financefusion/api/pkg/logger"
)

// AuthConfig holds the session and lockout knobs of AuthService.
type AuthConfig struct {
	SessionTTL       time.Duration
	LockoutThreshold int
}

// LoginInput is a single login attempt. Code is the TOTP code and is only
// consulted for users with two-factor enabled.
type LoginInput struct {
	Username  string
	Password  string
	Code      string
	IPAddress string
	UserAgent string
}

// LoginResult is a freshly created session and its signed JWT.
type LoginResult struct {
	Token   string
	Session *models.Session
	User    *models.User
}

// AuthService owns login, session rotation and session resolution.
type AuthService struct {
	users       UserRepository
	sessions    SessionRepository
	tm          *auth.TokenManager
	totp        TOTPProvider // nil when two-factor is not configured
	timing      *auth.TimingDelay
	config      AuthConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

func NewAuthService(
	users UserRepository,
	sessions SessionRepository,
	tm *auth.TokenManager,
	totp TOTPProvider,
	timing *auth.TimingDelay,
	config AuthConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	if config.LockoutThreshold <= 0 {
		config.LockoutThreshold = 3
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		tm:          tm,
		totp:        totp,
		timing:      timing,
		config:      config,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// Login checks credentials against the lockout policy and opens a session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	start := s.now()
	event := pkglogger.AuditEvent{
		EventType: pkglogger.EventLogin,
		Username:  in.Username,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	fail := func(reason string, err error) (*LoginResult, error) {
		event.FailureReason = reason
		s.auditLogger.LogAuthAttempt(ctx, event)
		s.timing.WaitFrom(start)
		return nil, err
	}

	username := pkgauth.NormalizeUsername(in.Username)
	if username == "" || in.Password == "" {
		return fail("missing_credentials", models.ErrUnauthorized)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkgauth.DummyCompare(in.Password)
			return fail("invalid_credentials", models.ErrUnauthorized)
		}
		s.logger.Error("failed to load user for login", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	event.UserID = user.ID

	if user.IsLocked(start) {
		return fail("account_locked", &models.LockedError{Until: *user.LockedUntil})
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		if lockErr := s.registerFailure(ctx, user, start); lockErr != nil {
			return fail("invalid_credentials", lockErr)
		}
		return fail("invalid_credentials", models.ErrUnauthorized)
	}

	if user.TwoFactorEnabled() {
		if in.Code == "" {
			return fail("two_factor_required", models.ErrTwoFactorRequired)
		}
		ok, err := s.checkTOTP(user, in.Code)
		if err != nil {
			return nil, err
		}
		if !ok {
			if lockErr := s.registerFailure(ctx, user, start); lockErr != nil {
				return fail("invalid_two_factor", lockErr)
			}
			return fail("invalid_two_factor", models.ErrInvalidTwoFactor)
		}
	}

	if user.InvalidLoginAttempts != 0 || user.LockedUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
			s.logger.Error("failed to reset login failures", slog.Int64("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		user.ResetLoginFailures()
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	event.Success = true
	s.auditLogger.LogAuthAttempt(ctx, event)
	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return result, nil
}

// registerFailure records the failure in storage and returns a LockedError
// once the stored counter crosses the threshold.
func (s *AuthService) registerFailure(ctx context.Context, user *models.User, now time.Time) error {
	updated, err := s.users.RegisterLoginFailure(ctx, user.ID, now, s.config.LockoutThreshold)
	if err != nil {
		s.logger.Error("failed to persist login failure", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil
	}
	if updated.InvalidLoginAttempts < s.config.LockoutThreshold || !updated.IsLocked(now) {
		return nil
	}

	s.logger.Warn("account locked",
		slog.Int64("user_id", updated.ID),
		slog.Int("attempts", updated.InvalidLoginAttempts),
		slog.Time("locked_until", *updated.LockedUntil),
	)
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventAccountLocked,
		UserID:    updated.ID,
		Success:   true,
		Metadata:  map[string]string{"locked_until": updated.LockedUntil.UTC().Format(time.RFC3339)},
	})
	return &models.LockedError{Until: *updated.LockedUntil}
}

func (s *AuthService) checkTOTP(user *models.User, code string) (bool, error) {
	if s.totp == nil {
		s.logger.Error("user has two-factor enabled but no TOTP key is configured", slog.Int64("user_id", user.ID))
		return false, models.ErrTwoFactorUnavailable
	}
	secret, err := s.totp.Open(*user.TwoFactorSecret)
	if err != nil {
		s.logger.Error("failed to open two-factor secret", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return false, models.ErrInternalServer
	}
	return s.totp.Validate(secret, code), nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	session, err := s.sessions.Create(ctx, user.ID, s.now().Add(s.config.SessionTTL))
	if err != nil {
		return nil, storageError(s.logger, "failed to create session", err, slog.Int64("user_id", user.ID))
	}

	token, err := s.tm.GenerateSessionToken(user.ID, session.Token, session.ExpiresAt)
	if err != nil {
		s.logger.Error("failed to sign session token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		_ = s.sessions.DeleteByToken(ctx, session.Token)
		return nil, models.ErrInternalServer
	}

	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// Logout ends the given session. An already-deleted session is not an error.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if err := s.sessions.DeleteByToken(ctx, session.Token); err != nil && !errors.Is(err, models.ErrNotFound) {
		return storageError(s.logger, "failed to delete session", err, slog.Int64("user_id", session.UserID))
	}
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventLogout,
		UserID:    session.UserID,
		Success:   true,
	})
	return nil
}

// Refresh replaces the current session with a new one carrying a fresh expiry.
func (s *AuthService) Refresh(ctx context.Context, session *models.Session) (*LoginResult, error) {
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, storageError(s.logger, "failed to load user for refresh", err, slog.Int64("user_id", session.UserID))
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.DeleteByToken(ctx, session.Token); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to delete rotated session", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventSessionRefresh,
		UserID:    user.ID,
		Success:   true,
	})
	return result, nil
}

// Authenticate resolves a session JWT to its live sessions row. Expired
// sessions are deleted on sight.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*models.Session, error) {
	claims, err := s.tm.ValidateToken(rawToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		s.logger.Warn("session token presented for a different user", slog.Int64("claimed_user_id", claims.UserID))
		return nil, models.ErrUnauthorized
	}

	if session.Expired(s.now()) {
		if err := s.sessions.DeleteByToken(ctx, session.Token); err != nil && !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to delete expired session", slog.Any("error", err))
		}
		return nil, models.ErrSessionExpired
	}

	return session, nil
}
