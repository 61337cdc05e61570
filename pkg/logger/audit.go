package logger

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Audit event types.
const (
	EventLogin          = "login"
	EventLogout         = "logout"
	EventSessionRefresh = "session_refresh"
	EventAccountLocked  = "account_locked"
	EventPasswordChange = "password_change"
	EventUserCreated    = "user_created"
	EventUserDeleted    = "user_deleted"
	EventDevModeChange  = "dev_mode_change"
	EventTwoFactorOn    = "two_factor_enabled"
	EventTwoFactorOff   = "two_factor_disabled"
)

// AuditEvent describes a security-relevant action.
type AuditEvent struct {
	EventType     string
	UserID        int64 // zero when the user is unknown
	Username      string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes audit events as structured slog records tagged with
// audit_type so they can be filtered out of the regular log stream.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt records login, logout and refresh outcomes. Failures log at Warn.
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	al.write(ctx, "auth", event)
}

func (al *AuditLogger) LogPasswordChange(ctx context.Context, userID int64, ipAddress string, success bool) {
	al.write(ctx, "password", AuditEvent{
		EventType: EventPasswordChange,
		UserID:    userID,
		IPAddress: ipAddress,
		Success:   success,
	})
}

// LogAccountAction records user lifecycle and settings changes.
func (al *AuditLogger) LogAccountAction(ctx context.Context, eventType string, userID int64, ipAddress string, metadata map[string]string) {
	al.write(ctx, "account", AuditEvent{
		EventType: eventType,
		UserID:    userID,
		IPAddress: ipAddress,
		Success:   true,
		Metadata:  metadata,
	})
}

func (al *AuditLogger) write(ctx context.Context, auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != 0 {
		attrs = append(attrs, slog.String("user_id", strconv.FormatInt(event.UserID, 10)))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", SanitizedUsername(event.Username)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
