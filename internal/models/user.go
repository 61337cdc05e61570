package models

import (
	"time"
)

// Lockout defaults applied by the users table when a row is created.
const (
	DefaultLockDurationS      = 60
	DefaultLockDurationFactor = 2
	DefaultLockDurationCapS   = 3600
)

type User struct {
	ID                   int64
	Username             string
	PasswordHash         string
	TwoFactorSecret      *string // AES-GCM sealed, base64
	CreatedAt            time.Time
	IsDevMode            bool
	InvalidLoginAttempts int
	LockDurationS        int
	LockDurationFactor   int
	LockDurationCapS     int
	LockedUntil          *time.Time
}

// TwoFactorEnabled reports whether a TOTP secret is stored for the user.
func (u *User) TwoFactorEnabled() bool {
	return u.TwoFactorSecret != nil && *u.TwoFactorSecret != ""
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// LockDuration returns how long the account stays locked once the failure
// counter has reached threshold. The base duration is multiplied by the
// factor for every failure past the threshold, capped at LockDurationCapS.
func (u *User) LockDuration(threshold int) time.Duration {
	base := u.LockDurationS
	if base <= 0 {
		base = DefaultLockDurationS
	}
	capS := u.LockDurationCapS
	if capS <= 0 {
		capS = DefaultLockDurationCapS
	}
	factor := u.LockDurationFactor
	if factor < 1 {
		factor = 1
	}

	seconds := base
	for i := threshold; i < u.InvalidLoginAttempts && seconds < capS; i++ {
		seconds *= factor
	}
	if seconds > capS {
		seconds = capS
	}
	return time.Duration(seconds) * time.Second
}

// RegisterFailedLogin increments the failure counter and, once threshold is
// reached, sets LockedUntil. It reports whether the account is now locked.
func (u *User) RegisterFailedLogin(now time.Time, threshold int) bool {
	u.InvalidLoginAttempts++
	if threshold <= 0 || u.InvalidLoginAttempts < threshold {
		return false
	}
	until := now.Add(u.LockDuration(threshold))
	u.LockedUntil = &until
	return true
}

// ResetLoginFailures clears the failure counter and any lock.
func (u *User) ResetLoginFailures() {
	u.InvalidLoginAttempts = 0
	u.LockedUntil = nil
}
