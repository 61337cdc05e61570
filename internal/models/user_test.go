package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newLockoutUser() *User {
	return &User{
		ID:                 1,
		Username:           "alice",
		LockDurationS:      DefaultLockDurationS,
		LockDurationFactor: DefaultLockDurationFactor,
		LockDurationCapS:   DefaultLockDurationCapS,
	}
}

func TestUser_RegisterFailedLogin_BelowThreshold(t *testing.T) {
	u := newLockoutUser()
	now := time.Now()

	assert.False(t, u.RegisterFailedLogin(now, 3))
	assert.False(t, u.RegisterFailedLogin(now, 3))
	assert.Equal(t, 2, u.InvalidLoginAttempts)
	assert.Nil(t, u.LockedUntil)
	assert.False(t, u.IsLocked(now))
}

func TestUser_RegisterFailedLogin_LocksAtThreshold(t *testing.T) {
	u := newLockoutUser()
	now := time.Now()

	u.RegisterFailedLogin(now, 3)
	u.RegisterFailedLogin(now, 3)
	locked := u.RegisterFailedLogin(now, 3)

	assert.True(t, locked)
	assert.NotNil(t, u.LockedUntil)
	assert.Equal(t, now.Add(60*time.Second), *u.LockedUntil)
	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(now.Add(61*time.Second)))
}

func TestUser_LockDuration_GrowsByFactor(t *testing.T) {
	tests := []struct {
		attempts int
		expected time.Duration
	}{
		{3, 60 * time.Second},
		{4, 120 * time.Second},
		{5, 240 * time.Second},
		{8, 1920 * time.Second},
		{9, 3600 * time.Second},
		{50, 3600 * time.Second},
	}

	for _, tt := range tests {
		u := newLockoutUser()
		u.InvalidLoginAttempts = tt.attempts
		assert.Equal(t, tt.expected, u.LockDuration(3), "attempts=%d", tt.attempts)
	}
}

func TestUser_LockDuration_ZeroValuesFallBackToDefaults(t *testing.T) {
	u := &User{InvalidLoginAttempts: 3}
	assert.Equal(t, 60*time.Second, u.LockDuration(3))
}

func TestUser_ResetLoginFailures(t *testing.T) {
	u := newLockoutUser()
	now := time.Now()
	for i := 0; i < 4; i++ {
		u.RegisterFailedLogin(now, 3)
	}

	u.ResetLoginFailures()

	assert.Equal(t, 0, u.InvalidLoginAttempts)
	assert.Nil(t, u.LockedUntil)
	assert.False(t, u.IsLocked(now))
}

func TestUser_TwoFactorEnabled(t *testing.T) {
	u := newLockoutUser()
	assert.False(t, u.TwoFactorEnabled())

	empty := ""
	u.TwoFactorSecret = &empty
	assert.False(t, u.TwoFactorEnabled())

	sealed := "c2VhbGVk"
	u.TwoFactorSecret = &sealed
	assert.True(t, u.TwoFactorEnabled())
}
