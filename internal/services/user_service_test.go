package services

import (
	"context"
	"testing"

	"github.com/financefusion/api/internal/models"
	pkgauth "github.com/financefusion/api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(users *MockUserRepository, sessions *MockSessionRepository) *UserService {
	return NewUserService(users, sessions, newTestLogger(), newTestAuditLogger())
}

func TestUserService_Register_Success(t *testing.T) {
	var stored *models.User
	users := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			stored = user
			created := *user
			created.ID = 1
			return &created, nil
		},
	}

	user, err := newUserService(users, &MockSessionRepository{}).Register(context.Background(), "  alice ", "SecureP@ss123")

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", stored.Username)
	assert.NotEqual(t, "SecureP@ss123", stored.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(stored.PasswordHash, "SecureP@ss123"))
}

func TestUserService_Register_Validation(t *testing.T) {
	svc := newUserService(&MockUserRepository{}, &MockSessionRepository{})

	_, err := svc.Register(context.Background(), "a", "SecureP@ss123")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.Register(context.Background(), "alice", "weak")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	users := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	_, err := newUserService(users, &MockSessionRepository{}).Register(context.Background(), "alice", "SecureP@ss123")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUserService_GetByID_DatabaseError(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return nil, assert.AnError
		},
	}

	_, err := newUserService(users, &MockSessionRepository{}).GetByID(context.Background(), 1)
	assert.Equal(t, models.ErrInternalServer, err)
}

func TestUserService_ChangePassword(t *testing.T) {
	user := NewTestUser(1, "alice", mustHash("SecureP@ss123"))

	t.Run("wrong current password", func(t *testing.T) {
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) { return user, nil },
			UpdatePasswordFunc: func(ctx context.Context, id int64, hash string) error {
				t.Fatal("password must not be updated")
				return nil
			},
		}
		err := newUserService(users, &MockSessionRepository{}).ChangePassword(context.Background(), 1, "nope", "N3wP@ssword!", "")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("weak new password", func(t *testing.T) {
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) { return user, nil },
		}
		err := newUserService(users, &MockSessionRepository{}).ChangePassword(context.Background(), 1, "SecureP@ss123", "short", "")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("success revokes sessions", func(t *testing.T) {
		var newHash string
		revokedFor := int64(0)
		users := &MockUserRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) { return user, nil },
			UpdatePasswordFunc: func(ctx context.Context, id int64, hash string) error {
				newHash = hash
				return nil
			},
		}
		sessions := &MockSessionRepository{
			DeleteByUserFunc: func(ctx context.Context, userID int64) (int64, error) {
				revokedFor = userID
				return 2, nil
			},
		}

		err := newUserService(users, sessions).ChangePassword(context.Background(), 1, "SecureP@ss123", "N3wP@ssword!", "203.0.113.1")
		require.NoError(t, err)
		assert.NoError(t, pkgauth.ComparePassword(newHash, "N3wP@ssword!"))
		assert.Equal(t, int64(1), revokedFor)
	})
}

func TestUserService_SetDevMode(t *testing.T) {
	users := &MockUserRepository{
		UpdateDevModeFunc: func(ctx context.Context, id int64, enabled bool) (*models.User, error) {
			u := NewTestUser(id, "alice", "")
			u.IsDevMode = enabled
			return u, nil
		},
	}

	user, err := newUserService(users, &MockSessionRepository{}).SetDevMode(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, user.IsDevMode)
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		deleted := int64(0)
		users := &MockUserRepository{
			DeleteFunc: func(ctx context.Context, id int64) error {
				deleted = id
				return nil
			},
		}
		require.NoError(t, newUserService(users, &MockSessionRepository{}).DeleteUser(context.Background(), 5, ""))
		assert.Equal(t, int64(5), deleted)
	})

	t.Run("not found", func(t *testing.T) {
		users := &MockUserRepository{
			DeleteFunc: func(ctx context.Context, id int64) error { return models.ErrNotFound },
		}
		err := newUserService(users, &MockSessionRepository{}).DeleteUser(context.Background(), 5, "")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("currency referenced elsewhere", func(t *testing.T) {
		users := &MockUserRepository{
			DeleteFunc: func(ctx context.Context, id int64) error { return models.ErrForeignKeyViolation },
		}
		err := newUserService(users, &MockSessionRepository{}).DeleteUser(context.Background(), 5, "")
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}
