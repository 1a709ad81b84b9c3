package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/souqops/marketplace-admin/src/models"
	"github.com/souqops/marketplace-admin/src/repositories/mock"
)

func activeAdmin(t *testing.T, username, password string) *models.AdminUser {
	t.Helper()
	// MinCost keeps the test fast; the service still verifies with bcrypt
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}
}

func TestCreateAdmin_HashesPassword(t *testing.T) {
	repo := mock.NewAdminRepository()
	svc := NewAdminServiceWithRepo(repo, mock.NewLoginAttemptRepository())

	admin, err := svc.CreateAdmin(context.Background(), "alice", "correct horse battery", models.RoleModerator)
	require.NoError(t, err)

	assert.Equal(t, "alice", admin.Username)
	assert.Equal(t, models.RoleModerator, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NotEqual(t, "correct horse battery", admin.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("correct horse battery")))

	require.Len(t, repo.Calls["Create"], 1)
}

func TestCreateAdmin_Validation(t *testing.T) {
	svc := NewAdminServiceWithRepo(mock.NewAdminRepository(), mock.NewLoginAttemptRepository())
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "", "longenough", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateAdmin(ctx, "alice", "short", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateAdmin(ctx, "alice", "longenough", "overlord")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate_Success(t *testing.T) {
	admin := activeAdmin(t, "alice", "correct horse battery")

	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		return admin, nil
	}
	attempts := mock.NewLoginAttemptRepository()
	svc := NewAdminServiceWithRepo(repo, attempts)

	got, err := svc.Authenticate(context.Background(), "alice", "correct horse battery", "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.NotNil(t, got.LastLogin)

	require.Len(t, attempts.Calls["Record"], 1)
	attempt := attempts.Calls["Record"][0].(*models.LoginAttempt)
	assert.True(t, attempt.Success)
	assert.Equal(t, "192.0.2.1", attempt.IPAddress)
	assert.Equal(t, "alice", attempt.Username)

	require.Len(t, repo.Calls["UpdateLastLogin"], 1)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	admin := activeAdmin(t, "alice", "correct horse battery")

	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		return admin, nil
	}
	attempts := mock.NewLoginAttemptRepository()
	svc := NewAdminServiceWithRepo(repo, attempts)

	_, err := svc.Authenticate(context.Background(), "alice", "wrong", "192.0.2.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, attempts.Calls["Record"], 1)
	assert.False(t, attempts.Calls["Record"][0].(*models.LoginAttempt).Success)
}

func TestAuthenticate_UnknownUserSameError(t *testing.T) {
	repo := mock.NewAdminRepository()
	attempts := mock.NewLoginAttemptRepository()
	svc := NewAdminServiceWithRepo(repo, attempts)

	_, err := svc.Authenticate(context.Background(), "nobody", "whatever", "192.0.2.1")

	// Indistinguishable from a wrong password
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, attempts.Calls["Record"], 1)
	assert.False(t, attempts.Calls["Record"][0].(*models.LoginAttempt).Success)
}

func TestAuthenticate_DisabledAccountSameError(t *testing.T) {
	admin := activeAdmin(t, "alice", "correct horse battery")
	admin.IsActive = false

	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		return admin, nil
	}
	attempts := mock.NewLoginAttemptRepository()
	svc := NewAdminServiceWithRepo(repo, attempts)

	_, err := svc.Authenticate(context.Background(), "alice", "correct horse battery", "192.0.2.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, attempts.Calls["Record"], 1)
}

func TestAuthenticate_UnknownUserCostsSameHashingWork(t *testing.T) {
	// Full-cost hash so the wrong-password path is as expensive as production
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcryptCost)
	require.NoError(t, err)
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}

	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		if username == "alice" {
			return admin, nil
		}
		return nil, nil
	}
	svc := NewAdminServiceWithRepo(repo, mock.NewLoginAttemptRepository())
	ctx := context.Background()

	start := time.Now()
	_, err = svc.Authenticate(ctx, "alice", "wrong", "192.0.2.1")
	knownElapsed := time.Since(start)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	start = time.Now()
	_, err = svc.Authenticate(ctx, "nobody", "wrong", "192.0.2.1")
	unknownElapsed := time.Since(start)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// A miss must burn comparable bcrypt work to a wrong password, so
	// login latency is not a username-existence oracle. The bound is loose
	// to stay robust on slow hardware.
	assert.Greater(t, unknownElapsed, knownElapsed/4,
		"unknown user returned in %v vs %v for a wrong password", unknownElapsed, knownElapsed)
}

func TestAuthenticate_DisabledAccountCostsHashingWork(t *testing.T) {
	admin := activeAdmin(t, "alice", "correct horse battery")
	admin.IsActive = false

	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		return admin, nil
	}
	svc := NewAdminServiceWithRepo(repo, mock.NewLoginAttemptRepository())

	start := time.Now()
	_, err := svc.Authenticate(context.Background(), "alice", "correct horse battery", "192.0.2.1")
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrInvalidCredentials)
	// The disabled path runs a full-cost verify; a map lookup alone would
	// return in microseconds
	assert.Greater(t, elapsed, 10*time.Millisecond)
}

func TestAuthenticate_StoreOutageIsNotACredentialFailure(t *testing.T) {
	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		return nil, errors.New("connection refused")
	}
	attempts := mock.NewLoginAttemptRepository()
	svc := NewAdminServiceWithRepo(repo, attempts)

	_, err := svc.Authenticate(context.Background(), "alice", "whatever", "192.0.2.1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	// An outage must not be recorded as a failed attempt: it would pollute
	// the brute-force cluster signal for the caller's IP
	assert.Empty(t, attempts.Calls["Record"])
}

func TestAuthenticate_AttemptStoreFailureDoesNotFailLogin(t *testing.T) {
	admin := activeAdmin(t, "alice", "correct horse battery")

	repo := mock.NewAdminRepository()
	repo.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
		return admin, nil
	}
	attempts := mock.NewLoginAttemptRepository()
	attempts.RecordFunc = func(ctx context.Context, attempt *models.LoginAttempt) error {
		return assert.AnError
	}
	svc := NewAdminServiceWithRepo(repo, attempts)

	_, err := svc.Authenticate(context.Background(), "alice", "correct horse battery", "192.0.2.1")
	assert.NoError(t, err)
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	repo := mock.NewAdminRepository()
	svc := NewAdminServiceWithRepo(repo, mock.NewLoginAttemptRepository())

	err := svc.UpdateRole(context.Background(), uuid.New(), "overlord")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.Calls["UpdateRole"])
}

func TestDeactivate_DelegatesToStore(t *testing.T) {
	repo := mock.NewAdminRepository()
	svc := NewAdminServiceWithRepo(repo, mock.NewLoginAttemptRepository())

	adminID := uuid.New()
	require.NoError(t, svc.Deactivate(context.Background(), adminID))
	require.Len(t, repo.Calls["SetActive"], 1)
	assert.Equal(t, adminID, repo.Calls["SetActive"][0])
}
