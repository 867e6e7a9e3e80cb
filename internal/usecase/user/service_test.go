package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/testutil"
	appErrors "shipment-tracker/pkg/errors"
	"shipment-tracker/pkg/utils"
)

func newTestService(t *testing.T) (*Service, *postgres.UserRepository) {
	repo := postgres.NewUserRepository(testutil.NewDB(t))
	return NewService(repo), repo
}

func strPtr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, nil, &RegisterRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "customer", resp.Role)

	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword(stored.PasswordHashed, "password1"))

	_, err = svc.Register(ctx, nil, &RegisterRequest{Username: "alice", Password: "password2"})
	assert.ErrorIs(t, err, domainUser.ErrUserAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"short username", RegisterRequest{Username: "al", Password: "password1"}},
		{"short password", RegisterRequest{Username: "alice", Password: "123"}},
		{"unknown role", RegisterRequest{Username: "alice", Password: "password1", Role: "pilot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, nil, &tt.req)
			assert.True(t, appErrors.IsCode(err, appErrors.CodeValidation), "got %v", err)
		})
	}
}

func TestRegister_AdminRoleRequiresAdminCaller(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, &RegisterRequest{Username: "mallory", Password: "password1", Role: "admin"})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	admin := &domainUser.User{Role: domainUser.RoleAdmin}
	resp, err := svc.Register(ctx, admin, &RegisterRequest{Username: "root2", Password: "password1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Role)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "password1"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root", "other-password"))

	stored, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, domainUser.RoleAdmin, stored.Role)
	assert.True(t, utils.CheckPassword(stored.PasswordHashed, "password1"))
}

func TestUpdate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, nil, &RegisterRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)
	self, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	t.Run("empty patch", func(t *testing.T) {
		_, err := svc.Update(ctx, self, self.ID, &UpdateUserRequest{})
		assert.True(t, appErrors.IsCode(err, appErrors.CodeEmptyUpdate))
	})

	t.Run("self rename and password", func(t *testing.T) {
		resp, err := svc.Update(ctx, self, self.ID, &UpdateUserRequest{Username: strPtr("alice2"), Password: strPtr("new-password")})
		require.NoError(t, err)
		assert.Equal(t, "alice2", resp.Username)

		stored, err := repo.GetByID(ctx, self.ID)
		require.NoError(t, err)
		assert.True(t, utils.CheckPassword(stored.PasswordHashed, "new-password"))
	})

	t.Run("self role escalation", func(t *testing.T) {
		_, err := svc.Update(ctx, self, self.ID, &UpdateUserRequest{Role: strPtr("admin")})
		assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)
	})

	t.Run("other user", func(t *testing.T) {
		other := &domainUser.User{ID: uuid.New(), Role: domainUser.RoleDriver}
		_, err := svc.Update(ctx, other, self.ID, &UpdateUserRequest{Username: strPtr("hijack")})
		assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)
	})

	t.Run("admin changes role", func(t *testing.T) {
		admin := &domainUser.User{ID: uuid.New(), Role: domainUser.RoleAdmin}
		resp, err := svc.Update(ctx, admin, self.ID, &UpdateUserRequest{Role: strPtr("driver")})
		require.NoError(t, err)
		assert.Equal(t, "driver", resp.Role)
	})

	t.Run("missing user", func(t *testing.T) {
		admin := &domainUser.User{ID: uuid.New(), Role: domainUser.RoleAdmin}
		_, err := svc.Update(ctx, admin, uuid.New(), &UpdateUserRequest{Role: strPtr("driver")})
		assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
	})
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, nil, &RegisterRequest{Username: "alice", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domainUser.ErrUserNotFound)
}
