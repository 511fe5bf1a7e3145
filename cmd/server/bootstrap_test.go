package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/bankcards-api/internal/config"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminConfig() config.AuthConfig {
	return config.AuthConfig{
		BootstrapAdminUsername: "admin",
		BootstrapAdminEmail:    "admin@bank.example",
		BootstrapAdminPassword: "changeme123",
	}
}

func TestBootstrapAdmin_Disabled(t *testing.T) {
	users := new(mocks.MockUserStore)

	err := bootstrapAdmin(context.Background(), users, &mocks.MockPasswordHasher{}, config.AuthConfig{}, discardLogger())

	require.NoError(t, err)
	users.AssertNotCalled(t, "ExistsByUsername", mock.Anything, mock.Anything)
}

func TestBootstrapAdmin_CreatesAdmin(t *testing.T) {
	users := new(mocks.MockUserStore)
	users.On("ExistsByUsername", mock.Anything, "admin").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "admin" &&
			u.Email == "admin@bank.example" &&
			u.Role == domain.RoleAdmin &&
			u.Enabled &&
			u.HashedPassword == "hashed:changeme123"
	})).Return(nil)

	err := bootstrapAdmin(context.Background(), users, &mocks.MockPasswordHasher{}, adminConfig(), discardLogger())

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestBootstrapAdmin_AlreadyPresent(t *testing.T) {
	users := new(mocks.MockUserStore)
	users.On("ExistsByUsername", mock.Anything, "admin").Return(true, nil)

	err := bootstrapAdmin(context.Background(), users, &mocks.MockPasswordHasher{}, adminConfig(), discardLogger())

	require.NoError(t, err)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBootstrapAdmin_Errors(t *testing.T) {
	t.Run("missing password", func(t *testing.T) {
		cfg := adminConfig()
		cfg.BootstrapAdminPassword = ""

		err := bootstrapAdmin(context.Background(), new(mocks.MockUserStore), &mocks.MockPasswordHasher{}, cfg, discardLogger())
		assert.Error(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		users := new(mocks.MockUserStore)
		users.On("ExistsByUsername", mock.Anything, "admin").Return(false, errors.New("db down"))

		err := bootstrapAdmin(context.Background(), users, &mocks.MockPasswordHasher{}, adminConfig(), discardLogger())
		assert.ErrorContains(t, err, "failed to check bootstrap admin")
	})
}
