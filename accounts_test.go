package newsroom

import (
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthenticate(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	hasher := testHasher()
	service := NewAccounts(repo, hasher)

	user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")

	ctx := context.Background()

	t.Run("by username", func(t *testing.T) {
		got, err := service.Authenticate(ctx, "reader", "s3cret-enough")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := service.Authenticate(ctx, "reader@example.com", "s3cret-enough")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("email lookup is case insensitive", func(t *testing.T) {
		got, err := service.Authenticate(ctx, "Reader@Example.COM", "s3cret-enough")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Authenticate(ctx, "reader", "wrong-password")
		assert.True(t, goerrors.Is(err, ErrInvalidLoginCredentials))
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := service.Authenticate(ctx, "nobody99", "s3cret-enough")
		assert.True(t, goerrors.Is(err, ErrInvalidLoginCredentials))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Authenticate(ctx, "nobody@example.com", "s3cret-enough")
		assert.True(t, goerrors.Is(err, ErrInvalidLoginCredentials))
	})
}

func TestAuthenticateUpgradesLegacyHash(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	hasher := testHasher()
	service := NewAccounts(repo, hasher)

	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("s3cret-enough"), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := repo.Users().Create(ctx, &User{
		Username:       "legacyuser",
		Email:          "legacy@example.com",
		Name:           "Legacy",
		HashedPassword: string(legacy),
		IsActive:       true,
	})
	require.NoError(t, err)

	got, err := service.Authenticate(ctx, "legacyuser", "s3cret-enough")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.HashedPassword, "$argon2id$"))

	// the upgraded hash was persisted; next login verifies against it
	stored, err := repo.Users().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.HashedPassword, "$argon2id$"))
	assert.True(t, hasher.Verify("s3cret-enough", stored.HashedPassword))
}

func TestGetByID(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	hasher := testHasher()
	service := NewAccounts(repo, hasher)

	user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")

	ctx := context.Background()

	got, err := service.GetByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = service.GetByID(ctx, "not-a-uuid")
	assert.True(t, IsInvalidIDError(err))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	strptr := func(s string) *string { return &s }

	t.Run("name and avatar", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		hasher := testHasher()
		service := NewAccounts(repo, hasher)
		user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")

		updated, err := service.UpdateProfile(ctx, user, ProfileUpdate{
			Name:      strptr("New Name"),
			AvatarURL: strptr("https://example.com/avatar.png"),
		})
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.Name)
		assert.Equal(t, "https://example.com/avatar.png", updated.AvatarURL)
	})

	t.Run("email change resets verification", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		hasher := testHasher()
		service := NewAccounts(repo, hasher)
		user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")

		require.NoError(t, repo.Users().MarkVerified(ctx, user.ID))

		updated, err := service.UpdateProfile(ctx, user, ProfileUpdate{
			Email: strptr("new-address@example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "new-address@example.com", updated.Email)
		assert.False(t, updated.IsVerified)
	})

	t.Run("username collision", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		hasher := testHasher()
		service := NewAccounts(repo, hasher)
		user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")
		mustCreateUser(t, repo, hasher, "editor", "editor@example.com", "s3cret-enough")

		_, err := service.UpdateProfile(ctx, user, ProfileUpdate{
			Username: strptr("editor"),
		})

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, TextCodeUsernameAlreadyUse, richErr.TextCode)
	})

	t.Run("password change takes effect immediately", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		hasher := testHasher()
		service := NewAccounts(repo, hasher)
		user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")

		_, err := service.UpdateProfile(ctx, user, ProfileUpdate{
			Password: strptr("brand-new-pass"),
		})
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, "reader", "brand-new-pass")
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, "reader", "s3cret-enough")
		assert.True(t, goerrors.Is(err, ErrInvalidLoginCredentials))
	})

	t.Run("weak password rejected", func(t *testing.T) {
		repo, cleanup := setupTestRepo(t)
		defer cleanup()

		hasher := testHasher()
		service := NewAccounts(repo, hasher)
		user := mustCreateUser(t, repo, hasher, "reader", "reader@example.com", "s3cret-enough")

		_, err := service.UpdateProfile(ctx, user, ProfileUpdate{
			Password: strptr("short"),
		})

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, TextCodeInvalidPassword, richErr.TextCode)
	})
}
