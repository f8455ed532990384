package newsroom

import (
	"context"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupController(t *testing.T) (*APIController, RepositoryManager, func()) {
	t.Helper()

	repo, cleanup := setupTestRepo(t)

	hasher := testHasher()
	tokens := NewTokenManager(testTokenConfig(), nil)
	accounts := NewAccounts(repo, hasher)
	mailer := testMailer(newChanDispatcher())

	controller := NewAPIController(repo, tokens, accounts, mailer,
		WithVerifyRedirect("/welcome"),
	)

	return controller, repo, cleanup
}

func TestLoginPost(t *testing.T) {
	controller, repo, cleanup := setupController(t)
	defer cleanup()

	mustCreateUser(t, repo, testHasher(), "reader", "reader@example.com", "s3cret-enough")

	t.Run("valid credentials return a token pair", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{
			"identifier": "reader",
			"password":   "s3cret-enough",
		}

		require.NoError(t, controller.LoginPost(ctx))
		assert.Equal(t, router.StatusOK, ctx.RecordedStatus)

		pair, ok := ctx.RecordedJSON.(TokenPairResponse)
		require.True(t, ok)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "bearer", pair.TokenType)
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{
			"identifier": "reader",
			"password":   "wrong-password",
		}

		require.NoError(t, controller.LoginPost(ctx))
		assert.Equal(t, router.StatusUnauthorized, ctx.RecordedStatus)

		body, ok := ctx.RecordedJSON.(APIErrorResponse)
		require.True(t, ok)
		assert.Equal(t, TextCodeInvalidLoginCreds, body.ErrorCode)
	})

	t.Run("unknown account is the same 401", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{
			"identifier": "nobody@example.com",
			"password":   "s3cret-enough",
		}

		require.NoError(t, controller.LoginPost(ctx))
		assert.Equal(t, router.StatusUnauthorized, ctx.RecordedStatus)

		body, ok := ctx.RecordedJSON.(APIErrorResponse)
		require.True(t, ok)
		assert.Equal(t, TextCodeInvalidLoginCreds, body.ErrorCode)
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{"identifier": "reader"}

		require.NoError(t, controller.LoginPost(ctx))
		assert.Equal(t, router.StatusBadRequest, ctx.RecordedStatus)
	})
}

func TestRegisterPost(t *testing.T) {
	controller, _, cleanup := setupController(t)
	defer cleanup()

	t.Run("creates and returns the account", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{
			"username": "reader",
			"email":    "reader@example.com",
			"name":     "Avid Reader",
			"password": "s3cret-enough",
		}

		require.NoError(t, controller.RegisterPost(ctx))
		assert.Equal(t, router.StatusCreated, ctx.RecordedStatus)

		user, ok := ctx.RecordedJSON.(*User)
		require.True(t, ok)
		assert.Equal(t, "reader", user.Username)
		assert.False(t, user.IsVerified)
	})

	t.Run("duplicate email is a 406 with the field code", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{
			"username": "otherreader",
			"email":    "reader@example.com",
			"name":     "Other Reader",
			"password": "s3cret-enough",
		}

		require.NoError(t, controller.RegisterPost(ctx))
		assert.Equal(t, router.StatusNotAcceptable, ctx.RecordedStatus)

		body, ok := ctx.RecordedJSON.(APIErrorResponse)
		require.True(t, ok)
		assert.Equal(t, TextCodeEmailAlreadyUsed, body.ErrorCode)
	})

	t.Run("weak password is a 400", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{
			"username": "thirdreader",
			"email":    "third@example.com",
			"name":     "Third Reader",
			"password": "short",
		}

		require.NoError(t, controller.RegisterPost(ctx))
		assert.Equal(t, router.StatusBadRequest, ctx.RecordedStatus)

		body, ok := ctx.RecordedJSON.(APIErrorResponse)
		require.True(t, ok)
		assert.Equal(t, TextCodeInvalidPassword, body.ErrorCode)
	})
}

func TestRefreshPost(t *testing.T) {
	controller, repo, cleanup := setupController(t)
	defer cleanup()

	user := mustCreateUser(t, repo, testHasher(), "reader", "reader@example.com", "s3cret-enough")

	access, err := controller.Tokens.CreateAccessToken(user)
	require.NoError(t, err)
	refresh, err := controller.Tokens.CreateRefreshToken(access)
	require.NoError(t, err)

	t.Run("valid refresh token mints a new pair", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{"refresh_token": refresh}

		require.NoError(t, controller.RefreshPost(ctx))
		assert.Equal(t, router.StatusOK, ctx.RecordedStatus)

		pair, ok := ctx.RecordedJSON.(TokenPairResponse)
		require.True(t, ok)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Payload = map[string]any{"refresh_token": access}

		require.NoError(t, controller.RefreshPost(ctx))
		assert.Equal(t, router.StatusUnauthorized, ctx.RecordedStatus)
	})
}

func TestRequestTokenPostUniformResponse(t *testing.T) {
	controller, repo, cleanup := setupController(t)
	defer cleanup()

	mustCreateUser(t, repo, testHasher(), "reader", "reader@example.com", "s3cret-enough")

	for _, email := range []string{"reader@example.com", "nobody@example.com"} {
		ctx := newTestContext()
		ctx.Payload = map[string]any{"email": email}

		require.NoError(t, controller.RequestTokenPost(ctx))
		assert.Equal(t, router.StatusAccepted, ctx.RecordedStatus)

		body, ok := ctx.RecordedJSON.(AcceptedResponse)
		require.True(t, ok)
		assert.True(t, body.Accepted)
	}
}

func TestVerifyGetAlwaysRedirects(t *testing.T) {
	controller, repo, cleanup := setupController(t)
	defer cleanup()

	user := mustCreateUser(t, repo, testHasher(), "reader", "reader@example.com", "s3cret-enough")

	token, err := controller.Tokens.CreateVerificationToken(user)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"valid token":   token,
		"garbage token": "not.a.token",
		"missing token": "",
	} {
		t.Run(name, func(t *testing.T) {
			ctx := newTestContext()
			if raw != "" {
				ctx.QueryArgs["token"] = raw
			}

			require.NoError(t, controller.VerifyGet(ctx))
			assert.Equal(t, "/welcome", ctx.RecordedRedirect)
			assert.Equal(t, router.StatusSeeOther, ctx.RedirectStatus)
		})
	}

	stored, err := repo.Users().GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestConfirmPasswordChangeGet(t *testing.T) {
	controller, repo, cleanup := setupController(t)
	defer cleanup()

	user := mustCreateUser(t, repo, testHasher(), "reader", "reader@example.com", "s3cret-enough")

	request := NewRequestPasswordChangeHandler(repo, controller.Tokens, controller.Accounts.Hasher(), controller.Mailer)
	require.NoError(t, request.Execute(context.Background(), RequestPasswordChangeMessage{
		Email:       user.Email,
		NewPassword: "brand-new-pass",
	}))

	stored, err := repo.Users().GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)

	t.Run("garbage token is a 400 with the reset code", func(t *testing.T) {
		ctx := newTestContext()
		ctx.QueryArgs["token"] = "not.a.token"

		require.NoError(t, controller.ConfirmPasswordChangeGet(ctx))
		assert.Equal(t, router.StatusBadRequest, ctx.RecordedStatus)

		body, ok := ctx.RecordedJSON.(APIErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "INVALID_RESET_PASSOWORD_TOKEN", body.ErrorCode)
	})

	t.Run("staged token confirms", func(t *testing.T) {
		ctx := newTestContext()
		ctx.QueryArgs["token"] = stored.PasswordChangeToken

		require.NoError(t, controller.ConfirmPasswordChangeGet(ctx))
		assert.Equal(t, router.StatusAccepted, ctx.RecordedStatus)
	})
}

func TestRequireAccessToken(t *testing.T) {
	controller, repo, cleanup := setupController(t)
	defer cleanup()

	user := mustCreateUser(t, repo, testHasher(), "reader", "reader@example.com", "s3cret-enough")

	access, err := controller.Tokens.CreateAccessToken(user)
	require.NoError(t, err)

	var handlerUser *User
	handler := controller.RequireAccessToken()(func(ctx router.Context) error {
		handlerUser = currentUser(ctx)
		return ctx.JSON(router.StatusOK, handlerUser)
	})

	t.Run("valid bearer token reaches the handler", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Headers[router.HeaderAuthorization] = "Bearer " + access

		require.NoError(t, handler(ctx))
		assert.Equal(t, router.StatusOK, ctx.RecordedStatus)
		require.NotNil(t, handlerUser)
		assert.Equal(t, user.ID, handlerUser.ID)
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		ctx := newTestContext()

		require.NoError(t, handler(ctx))
		assert.Equal(t, router.StatusUnauthorized, ctx.RecordedStatus)
	})

	t.Run("garbage token is a 401", func(t *testing.T) {
		ctx := newTestContext()
		ctx.Headers[router.HeaderAuthorization] = "Bearer not.a.token"

		require.NoError(t, handler(ctx))
		assert.Equal(t, router.StatusUnauthorized, ctx.RecordedStatus)
	})

	t.Run("verification token is not an access token", func(t *testing.T) {
		verify, err := controller.Tokens.CreateVerificationToken(
			&User{ID: user.ID, Email: user.Email, IsActive: true},
		)
		require.NoError(t, err)

		ctx := newTestContext()
		ctx.Headers[router.HeaderAuthorization] = "Bearer " + verify

		require.NoError(t, handler(ctx))
		assert.Equal(t, router.StatusUnauthorized, ctx.RecordedStatus)
	})
}
