package newsroom

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RequestPasswordChangeMessage struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
	OnResponse  func(resp *RequestPasswordChangeResponse)
}

func (e RequestPasswordChangeMessage) Type() string { return "user.password_change_request" }

// RequestPasswordChangeResponse does not distinguish "staged" from
// "unknown email"; both come back accepted.
type RequestPasswordChangeResponse struct {
	Accepted bool
}

type RequestPasswordChangeHandler struct {
	repo   RepositoryManager
	tokens *TokenManager
	hasher PasswordHasher
	mailer *Mailer
	logger Logger
}

func NewRequestPasswordChangeHandler(repo RepositoryManager, tokens *TokenManager, hasher PasswordHasher, mailer *Mailer) *RequestPasswordChangeHandler {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}
	return &RequestPasswordChangeHandler{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *RequestPasswordChangeHandler) WithLogger(logger Logger) *RequestPasswordChangeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RequestPasswordChangeHandler) Execute(ctx context.Context, event RequestPasswordChangeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password change request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestPasswordChangeHandler) execute(ctx context.Context, event RequestPasswordChangeMessage) error {
	resp := &RequestPasswordChangeResponse{Accepted: true}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.Is(err, ErrUserNotExists) {
			return h.respond(event, resp)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
	}

	token, err := h.tokens.CreateForgetPasswordToken(user)
	if err != nil {
		return err
	}

	// the new password is hashed and staged before confirmation; it only
	// becomes the active password once the token round-trips
	pendingHash, err := h.hasher.Hash(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	expiresAt := time.Now().UTC().Add(h.tokens.ResetPasswordPurpose().Lifetime)

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// overwrites any earlier pending request; the superseded token
		// keeps failing the correlation check even while unexpired
		_, err := h.repo.Users().StagePasswordChangeTx(ctx, tx, user.ID, pendingHash, token, expiresAt)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to stage password change")
	}

	h.mailer.SendPasswordResetEmail(user, token)

	return h.respond(event, resp)
}

func (h *RequestPasswordChangeHandler) respond(event RequestPasswordChangeMessage, resp *RequestPasswordChangeResponse) error {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
	return nil
}

type ConfirmPasswordChangeMessage struct {
	Token string `json:"token"`
}

func (e ConfirmPasswordChangeMessage) Type() string { return "user.password_change_confirm" }

type ConfirmPasswordChangeHandler struct {
	repo   RepositoryManager
	tokens *TokenManager
	logger Logger
}

func NewConfirmPasswordChangeHandler(repo RepositoryManager, tokens *TokenManager) *ConfirmPasswordChangeHandler {
	return &ConfirmPasswordChangeHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *ConfirmPasswordChangeHandler) WithLogger(logger Logger) *ConfirmPasswordChangeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmPasswordChangeHandler) Execute(ctx context.Context, event ConfirmPasswordChangeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password change confirm")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmPasswordChangeHandler) execute(ctx context.Context, event ConfirmPasswordChangeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	purpose := h.tokens.ResetPasswordPurpose()

	claims, err := h.tokens.DecodeToken(event.Token, purpose.Secret, []string{purpose.Audience})
	if err != nil {
		return ErrInvalidResetToken
	}

	// the codec already validated exp and aud; re-check both against the
	// raw claims so a codec regression cannot silently widen the window
	if !selfConsistentResetClaims(claims, purpose.Audience) {
		return ErrInvalidResetToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := ParseUserID(sub)
	if err != nil {
		return ErrInvalidResetToken
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// re-read inside the transaction: the stored correlation token is
		// the current one, not whatever the caller saw earlier
		user, err := h.repo.Users().GetByUserIDTx(ctx, tx, userID)
		if err != nil {
			if goerrors.Is(err, ErrUserNotExists) {
				return ErrInvalidResetToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change confirm")
		}

		if user.PasswordChangeToken != event.Token {
			return ErrInvalidResetToken
		}

		if user.PasswordChangeTokenExpiry == nil || time.Now().UTC().After(user.PasswordChangeTokenExpiry.UTC()) {
			return ErrInvalidResetToken
		}

		return h.repo.Users().PromotePendingPasswordTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm password change")
	}

	return nil
}

func selfConsistentResetClaims(claims map[string]any, audience string) bool {
	exp, ok := claims["exp"].(float64)
	if !ok || int64(exp) < time.Now().UTC().Unix() {
		return false
	}

	switch aud := claims["aud"].(type) {
	case string:
		return aud == audience
	case []any:
		for _, a := range aud {
			if s, ok := a.(string); ok && s == audience {
				return true
			}
		}
	}

	return false
}
