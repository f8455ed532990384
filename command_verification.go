package newsroom

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RequestVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *RequestVerificationResponse)
}

func (e RequestVerificationMessage) Type() string { return "user.verification_request" }

// RequestVerificationResponse is identical for every branch: the caller
// cannot tell "token sent" from "silently skipped". That is the point.
type RequestVerificationResponse struct {
	Accepted bool
}

type RequestVerificationHandler struct {
	repo   RepositoryManager
	tokens *TokenManager
	mailer *Mailer
	logger Logger
}

func NewRequestVerificationHandler(repo RepositoryManager, tokens *TokenManager, mailer *Mailer) *RequestVerificationHandler {
	return &RequestVerificationHandler{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *RequestVerificationHandler) WithLogger(logger Logger) *RequestVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RequestVerificationHandler) Execute(ctx context.Context, event RequestVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification request")
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestVerificationHandler) execute(ctx context.Context, event RequestVerificationMessage) error {
	resp := &RequestVerificationResponse{Accepted: true}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.Is(err, ErrUserNotExists) {
			return h.respond(event, resp)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification")
	}

	token, err := h.tokens.CreateVerificationToken(user)
	if err != nil {
		// inactive and already-verified collapse to the same accepted
		// response as a miss
		if goerrors.Is(err, ErrUserInactive) || goerrors.Is(err, ErrUserAlreadyVerified) {
			return h.respond(event, resp)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create verification token")
	}

	h.mailer.SendVerificationEmail(user, token)

	return h.respond(event, resp)
}

func (h *RequestVerificationHandler) respond(event RequestVerificationMessage, resp *RequestVerificationResponse) error {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
	return nil
}

type ConfirmVerificationMessage struct {
	Token      string `json:"token"`
	OnResponse func(resp *ConfirmVerificationResponse)
}

func (e ConfirmVerificationMessage) Type() string { return "user.verification_confirm" }

// ConfirmVerificationResponse carries only the redirect target. Decode
// failures, unknown accounts, claim mismatches, and repeat confirmations
// all produce the exact same value as success.
type ConfirmVerificationResponse struct {
	Redirect string
}

type ConfirmVerificationHandler struct {
	repo     RepositoryManager
	tokens   *TokenManager
	redirect string
	logger   Logger
}

func NewConfirmVerificationHandler(repo RepositoryManager, tokens *TokenManager, redirect string) *ConfirmVerificationHandler {
	return &ConfirmVerificationHandler{
		repo:     repo,
		tokens:   tokens,
		redirect: redirect,
		logger:   defLogger{},
	}
}

func (h *ConfirmVerificationHandler) WithLogger(logger Logger) *ConfirmVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmVerificationHandler) Execute(ctx context.Context, event ConfirmVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification confirm")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ConfirmVerificationHandler) execute(ctx context.Context, event ConfirmVerificationMessage) error {
	resp := &ConfirmVerificationResponse{Redirect: h.redirect}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	purpose := h.tokens.VerificationPurpose()

	claims, err := h.tokens.DecodeToken(event.Token, purpose.Secret, []string{purpose.Audience})
	if err != nil {
		return h.respond(event, resp)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return h.respond(event, resp)
	}

	userID, err := ParseUserID(sub)
	if err != nil {
		return h.respond(event, resp)
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByEmailTx(ctx, tx, email)
		if err != nil {
			if goerrors.Is(err, ErrUserNotExists) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification confirm")
		}

		if user.ID != userID {
			return nil
		}

		if user.IsVerified {
			return nil
		}

		return h.repo.Users().MarkVerifiedTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to confirm verification")
	}

	return h.respond(event, resp)
}

func (h *ConfirmVerificationHandler) respond(event ConfirmVerificationMessage, resp *ConfirmVerificationResponse) error {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
	return nil
}
