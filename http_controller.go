package newsroom

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

const userLocalsKey = "user"

// APIErrorResponse is the JSON error body. error_code carries the text
// code clients are expected to match on.
type APIErrorResponse struct {
	ErrorCode string   `json:"error_code"`
	Messages  []string `json:"messages,omitempty"`
}

// TokenPairResponse is the login and refresh success body
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AcceptedResponse is the uniform 202 body for the anti-enumeration
// endpoints: request-token and request-password-change always return it.
type AcceptedResponse struct {
	Accepted bool `json:"accepted"`
}

type APIControllerRoutes struct {
	Login                 string
	Register              string
	Refresh               string
	RequestToken          string
	Verify                string
	RequestPasswordChange string
	ConfirmPasswordChange string
	Me                    string
	News                  string
	Categories            string
}

type APIController struct {
	Debug          bool
	Logger         Logger
	Repo           RepositoryManager
	Tokens         *TokenManager
	Accounts       *Accounts
	Mailer         *Mailer
	Routes         *APIControllerRoutes
	VerifyRedirect string
}

type APIControllerOption func(*APIController) *APIController

func WithControllerLogger(logger Logger) APIControllerOption {
	return func(c *APIController) *APIController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) APIControllerOption {
	return func(c *APIController) *APIController {
		c.Debug = debug
		return c
	}
}

func WithVerifyRedirect(redirect string) APIControllerOption {
	return func(c *APIController) *APIController {
		if redirect != "" {
			c.VerifyRedirect = redirect
		}
		return c
	}
}

func NewAPIController(repo RepositoryManager, tokens *TokenManager, accounts *Accounts, mailer *Mailer, opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger:         defLogger{},
		Repo:           repo,
		Tokens:         tokens,
		Accounts:       accounts,
		Mailer:         mailer,
		VerifyRedirect: "/",
		Routes: &APIControllerRoutes{
			Login:                 "/auth/login",
			Register:              "/auth/register",
			Refresh:               "/auth/refresh",
			RequestToken:          "/auth/request-token",
			Verify:                "/auth/verify",
			RequestPasswordChange: "/auth/request-password-change",
			ConfirmPasswordChange: "/auth/confirm-password-change",
			Me:                    "/me",
			News:                  "/news",
			Categories:            "/categories",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in api controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenManager in api controller...")
	}

	if c.Accounts == nil {
		panic("Missing account service in api controller...")
	}

	return c
}

func RegisterAPIRoutes[T any](app router.Router[T], controller *APIController) {
	protected := controller.RequireAccessToken()

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")
	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register")
	app.Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("auth.refresh")

	app.Post(controller.Routes.RequestToken, controller.RequestTokenPost).
		SetName("auth.request-token")
	app.Get(controller.Routes.Verify, controller.VerifyGet).
		SetName("auth.verify")

	app.Post(controller.Routes.RequestPasswordChange, controller.RequestPasswordChangePost).
		SetName("auth.pwd-change.request")
	app.Get(controller.Routes.ConfirmPasswordChange, controller.ConfirmPasswordChangeGet).
		SetName("auth.pwd-change.confirm")

	app.Get(controller.Routes.Me, protected(controller.MeGet)).
		SetName("me.get")
	app.Patch(controller.Routes.Me, protected(controller.MePatch)).
		SetName("me.patch")
	app.Delete(controller.Routes.Me, protected(controller.MeDelete)).
		SetName("me.delete")

	app.Get(controller.Routes.News, controller.NewsList).
		SetName("news.list")
	app.Get(controller.Routes.News+"/:slug", controller.NewsGet).
		SetName("news.get")
	app.Post(controller.Routes.News, protected(controller.NewsCreate)).
		SetName("news.create")
	app.Patch(controller.Routes.News+"/:slug", protected(controller.NewsUpdate)).
		SetName("news.update")
	app.Delete(controller.Routes.News+"/:slug", protected(controller.NewsDelete)).
		SetName("news.delete")

	app.Get(controller.Routes.Categories, controller.CategoryList).
		SetName("categories.list")
	app.Get(controller.Routes.Categories+"/:slug", controller.CategoryGet).
		SetName("categories.get")
	app.Post(controller.Routes.Categories, protected(controller.CategoryCreate)).
		SetName("categories.create")
	app.Patch(controller.Routes.Categories+"/:slug", protected(controller.CategoryUpdate)).
		SetName("categories.update")
	app.Delete(controller.Routes.Categories+"/:slug", protected(controller.CategoryDelete)).
		SetName("categories.delete")
}

// RequireAccessToken decodes the bearer token with the access purpose,
// loads the account, and stores it in Locals. Any failure is a uniform 401.
func (a *APIController) RequireAccessToken() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := bearerToken(ctx)
			if err != nil {
				return a.unauthorized(ctx)
			}

			purpose := a.Tokens.AccessPurpose()
			claims, err := a.Tokens.DecodeToken(raw, purpose.Secret, []string{purpose.Audience})
			if err != nil {
				return a.unauthorized(ctx)
			}

			sub, _ := claims["sub"].(string)
			user, err := a.Accounts.GetByID(ctx.Context(), sub)
			if err != nil {
				return a.unauthorized(ctx)
			}

			if !user.IsActive {
				return a.unauthorized(ctx)
			}

			ctx.Locals(userLocalsKey, user)

			return next(ctx)
		}
	}
}

func bearerToken(ctx router.Context) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := "Bearer"
	if len(header) > len(scheme)+1 && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):]), nil
	}
	return "", ErrInvalidVerifyToken
}

func (a *APIController) unauthorized(ctx router.Context) error {
	return ctx.JSON(router.StatusUnauthorized, APIErrorResponse{
		ErrorCode: TextCodeInvalidToken,
	})
}

func currentUser(ctx router.Context) *User {
	user, _ := ctx.Locals(userLocalsKey).(*User)
	return user
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidLoginCreds, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	user, err := a.Accounts.Authenticate(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, APIErrorResponse{
			ErrorCode: TextCodeInvalidLoginCreds,
		})
	}

	return a.tokenPair(ctx, user)
}

func (a *APIController) tokenPair(ctx router.Context, user *User) error {
	access, err := a.Tokens.CreateAccessToken(user)
	if err != nil {
		return a.respondError(ctx, err)
	}

	refresh, err := a.Tokens.CreateRefreshToken(access)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// RegisterRequest payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Name     string `form:"name" json:"name"`
	Phone    string `form:"phone_number" json:"phone_number"`
	Password string `form:"password" json:"password"`
}

// Validate runs shape checks; the register command applies the full
// username/password policy on top.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *APIController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidEmail, err)
	}

	var user *User

	req := RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Name:     payload.Name,
		Phone:    payload.Phone,
		Password: payload.Password,
		OnResponse: func(u *User) {
			user = u
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Accounts.Hasher()).
		WithPhoneRegion(a.Accounts.PhoneRegion())

	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: %v", err)
		return a.respondError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= REGISTERED ======")
		fmt.Println(print.MaybePrettyJSON(user))
		fmt.Println("=========================")
	}

	return ctx.JSON(router.StatusCreated, user)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *APIController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidToken, err)
	}

	access, refresh, err := a.Tokens.RefreshAccessToken(payload.RefreshToken)
	if err != nil {
		return ctx.JSON(router.StatusUnauthorized, APIErrorResponse{
			ErrorCode: TextCodeInvalidToken,
		})
	}

	return ctx.JSON(router.StatusOK, TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// EmailRequest payload for the verification request endpoint
type EmailRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// RequestTokenPost always answers 202: callers cannot distinguish a sent
// verification email from a silently skipped one.
func (a *APIController) RequestTokenPost(ctx router.Context) error {
	payload := new(EmailRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidEmail, err)
	}

	req := RequestVerificationMessage{Email: payload.Email}

	handler := NewRequestVerificationHandler(a.Repo, a.Tokens, a.Mailer).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("request verification error: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusAccepted, AcceptedResponse{Accepted: true})
}

// VerifyGet redirects to the same target on every outcome
func (a *APIController) VerifyGet(ctx router.Context) error {
	token := ctx.Query("token", "")

	resp := &ConfirmVerificationResponse{Redirect: a.VerifyRedirect}

	req := ConfirmVerificationMessage{
		Token: token,
		OnResponse: func(r *ConfirmVerificationResponse) {
			resp = r
		},
	}

	handler := NewConfirmVerificationHandler(a.Repo, a.Tokens, a.VerifyRedirect).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("confirm verification error: %v", err)
	}

	return ctx.Redirect(resp.Redirect, router.StatusSeeOther)
}

// PasswordChangeRequest payload
type PasswordChangeRequest struct {
	Email       string `form:"email" json:"email"`
	NewPassword string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r PasswordChangeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// RequestPasswordChangePost stages the new password and answers 202 no
// matter whether the account exists or is active.
func (a *APIController) RequestPasswordChangePost(ctx router.Context) error {
	payload := new(PasswordChangeRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidEmail, err)
	}

	req := RequestPasswordChangeMessage{
		Email:       payload.Email,
		NewPassword: payload.NewPassword,
	}

	handler := NewRequestPasswordChangeHandler(a.Repo, a.Tokens, a.Accounts.Hasher(), a.Mailer).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), req); err != nil {
		if goerrors.Is(err, ErrUserInactive) {
			return ctx.JSON(router.StatusAccepted, AcceptedResponse{Accepted: true})
		}
		// weak passwords are the single distinguishable failure here
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return a.respondError(ctx, err)
		}
		a.Logger.Error("request password change error: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusAccepted, AcceptedResponse{Accepted: true})
}

func (a *APIController) ConfirmPasswordChangeGet(ctx router.Context) error {
	token := ctx.Query("token", "")

	handler := NewConfirmPasswordChangeHandler(a.Repo, a.Tokens).
		WithLogger(a.Logger)

	if err := handler.Execute(ctx.Context(), ConfirmPasswordChangeMessage{Token: token}); err != nil {
		if goerrors.Is(err, ErrInvalidResetToken) {
			return ctx.JSON(router.StatusBadRequest, APIErrorResponse{
				ErrorCode: TextCodeInvalidResetToken,
			})
		}
		a.Logger.Error("confirm password change error: %v", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusAccepted, AcceptedResponse{Accepted: true})
}

func (a *APIController) MeGet(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, currentUser(ctx))
}

// ProfilePatchRequest payload; absent fields stay untouched
type ProfilePatchRequest struct {
	Email     *string `form:"email" json:"email"`
	Username  *string `form:"username" json:"username"`
	Password  *string `form:"password" json:"password"`
	Name      *string `form:"name" json:"name"`
	Phone     *string `form:"phone_number" json:"phone_number"`
	AvatarURL *string `form:"avatar_url" json:"avatar_url"`
}

func (a *APIController) MePatch(ctx router.Context) error {
	payload := new(ProfilePatchRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	updated, err := a.Accounts.UpdateProfile(ctx.Context(), currentUser(ctx), ProfileUpdate{
		Email:     payload.Email,
		Username:  payload.Username,
		Password:  payload.Password,
		Name:      payload.Name,
		Phone:     payload.Phone,
		AvatarURL: payload.AvatarURL,
	})
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

func (a *APIController) MeDelete(ctx router.Context) error {
	if err := a.Accounts.Delete(ctx.Context(), currentUser(ctx)); err != nil {
		return a.respondError(ctx, err)
	}
	return ctx.NoContent(router.StatusNoContent)
}

func (a *APIController) NewsList(ctx router.Context) error {
	filter := NewsFilter{
		PublishedOnly: ctx.Query("published", "") == "true",
		Limit:         ctx.QueryInt("limit", 50),
		Offset:        ctx.QueryInt("offset", 0),
	}

	if raw := ctx.Query("category_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return a.respondError(ctx, ErrInvalidID)
		}
		filter.CategoryID = &id
	}

	if raw := ctx.Query("author_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return a.respondError(ctx, ErrInvalidID)
		}
		filter.AuthorID = &id
	}

	records, err := a.Repo.News().List(ctx.Context(), filter)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) NewsGet(ctx router.Context) error {
	record, err := a.Repo.News().GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return a.respondError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, record)
}

// NewsPayload is both the create and update body; on update empty fields
// keep their stored values.
type NewsPayload struct {
	Title      string `form:"title" json:"title"`
	Content    string `form:"content" json:"content"`
	ImageURL   string `form:"image_url" json:"image_url"`
	Published  *bool  `form:"published" json:"published"`
	CategoryID string `form:"category_id" json:"category_id"`
}

// Validate will run validation rules
func (r NewsPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.CategoryID, validation.Required, is.UUIDv4),
	)
}

func (a *APIController) NewsCreate(ctx router.Context) error {
	payload := new(NewsPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidToken, err)
	}

	categoryID, err := uuid.Parse(payload.CategoryID)
	if err != nil {
		return a.respondError(ctx, ErrInvalidID)
	}

	if _, err := a.Repo.Categories().GetByID(ctx.Context(), categoryID.String()); err != nil {
		return a.respondError(ctx, err)
	}

	author := currentUser(ctx)

	record := &News{
		Title:      payload.Title,
		Slug:       Slugify(payload.Title),
		Content:    payload.Content,
		ImageURL:   payload.ImageURL,
		AuthorID:   &author.ID,
		CategoryID: &categoryID,
	}

	if payload.Published != nil {
		record.Published = *payload.Published
	}

	created, err := a.Repo.News().Create(ctx.Context(), record)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created)
}

func (a *APIController) NewsUpdate(ctx router.Context) error {
	record, err := a.Repo.News().GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return a.respondError(ctx, err)
	}

	if err := a.requireAuthor(ctx, record); err != nil {
		return a.respondError(ctx, err)
	}

	payload := new(NewsPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if payload.Title != "" {
		record.Title = payload.Title
		record.Slug = Slugify(payload.Title)
	}
	if payload.Content != "" {
		record.Content = payload.Content
	}
	if payload.ImageURL != "" {
		record.ImageURL = payload.ImageURL
	}
	if payload.Published != nil {
		record.Published = *payload.Published
	}
	if payload.CategoryID != "" {
		categoryID, err := uuid.Parse(payload.CategoryID)
		if err != nil {
			return a.respondError(ctx, ErrInvalidID)
		}
		if _, err := a.Repo.Categories().GetByID(ctx.Context(), categoryID.String()); err != nil {
			return a.respondError(ctx, err)
		}
		record.CategoryID = &categoryID
	}

	updated, err := a.Repo.News().Update(ctx.Context(), record)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

func (a *APIController) NewsDelete(ctx router.Context) error {
	record, err := a.Repo.News().GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return a.respondError(ctx, err)
	}

	if err := a.requireAuthor(ctx, record); err != nil {
		return a.respondError(ctx, err)
	}

	if err := a.Repo.News().Remove(ctx.Context(), record); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.NoContent(router.StatusNoContent)
}

func (a *APIController) requireAuthor(ctx router.Context, record *News) error {
	user := currentUser(ctx)
	if record.AuthorID == nil || user == nil || *record.AuthorID != user.ID {
		return goerrors.New("only the author can modify this article", goerrors.CategoryAuthz).
			WithTextCode("NOT_ARTICLE_AUTHOR")
	}
	return nil
}

func (a *APIController) CategoryList(ctx router.Context) error {
	records, err := a.Repo.Categories().List(ctx.Context())
	if err != nil {
		return a.respondError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, records)
}

func (a *APIController) CategoryGet(ctx router.Context) error {
	record, err := a.Repo.Categories().GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return a.respondError(ctx, err)
	}
	return ctx.JSON(router.StatusOK, record)
}

// CategoryPayload is the create/update body
type CategoryPayload struct {
	Name string `form:"name" json:"name"`
}

// Validate will run validation rules
func (r CategoryPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
	)
}

func (a *APIController) CategoryCreate(ctx router.Context) error {
	payload := new(CategoryPayload)

	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidToken, err)
	}

	created, err := a.Repo.Categories().Create(ctx.Context(), &Category{
		Name: payload.Name,
		Slug: Slugify(payload.Name),
	})
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, created)
}

func (a *APIController) CategoryUpdate(ctx router.Context) error {
	record, err := a.Repo.Categories().GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return a.respondError(ctx, err)
	}

	payload := new(CategoryPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationFailed(ctx, TextCodeInvalidToken, err)
	}

	record.Name = payload.Name
	record.Slug = Slugify(payload.Name)

	updated, err := a.Repo.Categories().Update(ctx.Context(), record)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, updated)
}

func (a *APIController) CategoryDelete(ctx router.Context) error {
	record, err := a.Repo.Categories().GetBySlug(ctx.Context(), ctx.Param("slug"))
	if err != nil {
		return a.respondError(ctx, err)
	}

	if err := a.Repo.Categories().Remove(ctx.Context(), record); err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.NoContent(router.StatusNoContent)
}

func (a *APIController) badPayload(ctx router.Context, err error) error {
	a.Logger.Error("failed to parse payload: %v", err)
	return ctx.JSON(router.StatusBadRequest, APIErrorResponse{
		ErrorCode: "INVALID_PAYLOAD",
		Messages:  []string{err.Error()},
	})
}

func (a *APIController) validationFailed(ctx router.Context, textCode string, err error) error {
	return ctx.JSON(router.StatusBadRequest, APIErrorResponse{
		ErrorCode: textCode,
		Messages:  []string{err.Error()},
	})
}

// respondError maps rich error categories to HTTP statuses and renders
// the error_code body clients match on.
func (a *APIController) respondError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		a.Logger.Error("unhandled error: %v", err)
		return ctx.JSON(router.StatusInternalServerError, APIErrorResponse{
			ErrorCode: "INTERNAL_ERROR",
		})
	}

	status := router.StatusInternalServerError

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		status = router.StatusBadRequest
	case goerrors.CategoryAuth:
		status = router.StatusUnauthorized
	case goerrors.CategoryAuthz:
		status = router.StatusForbidden
	case goerrors.CategoryNotFound:
		status = router.StatusNotFound
	case goerrors.CategoryConflict:
		status = router.StatusNotAcceptable
	}

	body := APIErrorResponse{ErrorCode: richErr.TextCode}
	if richErr.Message != "" {
		body.Messages = []string{richErr.Message}
	}
	if msgs, ok := richErr.Metadata["messages"].([]string); ok {
		body.Messages = msgs
	}

	if status == router.StatusInternalServerError {
		a.Logger.Error("internal error: %v", err)
	}

	return ctx.JSON(status, body)
}
