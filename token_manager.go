package newsroom

import (
	"time"
)

// Token audiences. Each purpose gets its own audience (and its own secret),
// so a token minted for one flow is structurally rejected by every other.
const (
	AudienceAuth           = "users:auth"
	AudienceRefresh        = "users:refresh"
	AudienceVerification   = "users:verify"
	AudienceForgetPassword = "users:forget-password"
)

// Default lifetimes, matching the platform's historical configuration
const (
	DefaultAccessLifetime       = 7 * 24 * time.Hour
	DefaultVerificationLifetime = time.Hour
	DefaultResetLifetime        = time.Hour
)

// TokenPurpose is one (secret, audience, lifetime) triple. The four triples
// are fixed at construction and constant for the process lifetime.
type TokenPurpose struct {
	Secret   string
	Audience string
	Lifetime time.Duration
}

// TokenManager mints and validates the four purpose-scoped token kinds
type TokenManager struct {
	codec         *TokenCodec
	access        TokenPurpose
	refresh       TokenPurpose
	verification  TokenPurpose
	resetPassword TokenPurpose
	logger        Logger
}

// NewTokenManager wires the purpose triples once, at the composition root.
// The refresh triple is derived: same secret family as access, double the
// lifetime, its own audience.
func NewTokenManager(cfg *Config, logger Logger) *TokenManager {
	if logger == nil {
		logger = defLogger{}
	}

	accessLifetime := cfg.AccessTokenLifetime
	if accessLifetime <= 0 {
		accessLifetime = DefaultAccessLifetime
	}
	verificationLifetime := cfg.VerificationTokenLifetime
	if verificationLifetime <= 0 {
		verificationLifetime = DefaultVerificationLifetime
	}
	resetLifetime := cfg.ResetTokenLifetime
	if resetLifetime <= 0 {
		resetLifetime = DefaultResetLifetime
	}

	return &TokenManager{
		codec: NewTokenCodec(logger),
		access: TokenPurpose{
			Secret:   cfg.JWTSecretKey,
			Audience: AudienceAuth,
			Lifetime: accessLifetime,
		},
		refresh: TokenPurpose{
			Secret:   cfg.JWTSecretKey,
			Audience: AudienceRefresh,
			Lifetime: 2 * accessLifetime,
		},
		verification: TokenPurpose{
			Secret:   cfg.VerificationSecretKey,
			Audience: AudienceVerification,
			Lifetime: verificationLifetime,
		},
		resetPassword: TokenPurpose{
			Secret:   cfg.ResetPasswordSecretKey,
			Audience: AudienceForgetPassword,
			Lifetime: resetLifetime,
		},
	}
}

// Codec exposes the underlying TokenCodec
func (tm *TokenManager) Codec() *TokenCodec {
	return tm.codec
}

// AccessPurpose returns the access triple for decode call sites
func (tm *TokenManager) AccessPurpose() TokenPurpose { return tm.access }

// RefreshPurpose returns the refresh triple
func (tm *TokenManager) RefreshPurpose() TokenPurpose { return tm.refresh }

// VerificationPurpose returns the verification triple
func (tm *TokenManager) VerificationPurpose() TokenPurpose { return tm.verification }

// ResetPasswordPurpose returns the reset triple
func (tm *TokenManager) ResetPasswordPurpose() TokenPurpose { return tm.resetPassword }

func (tm *TokenManager) writeToken(sub string, purpose TokenPurpose, extra map[string]any) (string, error) {
	claims := map[string]any{
		"sub": sub,
		"aud": purpose.Audience,
	}
	for k, v := range extra {
		claims[k] = v
	}

	return tm.codec.Encode(claims, purpose.Secret, purpose.Lifetime)
}

// CreateAccessToken mints a token carrying the account id as subject.
// Issuance is not gated on activity or verification; the service layer
// checks those before it ever gets here.
func (tm *TokenManager) CreateAccessToken(user *User) (string, error) {
	return tm.writeToken(user.ID.String(), tm.access, nil)
}

// CreateRefreshToken wraps the access token string as the refresh subject.
// Validating a refresh token alone cannot yield an account id; the exchange
// must re-decode the embedded access token. This chaining is part of the
// wire contract.
func (tm *TokenManager) CreateRefreshToken(accessToken string) (string, error) {
	return tm.writeToken(accessToken, tm.refresh, nil)
}

// CreateVerificationToken mints an email verification token. Inactive and
// already-verified accounts are refused before any signing happens.
func (tm *TokenManager) CreateVerificationToken(user *User) (string, error) {
	if !user.IsActive {
		return "", ErrUserInactive
	}
	if user.IsVerified {
		return "", ErrUserAlreadyVerified
	}

	return tm.writeToken(user.ID.String(), tm.verification, map[string]any{
		"email": user.Email,
	})
}

// CreateForgetPasswordToken mints a password reset token for active accounts
func (tm *TokenManager) CreateForgetPasswordToken(user *User) (string, error) {
	if !user.IsActive {
		return "", ErrUserInactive
	}

	return tm.writeToken(user.ID.String(), tm.resetPassword, nil)
}

// DecodeToken delegates to the codec; every codec failure is re-signaled as
// the uniform invalid-verify-token error.
func (tm *TokenManager) DecodeToken(token, secret string, audiences []string) (map[string]any, error) {
	claims, err := tm.codec.Decode(token, secret, audiences)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RefreshAccessToken exchanges a refresh token for a fresh access+refresh
// pair. The refresh envelope is decoded with full expiry validation; the
// embedded access token is then unwrapped without enforcing its own exp,
// since the envelope's exp is the refresh deadline.
func (tm *TokenManager) RefreshAccessToken(refreshToken string) (access string, refresh string, err error) {
	claims, err := tm.codec.Decode(refreshToken, tm.refresh.Secret, []string{tm.refresh.Audience})
	if err != nil {
		return "", "", err
	}

	wrapped, _ := claims["sub"].(string)
	if wrapped == "" {
		return "", "", ErrInvalidVerifyToken
	}

	inner, err := tm.codec.DecodeUnverifiedExpiry(wrapped, tm.access.Secret, []string{tm.access.Audience})
	if err != nil {
		return "", "", err
	}

	sub, _ := inner["sub"].(string)
	if sub == "" {
		return "", "", ErrInvalidVerifyToken
	}

	access, err = tm.writeToken(sub, tm.access, nil)
	if err != nil {
		return "", "", err
	}

	refresh, err = tm.CreateRefreshToken(access)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}
