package newsroom

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenCodec signs and verifies compact HS256 claim sets. It is the only
// place tokens are encoded or decoded; TokenManager layers purpose scoping
// on top.
type TokenCodec struct {
	logger Logger
}

// NewTokenCodec creates a new TokenCodec instance
func NewTokenCodec(logger Logger) *TokenCodec {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenCodec{logger: logger}
}

// Encode adds exp = now + expiresIn (UTC) to a copy of the claims, signs
// with the secret, and returns the compact token string.
func (c *TokenCodec) Encode(claims map[string]any, secret string, expiresIn time.Duration) (string, error) {
	payload := jwt.MapClaims{}
	for k, v := range claims {
		payload[k] = v
	}
	payload["exp"] = jwt.NewNumericDate(time.Now().UTC().Add(expiresIn))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode verifies signature, expiry, and audience membership, and returns
// the claims map. Signature, structural, expiry, and audience failures all
// surface as ErrInvalidVerifyToken so callers cannot branch on the cause.
func (c *TokenCodec) Decode(tokenString, secret string, audiences []string) (map[string]any, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
	}
	if len(audiences) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(audiences...))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			c.logger.Error("TokenCodec decode encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, parserOptions...)

	if err != nil {
		return nil, goerrors.Wrap(err, ErrInvalidVerifyToken.Category, ErrInvalidVerifyToken.Message).
			WithTextCode(ErrInvalidVerifyToken.TextCode)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		c.logger.Error("TokenCodec decode could not map claims")
		return nil, ErrInvalidVerifyToken
	}

	return claims, nil
}

// DecodeUnverifiedExpiry parses without enforcing exp. The refresh exchange
// uses it to unwrap the embedded access token, whose own expiry is
// superseded by the refresh envelope's.
func (c *TokenCodec) DecodeUnverifiedExpiry(tokenString, secret string, audiences []string) (map[string]any, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithoutClaimsValidation(),
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, parserOptions...)

	if err != nil {
		return nil, goerrors.Wrap(err, ErrInvalidVerifyToken.Category, ErrInvalidVerifyToken.Message).
			WithTextCode(ErrInvalidVerifyToken.TextCode)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidVerifyToken
	}

	if len(audiences) > 0 && !claimHasAudience(claims, audiences) {
		return nil, ErrInvalidVerifyToken
	}

	return claims, nil
}

func claimHasAudience(claims jwt.MapClaims, audiences []string) bool {
	aud, err := claims.GetAudience()
	if err != nil {
		return false
	}

	for _, have := range aud {
		for _, want := range audiences {
			if have == want {
				return true
			}
		}
	}

	return false
}
