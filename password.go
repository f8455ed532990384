package newsroom

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2Params are the argon2id cost parameters baked into each hash
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follow the RFC 9106 low-memory recommendation
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2Hasher hashes with argon2id and verifies both argon2id and legacy
// bcrypt hashes. Verification of an outdated hash (stale argon2 parameters
// or any bcrypt hash) reports a replacement hash through VerifyAndUpdate so
// stored credentials upgrade on the next successful login.
type Argon2Hasher struct {
	params Argon2Params
}

var _ PasswordHasher = (*Argon2Hasher)(nil)

// NewPasswordHasher returns an Argon2Hasher using DefaultArgon2Params
func NewPasswordHasher() *Argon2Hasher {
	return &Argon2Hasher{params: DefaultArgon2Params}
}

// NewPasswordHasherWithParams returns an Argon2Hasher with custom costs
func NewPasswordHasherWithParams(params Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

// Hash will generate a salted argon2id hash in PHC string format
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	return h.hashWithSalt(password, salt), nil
}

func (h *Argon2Hasher) hashWithSalt(password string, salt []byte) string {
	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// Verify will validate the given cleartext password against the stored
// hash. Any mismatch, malformed hash, or unknown algorithm returns false,
// never an error.
func (h *Argon2Hasher) Verify(password, hash string) bool {
	ok, _ := h.verify(password, hash)
	return ok
}

// VerifyAndUpdate verifies and returns a fresh hash when the stored one
// used outdated parameters. Callers persist the new hash when non-empty.
func (h *Argon2Hasher) VerifyAndUpdate(password, hash string) (bool, string) {
	ok, outdated := h.verify(password, hash)
	if !ok {
		return false, ""
	}

	if !outdated {
		return true, ""
	}

	upgraded, err := h.Hash(password)
	if err != nil {
		return true, ""
	}

	return true, upgraded
}

// DummyHash burns one full argon2id round. Login paths call this when no
// user matched so the miss costs the same as a real verification.
func (h *Argon2Hasher) DummyHash() {
	salt := make([]byte, h.params.SaltLength)
	_ = h.hashWithSalt(uuid.NewString(), salt)
}

func (h *Argon2Hasher) verify(password, hash string) (ok, outdated bool) {
	if password == "" || hash == "" {
		return false, false
	}

	if strings.HasPrefix(hash, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		return err == nil, err == nil
	}

	params, salt, key, err := decodeArgon2Hash(hash)
	if err != nil {
		return false, false
	}

	candidate := argon2.IDKey(
		[]byte(password),
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		uint32(len(key)),
	)

	if subtle.ConstantTimeCompare(candidate, key) != 1 {
		return false, false
	}

	return true, params != h.params
}

func decodeArgon2Hash(hash string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, err
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("incompatible argon2 version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, err
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, err
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}

// RandomPasswordHash is a throwaway hash for placeholder accounts
func RandomPasswordHash() string {
	h := NewPasswordHasher()

	hash, err := h.Hash(uuid.NewString())
	if err != nil {
		return RandomPasswordHash()
	}

	return hash
}
