package newsroom

import (
	"os"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Config is built once at startup by the composition root and passed by
// reference into TokenManager and the account service. There is no global
// settings lookup anywhere in the package.
type Config struct {
	ProjectName string
	ServerAddr  string
	BaseURL     string
	Debug       bool

	DSN string

	JWTSecretKey           string
	VerificationSecretKey  string
	ResetPasswordSecretKey string

	AccessTokenLifetime       time.Duration
	VerificationTokenLifetime time.Duration
	ResetTokenLifetime        time.Duration

	// DefaultPhoneRegion is used when normalizing bare national numbers
	DefaultPhoneRegion string

	// Optional admin bootstrap; skipped when AdminEmail is empty or taken
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

// Validate checks the fields without which the service cannot start
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return goerrors.New("JWT_SECRET_KEY is required", goerrors.CategoryValidation)
	}
	if c.VerificationSecretKey == "" {
		return goerrors.New("VERIFICATION_SECRET_KEY is required", goerrors.CategoryValidation)
	}
	if c.ResetPasswordSecretKey == "" {
		return goerrors.New("RESET_PASSWORD_SECRET_KEY is required", goerrors.CategoryValidation)
	}
	if c.DSN == "" {
		return goerrors.New("DB_DSN is required", goerrors.CategoryValidation)
	}
	return nil
}

// LoadConfig reads a .env file when present, then the process environment.
// Missing lifetime values keep the package defaults (7d access, 1h
// verification, 1h reset).
func LoadConfig(envFiles ...string) (*Config, error) {
	// .env is optional; env vars alone are a valid configuration
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		ProjectName: envOr("PROJECT_NAME", "newsroom"),
		ServerAddr:  envOr("SERVER_ADDR", ":8080"),
		BaseURL:     envOr("BASE_URL", "http://localhost:8080"),
		Debug:       envBool("DEBUG_MODE", false),

		DSN: os.Getenv("DB_DSN"),

		JWTSecretKey:           os.Getenv("JWT_SECRET_KEY"),
		VerificationSecretKey:  os.Getenv("VERIFICATION_SECRET_KEY"),
		ResetPasswordSecretKey: os.Getenv("RESET_PASSWORD_SECRET_KEY"),

		AccessTokenLifetime:       envSeconds("JWT_LIFETIME_SECONDS", DefaultAccessLifetime),
		VerificationTokenLifetime: envSeconds("VERIFICATION_LIFETIME_SECONDS", DefaultVerificationLifetime),
		ResetTokenLifetime:        envSeconds("RESET_PASSWORD_LIFETIME_SECONDS", DefaultResetLifetime),

		DefaultPhoneRegion: envOr("DEFAULT_PHONE_REGION", "US"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}
