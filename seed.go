package newsroom

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// SeedAdmin creates the bootstrap admin account described in the config.
// It is a no-op when no admin email is configured or the email is already
// taken. The seeded account comes up active and verified.
func SeedAdmin(ctx context.Context, repo RepositoryManager, hasher PasswordHasher, cfg *Config, logger Logger) error {
	if logger == nil {
		logger = defLogger{}
	}

	if cfg.AdminEmail == "" {
		return nil
	}

	email := NormalizeEmail(cfg.AdminEmail)

	if _, err := repo.Users().GetByEmail(ctx, email); err == nil {
		logger.Debug("admin account already present, skipping seed")
		return nil
	} else if !goerrors.Is(err, ErrUserNotExists) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for admin account")
	}

	username := getUsername(cfg.AdminUsername, email)
	if err := ValidateUsername(username); err != nil {
		return err
	}

	if err := ValidatePassword(cfg.AdminPassword, email, username); err != nil {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash admin password")
	}

	admin := &User{
		Username:       username,
		Email:          email,
		Name:           "Administrator",
		HashedPassword: hash,
		IsActive:       true,
		IsVerified:     true,
	}

	if _, err := repo.Users().Create(ctx, admin); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create admin account")
	}

	logger.Info("seeded admin account %s", email)

	return nil
}
