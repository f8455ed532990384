package newsroom

import (
	"context"
	"time"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Accounts is the account service: credential verification plus profile
// mutation. Registration, verification, and password change live in their
// command handlers; everything here is the synchronous lookup/verify core
// those commands and the HTTP layer share.
type Accounts struct {
	repo        RepositoryManager
	hasher      PasswordHasher
	logger      Logger
	phoneRegion string
}

// NewAccounts builds the service with explicit collaborators; nothing is
// resolved from globals.
func NewAccounts(repo RepositoryManager, hasher PasswordHasher) *Accounts {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}
	return &Accounts{
		repo:        repo,
		hasher:      hasher,
		logger:      defLogger{},
		phoneRegion: "US",
	}
}

func (s *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Accounts) WithPhoneRegion(region string) *Accounts {
	if region != "" {
		s.phoneRegion = region
	}
	return s
}

// Hasher exposes the password hasher to the command handlers
func (s *Accounts) Hasher() PasswordHasher {
	return s.hasher
}

// Repo exposes the repository manager to the command handlers
func (s *Accounts) Repo() RepositoryManager {
	return s.repo
}

// PhoneRegion is the default region for bare national phone numbers
func (s *Accounts) PhoneRegion() string {
	return s.phoneRegion
}

// Authenticate resolves the identifier (alphanumeric means username,
// anything else means email), verifies the password, and opportunistically
// upgrades the stored hash. Unknown identifier and wrong password are the
// same error; the miss path still burns one hash so response timing does
// not enumerate accounts.
func (s *Accounts) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	var user *User
	var err error

	if isAlphanumeric(identifier) {
		user, err = s.repo.Users().GetByUsername(ctx, identifier)
	} else {
		user, err = s.repo.Users().GetByEmail(ctx, identifier)
	}

	if err != nil {
		if goerrors.Is(err, ErrUserNotExists) {
			s.hasher.DummyHash()
			return nil, ErrInvalidLoginCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during authentication")
	}

	verified, upgradedHash := s.hasher.VerifyAndUpdate(password, user.HashedPassword)
	if !verified {
		return nil, ErrInvalidLoginCredentials
	}

	if upgradedHash != "" {
		user.HashedPassword = upgradedHash
		if _, err := s.repo.Users().Update(ctx, user); err != nil {
			// stale-parameter hash still verifies; the upgrade retries on
			// the next login
			s.logger.Warn("failed to persist upgraded password hash for user %s: %v", user.ID.String(), err)
		}
	}

	return user, nil
}

// GetByID looks an account up by id; misses surface as ErrUserNotExists
func (s *Accounts) GetByID(ctx context.Context, id string) (*User, error) {
	uid, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.Users().GetByUserID(ctx, uid)
}

// ProfileUpdate carries optional field changes; nil means unchanged
type ProfileUpdate struct {
	Email     *string
	Username  *string
	Password  *string
	Name      *string
	Phone     *string
	AvatarURL *string
}

// UpdateProfile validates and applies a profile change. An email change
// re-validates format, re-checks uniqueness, and resets is_verified; a
// username change re-validates and re-checks uniqueness; a password change
// enforces the policy and rehashes.
func (s *Accounts) UpdateProfile(ctx context.Context, user *User, update ProfileUpdate) (*User, error) {
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if update.Email != nil {
			email := NormalizeEmail(*update.Email)
			if email != user.Email {
				if err := ValidateEmail(email); err != nil {
					return err
				}
				if _, err := s.repo.Users().GetByEmailTx(ctx, tx, email); err == nil {
					return NewUserAlreadyExists("email")
				} else if !goerrors.Is(err, ErrUserNotExists) {
					return err
				}
				user.Email = email
				user.IsVerified = false
			}
		}

		if update.Username != nil && *update.Username != user.Username {
			if err := ValidateUsername(*update.Username); err != nil {
				return err
			}
			if _, err := s.repo.Users().GetByUsernameTx(ctx, tx, *update.Username); err == nil {
				return NewUserAlreadyExists("username")
			} else if !goerrors.Is(err, ErrUserNotExists) {
				return err
			}
			user.Username = *update.Username
		}

		if update.Password != nil {
			if err := ValidatePassword(*update.Password, user.Email, user.Username); err != nil {
				return err
			}
			hash, err := s.hasher.Hash(*update.Password)
			if err != nil {
				return err
			}
			user.HashedPassword = hash
		}

		if update.Name != nil {
			user.Name = *update.Name
		}

		if update.Phone != nil {
			phone, err := NormalizePhone(*update.Phone, s.phoneRegion)
			if err != nil {
				return err
			}
			user.Phone = phone
		}

		if update.AvatarURL != nil {
			user.AvatarURL = *update.AvatarURL
		}

		now := time.Now()
		user.UpdatedAt = &now

		updated, err := s.repo.Users().UpdateTx(ctx, tx, user)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user profile")
		}

		user = updated
		return nil
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the account
func (s *Accounts) Delete(ctx context.Context, user *User) error {
	return s.repo.Users().Remove(ctx, user)
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
