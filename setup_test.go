package newsroom

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    phone_number TEXT,
    avatar_url TEXT,
    hashed_password TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    pending_password_hash TEXT,
    password_change_token TEXT,
    password_change_token_expires_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

	sqliteCreateCategories = `CREATE TABLE categories (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    slug TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

	sqliteCreateNews = `CREATE TABLE news (
    id TEXT NOT NULL PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    content TEXT NOT NULL,
    image_url TEXT,
    published BOOLEAN NOT NULL DEFAULT FALSE,
    author_id TEXT NOT NULL,
    category_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL,
    FOREIGN KEY (author_id) REFERENCES users (id),
    FOREIGN KEY (category_id) REFERENCES categories (id)
);`
)

func setupTestRepo(t *testing.T) (RepositoryManager, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	for _, ddl := range []string{sqliteCreateUsers, sqliteCreateCategories, sqliteCreateNews} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return NewRepositoryManager(bunDB), cleanup
}

// fastTestParams keeps hashing cost low so the suite stays quick
var fastTestParams = Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func testHasher() *Argon2Hasher {
	return NewPasswordHasherWithParams(fastTestParams)
}

func testTokenConfig() *Config {
	return &Config{
		JWTSecretKey:           "test-jwt-secret",
		VerificationSecretKey:  "test-verification-secret",
		ResetPasswordSecretKey: "test-reset-secret",
	}
}

func mustCreateUser(t *testing.T, repo RepositoryManager, hasher PasswordHasher, username, email, password string) *User {
	t.Helper()

	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	user, err := repo.Users().Create(context.Background(), &User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		Name:           "Test User",
		HashedPassword: hash,
		IsActive:       true,
	})
	require.NoError(t, err)

	return user
}
