package newsroom

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. The three Pending* / PasswordChange* columns
// are an all-or-nothing unit: either a password change is staged (all set)
// or none of them is.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	AvatarURL      string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	HashedPassword string     `bun:"hashed_password,notnull" json:"-"`
	IsActive       bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	IsVerified     bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`

	PendingPasswordHash       string     `bun:"pending_password_hash,nullzero" json:"-"`
	PasswordChangeToken       string     `bun:"password_change_token,nullzero" json:"-"`
	PasswordChangeTokenExpiry *time.Time `bun:"password_change_token_expires_at,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPendingPasswordChange reports whether the pending trio is staged
func (u *User) HasPendingPasswordChange() bool {
	return u.PendingPasswordHash != "" &&
		u.PasswordChangeToken != "" &&
		u.PasswordChangeTokenExpiry != nil
}

// ClearPendingPasswordChange resets the trio in memory; callers persist
func (u *User) ClearPendingPasswordChange() *User {
	u.PendingPasswordHash = ""
	u.PasswordChangeToken = ""
	u.PasswordChangeTokenExpiry = nil
	return u
}

// Category groups news entries
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name      string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Slug      string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// News is an article authored by a user
type News struct {
	bun.BaseModel `bun:"table:news,alias:nws"`

	ID         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title      string     `bun:"title,notnull" json:"title,omitempty"`
	Slug       string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Content    string     `bun:"content,notnull" json:"content,omitempty"`
	ImageURL   string     `bun:"image_url" json:"image_url,omitempty"`
	Published  bool       `bun:"published,notnull,default:false" json:"published"`
	AuthorID   *uuid.UUID `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author     *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	CategoryID *uuid.UUID `bun:"category_id,notnull,type:uuid" json:"category_id,omitempty"`
	Category   *Category  `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt  *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt  *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
