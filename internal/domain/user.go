package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity record. ResetToken and ResetTokenExpiresAt are both
// set or both NULL; they hold the pending single-use password-reset secret.
type User struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	FirstName           *string    `db:"first_name" json:"first_name,omitempty"`
	LastName            *string    `db:"last_name" json:"last_name,omitempty"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	Role                string     `db:"role" json:"role"`
	PasswordHash        *string    `db:"password_hash" json:"-"`
	ResetToken          *string    `db:"reset_token" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
