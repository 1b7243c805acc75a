package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string, firstName, lastName *string) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, email string, firstName, lastName *string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SetResetToken installs a fresh reset token, replacing any pending one.
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	// FindByResetToken matches a stored, unexpired token. Missing and expired
	// are indistinguishable: both surface sql.ErrNoRows.
	FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	// ConsumeResetToken atomically swaps the password hash and clears the
	// token in one conditional update. Exactly one concurrent caller can win.
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*domain.User, error)
}
