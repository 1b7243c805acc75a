package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
)

const userColumns = `id, email, first_name, last_name, phone, role, password_hash, reset_token, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, firstName, lastName *string) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (email, password_hash, first_name, last_name, role)
        VALUES ($1, $2, $3, $4, 'user')
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, email, passwordHash, firstName, lastName)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, email string, firstName, lastName *string) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (email, first_name, last_name, role)
        VALUES ($1, $2, $3, 'user')
        ON CONFLICT (email) DO UPDATE
        SET first_name = COALESCE(user_account.first_name, EXCLUDED.first_name),
            last_name = COALESCE(user_account.last_name, EXCLUDED.last_name),
            updated_at = NOW()
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, email, firstName, lastName)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE email = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return err
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	const query = `
        UPDATE user_account
        SET reset_token = $2,
            reset_token_expires_at = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, token, expiresAt)
	return err
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE reset_token = $1 AND reset_token_expires_at > $2
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, token, now); err != nil {
		return nil, err
	}
	return &user, nil
}

// ConsumeResetToken is the compare-and-set at the heart of the reset flow:
// the WHERE clause re-checks token validity at write time, so concurrent
// consumers of the same token cannot both succeed and a crash can never leave
// the token cleared without the new hash applied.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            reset_token = NULL,
            reset_token_expires_at = NULL,
            updated_at = NOW()
        WHERE reset_token = $1 AND reset_token_expires_at > $3
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, token, passwordHash, now)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
