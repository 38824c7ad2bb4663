package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/gradespeed/gradespeed/core/auth"
)

type tokenRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Provider     string    `db:"provider"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row tokenRow) token() auth.SocialToken {
	return auth.SocialToken(row)
}

type tokenRepository struct {
	db *sqlx.DB
}

var _ auth.Repository = (*tokenRepository)(nil)

func NewTokenRepository(db *sql.DB) *tokenRepository {
	return &tokenRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo tokenRepository) CreateToken(ctx context.Context, token auth.SocialToken) (auth.SocialToken, error) {
	q := `
INSERT INTO social_token (id, user_id, provider, access_token, refresh_token, expires_at, created_at)
VALUES (:id, :user_id, :provider, :access_token, :refresh_token, :expires_at, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, tokenRow(token)); err != nil {
		return auth.SocialToken{}, errors.Wrap(err, "creating token")
	}
	return token, nil
}

func (repo tokenRepository) GetFreshestToken(ctx context.Context, userID, provider string) (auth.SocialToken, error) {
	var row tokenRow
	q := `
SELECT * FROM social_token
WHERE user_id = $1 AND provider = $2
ORDER BY expires_at DESC
LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, q, userID, provider); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.SocialToken{}, auth.ErrCredentialMissing
		}
		return auth.SocialToken{}, errors.Wrap(err, "getting token")
	}
	return row.token(), nil
}
