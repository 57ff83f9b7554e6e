package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"regauth/internal/database"
	"regauth/internal/models"
)

// AccessTokenRepository is the revocation ledger for issued bearer tokens.
type AccessTokenRepository interface {
	Create(ctx context.Context, t *models.AccessToken) error
	GetByID(ctx context.Context, id string) (*models.AccessToken, error)
	// Revoke marks the token revoked. It returns ErrNotFound when no live
	// (unrevoked) token has that id.
	Revoke(ctx context.Context, id string) error
}

type accessTokenRepository struct {
	DB *database.DB
}

func NewAccessTokenRepository(db *database.DB) AccessTokenRepository {
	return &accessTokenRepository{DB: db}
}

func (r *accessTokenRepository) Create(ctx context.Context, t *models.AccessToken) error {
	const q = `
		INSERT INTO access_tokens (id, user_id, name, revoked, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.DB.ExecContext(ctx, r.DB.Rebind(q),
		t.ID, t.UserID, t.Name, t.Revoked, t.ExpiresAt, t.CreatedAt,
	); err != nil {
		return fmt.Errorf("access_token create: %w", err)
	}
	return nil
}

func (r *accessTokenRepository) GetByID(ctx context.Context, id string) (*models.AccessToken, error) {
	const q = `
		SELECT id, user_id, name, revoked, expires_at, created_at
		FROM access_tokens
		WHERE id = $1
	`
	var t models.AccessToken
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(q), id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.Revoked, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("access_token get: %w", err)
	}
	return &t, nil
}

func (r *accessTokenRepository) Revoke(ctx context.Context, id string) error {
	const q = `UPDATE access_tokens SET revoked = $1 WHERE id = $2 AND revoked = $3`
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(q), true, id, false)
	if err != nil {
		return fmt.Errorf("access_token revoke: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("access_token revoke rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
