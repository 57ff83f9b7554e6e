package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"regauth/internal/database"
	"regauth/internal/models"
)

// SQL keeps pending registrations in the pending_registrations table so that
// several API instances share them. Timestamps are unix milliseconds.
type SQL struct {
	DB  *database.DB
	now func() time.Time
}

func NewSQL(db *database.DB) *SQL {
	return &SQL{DB: db, now: time.Now}
}

func (s *SQL) Add(ctx context.Context, code string, p models.PendingRegistration, ttl time.Duration) error {
	now := s.now()

	// an expired row would otherwise block the code forever
	const purge = `DELETE FROM pending_registrations WHERE code = $1 AND expires_at <= $2`
	if _, err := s.DB.ExecContext(ctx, s.DB.Rebind(purge), code, now.UnixMilli()); err != nil {
		return fmt.Errorf("pending_registration purge: %w", err)
	}

	const q = `
		INSERT INTO pending_registrations (code, name, email, phone, password_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING
	`
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(q),
		code, p.Name, p.Email, p.Phone, p.PasswordHash,
		now.UnixMilli(), now.Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("pending_registration insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pending_registration insert rows: %w", err)
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, code string) (*models.PendingRegistration, error) {
	const q = `
		SELECT name, email, phone, password_hash, created_at, expires_at
		FROM pending_registrations
		WHERE code = $1 AND expires_at > $2
	`
	return s.scan(s.DB.QueryRowContext(ctx, s.DB.Rebind(q), code, s.now().UnixMilli()))
}

// Take relies on DELETE ... RETURNING being a single statement: the row is
// handed to exactly one caller.
func (s *SQL) Take(ctx context.Context, code string) (*models.PendingRegistration, error) {
	const q = `
		DELETE FROM pending_registrations
		WHERE code = $1 AND expires_at > $2
		RETURNING name, email, phone, password_hash, created_at, expires_at
	`
	return s.scan(s.DB.QueryRowContext(ctx, s.DB.Rebind(q), code, s.now().UnixMilli()))
}

// DeleteExpired removes every expired row and returns how many were dropped.
func (s *SQL) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM pending_registrations WHERE expires_at <= $1`
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(q), s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired pending registrations: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQL) scan(row *sql.Row) (*models.PendingRegistration, error) {
	var (
		p                    models.PendingRegistration
		createdAt, expiresAt int64
	)
	err := row.Scan(&p.Name, &p.Email, &p.Phone, &p.PasswordHash, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("pending_registration scan: %w", err)
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	p.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return &p, nil
}
