// Package cache stores pending registrations under their verification code for a
// limited time. Expiry is passive: an entry past its deadline behaves as absent.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"regauth/internal/database"
	"regauth/internal/models"
)

var (
	ErrMiss   = errors.New("verification cache: miss")
	ErrExists = errors.New("verification cache: code already pending")
)

// VerificationCache maps a one-time code to pending registration data.
type VerificationCache interface {
	// Add stores p under code for ttl unless a live entry already holds the
	// code, in which case it returns ErrExists.
	Add(ctx context.Context, code string, p models.PendingRegistration, ttl time.Duration) error
	// Get returns the live entry for code without consuming it, or ErrMiss.
	Get(ctx context.Context, code string) (*models.PendingRegistration, error)
	// Take atomically returns and removes the live entry for code, or ErrMiss.
	// Of several concurrent callers for the same code at most one succeeds.
	Take(ctx context.Context, code string) (*models.PendingRegistration, error)
}

// New builds the cache selected by driver ("memory" or "sql").
func New(driver string, db *database.DB) (VerificationCache, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sql", "database":
		if db == nil {
			return nil, fmt.Errorf("cache driver %q needs a database", driver)
		}
		return NewSQL(db), nil
	}
	return nil, fmt.Errorf("unsupported cache driver %q", driver)
}
