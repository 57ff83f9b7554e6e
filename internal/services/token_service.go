package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"regauth/internal/models"
	"regauth/internal/repositories"
)

const DefaultTokenTTL = 24 * time.Hour

// TokenIssuer mints, resolves and revokes bearer tokens.
type TokenIssuer interface {
	Mint(ctx context.Context, user *models.User) (*models.IssuedToken, error)
	// Resolve returns the live token record behind a raw bearer string, or
	// ErrUnauthenticated.
	Resolve(ctx context.Context, raw string) (*models.AccessToken, error)
	Revoke(ctx context.Context, tokenID string) error
}

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// jwtIssuer signs HS256 tokens whose jti points at an access_tokens row, so a
// token can be revoked before it expires.
type jwtIssuer struct {
	key    []byte
	ttl    time.Duration
	tokens repositories.AccessTokenRepository
	now    func() time.Time
}

func NewJWTIssuer(key []byte, ttl time.Duration, tokens repositories.AccessTokenRepository) TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &jwtIssuer{key: key, ttl: ttl, tokens: tokens, now: time.Now}
}

func (s *jwtIssuer) Mint(ctx context.Context, user *models.User) (*models.IssuedToken, error) {
	now := s.now().UTC().Truncate(time.Second)
	exp := now.Add(s.ttl)
	id := uuid.NewString()

	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	rec := &models.AccessToken{
		ID:        id,
		UserID:    user.ID,
		Name:      models.PersonalAccessTokenName,
		ExpiresAt: exp,
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return nil, err
	}
	return &models.IssuedToken{Token: signed, TokenID: id, ExpiresAt: exp}, nil
}

func (s *jwtIssuer) Resolve(ctx context.Context, raw string) (*models.AccessToken, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrUnauthenticated
	}

	rec, err := s.tokens.GetByID(ctx, claims.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if rec.Revoked || rec.UserID != claims.UserID || !s.now().Before(rec.ExpiresAt) {
		return nil, ErrUnauthenticated
	}
	return rec, nil
}

func (s *jwtIssuer) Revoke(ctx context.Context, tokenID string) error {
	err := s.tokens.Revoke(ctx, tokenID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUnauthenticated
	}
	return err
}
