package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"regauth/internal/database"
	"regauth/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(email, phone string) *models.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.User{
		Name:            "Aya",
		Email:           email,
		Phone:           phone,
		PasswordHash:    "$2a$10$hash",
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}
}

func TestUserCreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	u := newUser("aya@x.com", "0555111222")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected ID to be set")
	}

	byEmail, err := repo.GetByEmail(ctx, "aya@x.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != u.ID || byEmail.Phone != "0555111222" {
		t.Errorf("get by email = %+v", byEmail)
	}
	if byEmail.EmailVerifiedAt == nil {
		t.Error("expected email_verified_at to be set")
	}
	if byEmail.PasswordHash != u.PasswordHash {
		t.Errorf("password hash = %q, want %q", byEmail.PasswordHash, u.PasswordHash)
	}

	byPhone, err := repo.GetByPhone(ctx, "0555111222")
	if err != nil {
		t.Fatalf("get by phone: %v", err)
	}
	if byPhone.ID != u.ID {
		t.Errorf("get by phone id = %d, want %d", byPhone.ID, u.ID)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Email != "aya@x.com" {
		t.Errorf("get by id email = %q", byID.Email)
	}
}

func TestUserGetNotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newUser("aya@x.com", "1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(ctx, newUser("aya@x.com", "2"))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email err = %v, want ErrDuplicateEmail", err)
	}

	err = repo.Create(ctx, newUser("other@x.com", "1"))
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Errorf("duplicate phone err = %v, want ErrDuplicatePhone", err)
	}
}

func TestUserExists(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newUser("aya@x.com", "1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := repo.EmailExists(ctx, "aya@x.com")
	if err != nil || !ok {
		t.Errorf("EmailExists = %v, %v; want true", ok, err)
	}
	ok, err = repo.EmailExists(ctx, "nobody@x.com")
	if err != nil || ok {
		t.Errorf("EmailExists(nobody) = %v, %v; want false", ok, err)
	}
	ok, err = repo.PhoneExists(ctx, "1")
	if err != nil || !ok {
		t.Errorf("PhoneExists = %v, %v; want true", ok, err)
	}
}

func TestAccessTokenLifecycle(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tokens := NewAccessTokenRepository(db)
	ctx := context.Background()

	u := newUser("aya@x.com", "1")
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	tok := &models.AccessToken{
		ID:        "7d9f1e52-6a0e-4d7b-9f39-3f2c1c1b9a11",
		UserID:    u.ID,
		Name:      models.PersonalAccessTokenName,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	if err := tokens.Create(ctx, tok); err != nil {
		t.Fatalf("create token: %v", err)
	}

	got, err := tokens.GetByID(ctx, tok.ID)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if got.Revoked {
		t.Error("new token should not be revoked")
	}
	if got.UserID != u.ID {
		t.Errorf("user_id = %d, want %d", got.UserID, u.ID)
	}
	if !got.ExpiresAt.Equal(tok.ExpiresAt) {
		t.Errorf("expires_at = %v, want %v", got.ExpiresAt, tok.ExpiresAt)
	}

	if err := tokens.Revoke(ctx, tok.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, _ = tokens.GetByID(ctx, tok.ID)
	if !got.Revoked {
		t.Error("expected token to be revoked")
	}

	if err := tokens.Revoke(ctx, tok.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second revoke err = %v, want ErrNotFound", err)
	}
}

func TestAccessTokenGetNotFound(t *testing.T) {
	tokens := NewAccessTokenRepository(setupTestDB(t))
	if _, err := tokens.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserCreateDuplicateEmailMentioningPhone(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, newUser("phone@x.com", "1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, newUser("phone@x.com", "2"))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}
