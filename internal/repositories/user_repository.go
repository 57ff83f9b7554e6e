package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"regauth/internal/database"
	"regauth/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
}

type userRepository struct {
	DB *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{DB: db}
}

const userCols = `id, name, email, phone, password_hash, email_verified_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var verifiedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &verifiedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	return u, nil
}

// Create inserts the account and fills user.ID. A unique violation on email or
// phone is reported as ErrDuplicateEmail / ErrDuplicatePhone.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (name, email, phone, password_hash, email_verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(q),
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.EmailVerifiedAt,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if col, ok := database.UniqueViolation(err); ok {
			if col == "phone" {
				return ErrDuplicatePhone
			}
			return ErrDuplicateEmail
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) getBy(ctx context.Context, col string, arg any) (*models.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE ` + col + ` = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, r.DB.Rebind(q), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user get by %s: %w", col, err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *userRepository) exists(ctx context.Context, col, val string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM users WHERE ` + col + ` = $1)`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, r.DB.Rebind(q), val).Scan(&ok); err != nil {
		return false, fmt.Errorf("user %s exists: %w", col, err)
	}
	return ok, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *userRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone", phone)
}
