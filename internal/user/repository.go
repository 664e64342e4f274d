package user

import (
	"context"
	"database/sql"
	"errors"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "Create"),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (phone, password, role)
		VALUES ($1, $2, $3)
		RETURNING id, role, created_at, updated_at
	`, u.Phone, u.Password, u.Role).
		Scan(&u.ID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	const q = `
		SELECT id, phone, email, password, role, full_name, created_at, updated_at
		FROM users
		WHERE phone = $1
	`
	var u User
	err := r.db.QueryRowContext(ctx, q, phone).Scan(
		&u.ID, &u.Phone, &u.Email, &u.Password, &u.Role,
		&u.FullName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	const q = `
		SELECT id, phone, email, password, role, full_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u User
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Phone, &u.Email, &u.Password, &u.Role,
		&u.FullName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
