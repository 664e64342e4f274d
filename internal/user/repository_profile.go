package user

import (
	"context"
	"database/sql"
	"errors"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

// UpdateProfile patches the profile columns, keeping existing values
// where the input is nil.
func (r *repository) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "UpdateProfile"),
		zap.Int64("user_id", userID),
	)

	const q = `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, phone, email, password, role, full_name, created_at, updated_at
	`

	var u User
	err := r.db.QueryRowContext(ctx, q, userID, input.FullName, input.Email).Scan(
		&u.ID, &u.Phone, &u.Email, &u.Password, &u.Role,
		&u.FullName, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		log.Error("update failed", zap.Error(err))
		return nil, err
	}

	log.Info("profile updated")
	return &u, nil
}
