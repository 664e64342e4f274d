package verification

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrCodeNotFound = errors.New("verification code not found")

type Code struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, c *Code) error
	Find(ctx context.Context, phone, code string) (*Code, error)
	Delete(ctx context.Context, id int64) error

	// DeleteExpired removes stale unused codes; invoked by the sweeper.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Code) error {
	const q = `
		INSERT INTO verification_codes (phone, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q, c.Phone, c.Code, c.ExpiresAt).
		Scan(&c.ID, &c.CreatedAt)
}

func (r *repository) Find(ctx context.Context, phone, code string) (*Code, error) {
	const q = `
		SELECT id, phone, code, expires_at, created_at
		FROM verification_codes
		WHERE phone = $1 AND code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var c Code
	err := r.db.QueryRowContext(ctx, q, phone, code).
		Scan(&c.ID, &c.Phone, &c.Code, &c.ExpiresAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE id = $1`, id)
	return err
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
