package address

import (
	"context"
	"database/sql"
	"errors"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

var ErrAddressNotFound = errors.New("address not found")

type Repository interface {
	GetByUserID(ctx context.Context, userID int64) ([]*Address, error)
	GetByID(ctx context.Context, id int64) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Deactivate(ctx context.Context, id int64) error
	ClearDefault(ctx context.Context, userID int64) error
	SetDefault(ctx context.Context, userID, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const addressColumns = `
	id, user_id, name, phone, address_line1, address_line2,
	city, province, postal_code, is_default, is_active, created_at, updated_at
`

func (r *repository) GetByUserID(ctx context.Context, userID int64) ([]*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "GetByUserID"),
		zap.Int64("user_id", userID),
	)

	q := `SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY is_default DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var addrs []*Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Phone, &a.Address1, &a.Address2,
			&a.City, &a.Province, &a.Postal, &a.IsDefault, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		addrs = append(addrs, &a)
	}
	return addrs, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Address, error) {
	q := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	var a Address
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Phone, &a.Address1, &a.Address2,
		&a.City, &a.Province, &a.Postal, &a.IsDefault, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, a *Address) error {
	const q = `
		INSERT INTO addresses (
			user_id, name, phone, address_line1, address_line2,
			city, province, postal_code, is_default, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, q,
		a.UserID, a.Name, a.Phone, a.Address1, a.Address2,
		a.City, a.Province, a.Postal, a.IsDefault,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repository) Update(ctx context.Context, a *Address) error {
	const q = `
		UPDATE addresses
		SET name = $1, phone = $2, address_line1 = $3, address_line2 = $4,
		    city = $5, province = $6, postal_code = $7, is_default = $8,
		    updated_at = NOW()
		WHERE id = $9 AND is_active = TRUE
	`
	res, err := r.db.ExecContext(ctx, q,
		a.Name, a.Phone, a.Address1, a.Address2,
		a.City, a.Province, a.Postal, a.IsDefault, a.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// Deactivate soft-deletes so historical orders keep a resolvable address.
func (r *repository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses SET is_active = FALSE, is_default = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *repository) ClearDefault(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default = TRUE
	`, userID)
	return err
}

func (r *repository) SetDefault(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses SET is_default = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAddressNotFound
	}
	return nil
}
