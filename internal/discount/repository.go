package discount

import (
	"context"
	"database/sql"
	"errors"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrCodeNotFound  = errors.New("discount code not found")
	ErrCodeExhausted = errors.New("discount code usage limit reached")
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*DiscountCode, error)
	Create(ctx context.Context, c *DiscountCode) error
	Update(ctx context.Context, c *DiscountCode) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, page *int32) ([]*DiscountCode, error)

	// CountUserOrders counts committed orders the user already placed with
	// this code. Order history doubles as the usage ledger for
	// user-specific codes.
	CountUserOrders(ctx context.Context, userID int64, code string) (int64, error)

	// IncrementUsageTx bumps used_count inside the order transaction. The
	// WHERE guard keeps the count within max_uses even under concurrent
	// commits; zero affected rows means the cap was hit in the meantime.
	IncrementUsageTx(ctx context.Context, tx *sql.Tx, code string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const codeColumns = `
	id, code, type, value, min_order, max_amount, max_uses, used_count,
	start_date, end_date, active, user_specific, created_at
`

func scanCode(row *sql.Row) (*DiscountCode, error) {
	var c DiscountCode
	err := row.Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrder, &c.MaxAmount,
		&c.MaxUses, &c.UsedCount, &c.StartDate, &c.EndDate,
		&c.Active, &c.UserSpecific, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*DiscountCode, error) {
	q := `SELECT ` + codeColumns + ` FROM discount_codes WHERE code = $1 LIMIT 1`
	return scanCode(r.db.QueryRowContext(ctx, q, code))
}

func (r *repository) Create(ctx context.Context, c *DiscountCode) error {
	const q = `
		INSERT INTO discount_codes (
			code, type, value, min_order, max_amount, max_uses,
			start_date, end_date, active, user_specific
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q,
		c.Code, c.Type, c.Value, c.MinOrder, c.MaxAmount, c.MaxUses,
		c.StartDate, c.EndDate, c.Active, c.UserSpecific,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *repository) Update(ctx context.Context, c *DiscountCode) error {
	const q = `
		UPDATE discount_codes
		SET code = $1, type = $2, value = $3, min_order = $4, max_amount = $5,
		    max_uses = $6, start_date = $7, end_date = $8, active = $9, user_specific = $10
		WHERE id = $11
	`
	res, err := r.db.ExecContext(ctx, q,
		c.Code, c.Type, c.Value, c.MinOrder, c.MaxAmount,
		c.MaxUses, c.StartDate, c.EndDate, c.Active, c.UserSpecific, c.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, limit, page *int32) ([]*DiscountCode, error) {
	finalLimit := int32(20)
	finalPage := int32(1)
	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	offset := (finalPage - 1) * finalLimit

	q := `SELECT ` + codeColumns + ` FROM discount_codes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, finalLimit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*DiscountCode
	for rows.Next() {
		var c DiscountCode
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Type, &c.Value, &c.MinOrder, &c.MaxAmount,
			&c.MaxUses, &c.UsedCount, &c.StartDate, &c.EndDate,
			&c.Active, &c.UserSpecific, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		codes = append(codes, &c)
	}
	return codes, rows.Err()
}

func (r *repository) CountUserOrders(ctx context.Context, userID int64, code string) (int64, error) {
	const q = `
		SELECT COUNT(*)
		FROM orders
		WHERE user_id = $1 AND discount_code = $2
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, q, userID, code).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) IncrementUsageTx(ctx context.Context, tx *sql.Tx, code string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Discount"),
		zap.String("method", "IncrementUsageTx"),
		zap.String("code", code),
	)

	const q = `
		UPDATE discount_codes
		SET used_count = used_count + 1
		WHERE code = $1
		  AND (max_uses IS NULL OR used_count < max_uses)
	`
	res, err := tx.ExecContext(ctx, q, code)
	if err != nil {
		log.Error("increment failed", zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCodeExhausted
	}
	return nil
}
