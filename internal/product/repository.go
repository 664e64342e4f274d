package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/pricing"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

type Repository interface {
	GetProducts(ctx context.Context, filter *string, limit, page *int32) ([]*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetVariant(ctx context.Context, id int64) (*Variant, error)
	GetVariantsByIDs(ctx context.Context, ids []int64) (map[int64]*Variant, error)
	CreateVariant(ctx context.Context, v *Variant) error
	UpdateVariant(ctx context.Context, v *Variant) error
	DeleteVariant(ctx context.Context, id int64) error

	// RepriceAllTx recomputes price and discount_price for every variant at
	// the given rate, inside the caller's transaction so the rate change and
	// the repricing land together.
	RepriceAllTx(ctx context.Context, tx *sql.Tx, rate float64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProducts(
	ctx context.Context,
	filter *string,
	limit, page *int32,
) ([]*Product, error) {

	finalLimit := int32(20)
	finalPage := int32(1)
	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}
	offset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "GetProducts"),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
	)

	query := `
		SELECT p.id, p.name, p.brand_id, p.category_id, p.description, p.status, p.created_at, p.updated_at
		FROM products p
	`
	where := []string{}
	args := []interface{}{}

	if filter != nil && *filter != "" {
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*filter+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.BrandID, &p.CategoryID,
			&p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	const q = `
		SELECT p.id, p.name, p.brand_id, p.category_id, p.description, p.status, p.created_at, p.updated_at
		FROM products p
		WHERE p.id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.BrandID, &p.CategoryID,
		&p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT v.id, v.product_id, v.color, v.kind, v.stock, v.currency_price, v.price, v.discount_price
		FROM variants v
		WHERE v.product_id = $1
		ORDER BY v.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.Color, &v.Kind,
			&v.Stock, &v.CurrencyPrice, &v.Price, &v.DiscountPrice,
		); err != nil {
			return nil, err
		}
		p.Variants = append(p.Variants, &v)
	}

	return &p, rows.Err()
}

func (r *repository) CreateProduct(ctx context.Context, p *Product) error {
	const q = `
		INSERT INTO products (name, brand_id, category_id, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, q,
		p.Name, p.BrandID, p.CategoryID, p.Description, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) UpdateProduct(ctx context.Context, p *Product) error {
	const q = `
		UPDATE products
		SET name = $1, brand_id = $2, category_id = $3, description = $4, status = $5, updated_at = NOW()
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.BrandID, p.CategoryID, p.Description, p.Status, p.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	const q = `
		SELECT v.id, v.product_id, v.color, v.kind, v.stock, v.currency_price, v.price, v.discount_price
		FROM variants v
		WHERE v.id = $1
	`
	var v Variant
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.ProductID, &v.Color, &v.Kind,
		&v.Stock, &v.CurrencyPrice, &v.Price, &v.DiscountPrice,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) GetVariantsByIDs(ctx context.Context, ids []int64) (map[int64]*Variant, error) {
	if len(ids) == 0 {
		return map[int64]*Variant{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT v.id, v.product_id, v.color, v.kind, v.stock, v.currency_price, v.price, v.discount_price
		FROM variants v
		WHERE v.id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]*Variant, len(ids))
	for rows.Next() {
		var v Variant
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.Color, &v.Kind,
			&v.Stock, &v.CurrencyPrice, &v.Price, &v.DiscountPrice,
		); err != nil {
			return nil, err
		}
		result[v.ID] = &v
	}

	return result, rows.Err()
}

func (r *repository) CreateVariant(ctx context.Context, v *Variant) error {
	const q = `
		INSERT INTO variants (product_id, color, kind, stock, currency_price, price, discount_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, q,
		v.ProductID, v.Color, v.Kind, v.Stock, v.CurrencyPrice, v.Price, v.DiscountPrice,
	).Scan(&v.ID)
}

func (r *repository) UpdateVariant(ctx context.Context, v *Variant) error {
	const q = `
		UPDATE variants
		SET color = $1, kind = $2, stock = $3, currency_price = $4, price = $5, discount_price = $6
		WHERE id = $7
	`
	res, err := r.db.ExecContext(ctx, q,
		v.Color, v.Kind, v.Stock, v.CurrencyPrice, v.Price, v.DiscountPrice, v.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *repository) DeleteVariant(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM variants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *repository) RepriceAllTx(ctx context.Context, tx *sql.Tx, rate float64) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "RepriceAllTx"),
		zap.Float64("rate", rate),
	)

	rows, err := tx.QueryContext(ctx, `
		SELECT id, currency_price, price, discount_price
		FROM variants
	`)
	if err != nil {
		log.Error("loading variants failed", zap.Error(err))
		return 0, err
	}
	defer rows.Close()

	type reprice struct {
		id            int64
		price         int64
		discountPrice int64
	}
	var updates []reprice

	for rows.Next() {
		var (
			id            int64
			currencyPrice float64
			price         int64
			discountPrice int64
		)
		if err := rows.Scan(&id, &currencyPrice, &price, &discountPrice); err != nil {
			return 0, err
		}

		pct := pricing.DiscountPercent(price, discountPrice)
		newPrice := pricing.DisplayPrice(currencyPrice, rate)
		updates = append(updates, reprice{
			id:            id,
			price:         newPrice,
			discountPrice: pricing.DiscountedDisplayPrice(newPrice, pct),
		})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE variants
			SET price = $1, discount_price = $2
			WHERE id = $3
		`, u.price, u.discountPrice, u.id); err != nil {
			log.Error("repricing variant failed", zap.Int64("variant_id", u.id), zap.Error(err))
			return 0, err
		}
	}

	log.Info("variants repriced", zap.Int("count", len(updates)))
	return int64(len(updates)), nil
}
