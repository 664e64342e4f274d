package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

// Repository exposes tx-scoped writes so the service can keep an order's
// pricing, items, discount accounting, and gateway session inside one
// transactional boundary.
type Repository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	CreateTx(ctx context.Context, tx *sql.Tx, o *Order) error
	InsertItemsTx(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderItem) error
	UpdateTx(ctx context.Context, tx *sql.Tx, o *Order) error
	DiffItemsTx(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderItem) error
	SetAuthorityTx(ctx context.Context, tx *sql.Tx, orderID int64, authority string) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status Status) error

	// MarkPaidTx flips payment_status 0 -> 1. The WHERE guard makes the
	// flip happen at most once; false means somebody else already did it.
	MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error)

	// ConsumeStockTx decrements a variant's stock, clamped at zero. It
	// fails with ErrOutOfStock when the variant has no stock left.
	ConsumeStockTx(ctx context.Context, tx *sql.Tx, variantID int64, qty int) error

	// DrainStockTx decrements like ConsumeStockTx but never fails on an
	// empty variant. Settlement uses it: a captured payment must be
	// marked paid even when a concurrent order already took the stock.
	DrainStockTx(ctx context.Context, tx *sql.Tx, variantID int64, qty int) error

	RestockTx(ctx context.Context, tx *sql.Tx, variantID int64, qty int) error

	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByAuthority(ctx context.Context, authority string) (*Order, error)
	List(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]*Order, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *repository) CreateTx(ctx context.Context, tx *sql.Tx, o *Order) error {
	const q = `
		INSERT INTO orders (
			user_id, address_id, total_cost, irr_total_cost,
			discount_code, discount_amount,
			service_cost, guarantee_cost, business_profit, shipping_cost,
			type_of_delivery, type_of_payment, status, payment_status, description
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id, created_at, updated_at
	`
	return tx.QueryRowContext(ctx, q,
		o.UserID, o.AddressID, o.TotalCost, o.IRRTotalCost,
		o.DiscountCode, o.DiscountAmount,
		o.ServiceCost, o.GuaranteeCost, o.BusinessProfit, o.ShippingCost,
		o.DeliveryType, o.PaymentType, o.Status, o.PaymentStatus, o.Description,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *repository) InsertItemsTx(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderItem) error {
	const q = `
		INSERT INTO order_items (order_id, product_id, variant_id, quantity, price, discount_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, q,
			orderID, item.ProductID, item.VariantID,
			item.Quantity, item.Price, item.DiscountPrice,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) UpdateTx(ctx context.Context, tx *sql.Tx, o *Order) error {
	const q = `
		UPDATE orders
		SET address_id = $1, total_cost = $2, irr_total_cost = $3,
		    discount_code = $4, discount_amount = $5,
		    service_cost = $6, guarantee_cost = $7, business_profit = $8, shipping_cost = $9,
		    type_of_delivery = $10, description = $11, updated_at = NOW()
		WHERE id = $12
	`
	res, err := tx.ExecContext(ctx, q,
		o.AddressID, o.TotalCost, o.IRRTotalCost,
		o.DiscountCode, o.DiscountAmount,
		o.ServiceCost, o.GuaranteeCost, o.BusinessProfit, o.ShippingCost,
		o.DeliveryType, o.Description, o.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DiffItemsTx reconciles the stored item set with the submitted one by id:
// matched ids are updated in place, unmatched stored rows are deleted, and
// entries without an id are inserted. Surrogate keys survive an edit.
func (r *repository) DiffItemsTx(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderItem) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "DiffItemsTx"),
		zap.Int64("order_id", orderID),
	)

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}
	existing := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	kept := map[int64]bool{}
	var inserts []OrderItem

	for _, item := range items {
		if item.ID != 0 && existing[item.ID] {
			if _, err := tx.ExecContext(ctx, `
				UPDATE order_items
				SET product_id = $1, variant_id = $2, quantity = $3, price = $4, discount_price = $5
				WHERE id = $6 AND order_id = $7
			`, item.ProductID, item.VariantID, item.Quantity, item.Price, item.DiscountPrice,
				item.ID, orderID,
			); err != nil {
				return err
			}
			kept[item.ID] = true
			continue
		}
		inserts = append(inserts, item)
	}

	var stale []string
	var args []interface{}
	args = append(args, orderID)
	for id := range existing {
		if !kept[id] {
			stale = append(stale, fmt.Sprintf("$%d", len(args)+1))
			args = append(args, id)
		}
	}
	if len(stale) > 0 {
		q := fmt.Sprintf(
			`DELETE FROM order_items WHERE order_id = $1 AND id IN (%s)`,
			strings.Join(stale, ", "),
		)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	if err := r.InsertItemsTx(ctx, tx, orderID, inserts); err != nil {
		return err
	}

	log.Debug("item set reconciled",
		zap.Int("updated", len(kept)),
		zap.Int("deleted", len(existing)-len(kept)),
		zap.Int("inserted", len(inserts)),
	)
	return nil
}

func (r *repository) SetAuthorityTx(ctx context.Context, tx *sql.Tx, orderID int64, authority string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_authority = $1, updated_at = NOW()
		WHERE id = $2
	`, authority, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID int64, status Status) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) MarkPaidTx(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = 1, updated_at = NOW()
		WHERE id = $1 AND payment_status = 0
	`, orderID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repository) ConsumeStockTx(ctx context.Context, tx *sql.Tx, variantID int64, qty int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE variants
		SET stock = GREATEST(stock - $1, 0)
		WHERE id = $2 AND stock > 0
	`, qty, variantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOutOfStock
	}
	return nil
}

func (r *repository) DrainStockTx(ctx context.Context, tx *sql.Tx, variantID int64, qty int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE variants
		SET stock = GREATEST(stock - $1, 0)
		WHERE id = $2
	`, qty, variantID)
	return err
}

func (r *repository) RestockTx(ctx context.Context, tx *sql.Tx, variantID int64, qty int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE variants
		SET stock = stock + $1
		WHERE id = $2
	`, qty, variantID)
	return err
}

const orderColumns = `
	o.id, o.user_id, o.address_id, o.total_cost, o.irr_total_cost,
	o.discount_code, o.discount_amount,
	o.service_cost, o.guarantee_cost, o.business_profit, o.shipping_cost,
	o.type_of_delivery, o.type_of_payment, o.status, o.payment_status,
	o.payment_authority, o.description, o.created_at, o.updated_at
`

func scanOrder(scanner interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	err := scanner.Scan(
		&o.ID, &o.UserID, &o.AddressID, &o.TotalCost, &o.IRRTotalCost,
		&o.DiscountCode, &o.DiscountAmount,
		&o.ServiceCost, &o.GuaranteeCost, &o.BusinessProfit, &o.ShippingCost,
		&o.DeliveryType, &o.PaymentType, &o.Status, &o.PaymentStatus,
		&o.Authority, &o.Description, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByAuthority(ctx context.Context, authority string) (*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.payment_authority = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, authority))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, quantity, price, discount_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.Quantity, &item.Price, &item.DiscountPrice,
		); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *repository) List(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error) {
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

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE 1=1`
	args := []interface{}{}

	if filter != nil {
		if filter.UserID != nil {
			query += fmt.Sprintf(" AND o.user_id = $%d", len(args)+1)
			args = append(args, *filter.UserID)
		}
		if filter.Status != nil {
			query += fmt.Sprintf(" AND o.status = $%d", len(args)+1)
			args = append(args, *filter.Status)
		}
		if filter.PaymentStatus != nil {
			query += fmt.Sprintf(" AND o.payment_status = $%d", len(args)+1)
			args = append(args, *filter.PaymentStatus)
		}
	}

	query += " ORDER BY o.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListStalePending returns unpaid online orders old enough that the
// gateway callback has plausibly been lost; the sweeper re-verifies them.
func (r *repository) ListStalePending(ctx context.Context, olderThan time.Time) ([]*Order, error) {
	q := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.payment_status = 0
		  AND o.type_of_payment = '1'
		  AND o.payment_authority IS NOT NULL
		  AND o.created_at < $1
		ORDER BY o.created_at
	`

	rows, err := r.db.QueryContext(ctx, q, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}

	return tx.Commit()
}
