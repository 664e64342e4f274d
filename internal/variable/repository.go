package variable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Well-known variable names. The two rates serve different purposes and are
// updated independently: "currency" converts the order cost basis into the
// charged local-currency amount, "usdToIrr" drives variant display prices.
const (
	RateCurrency = "currency"
	RateUSDToIRR = "usdToIrr"
)

var ErrVariableNotFound = errors.New("variable not found")

type Variable struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Repository interface {
	Get(ctx context.Context, name string) (*Variable, error)
	GetRate(ctx context.Context, name string) (float64, error)
	Set(ctx context.Context, name, value string) error
	SetTx(ctx context.Context, tx *sql.Tx, name, value string) error
	List(ctx context.Context) ([]*Variable, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, name string) (*Variable, error) {
	const q = `SELECT id, name, value FROM variables WHERE name = $1 LIMIT 1`

	var v Variable
	err := r.db.QueryRowContext(ctx, q, name).Scan(&v.ID, &v.Name, &v.Value)
	if err == sql.ErrNoRows {
		return nil, ErrVariableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) GetRate(ctx context.Context, name string) (float64, error) {
	v, err := r.Get(ctx, name)
	if err != nil {
		return 0, err
	}

	rate, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("variable %s is not numeric: %w", name, err)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("variable %s has non-positive rate", name)
	}
	return rate, nil
}

func (r *repository) Set(ctx context.Context, name, value string) error {
	const q = `
		INSERT INTO variables (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := r.db.ExecContext(ctx, q, name, value)
	return err
}

func (r *repository) SetTx(ctx context.Context, tx *sql.Tx, name, value string) error {
	const q = `
		INSERT INTO variables (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := tx.ExecContext(ctx, q, name, value)
	return err
}

func (r *repository) List(ctx context.Context) ([]*Variable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, value FROM variables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vars []*Variable
	for rows.Next() {
		var v Variable
		if err := rows.Scan(&v.ID, &v.Name, &v.Value); err != nil {
			return nil, err
		}
		vars = append(vars, &v)
	}
	return vars, rows.Err()
}
