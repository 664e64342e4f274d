package product

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewRepository(db), mock, func() { db.Close() }
}

func TestGetProducts_FilterAndPagination(t *testing.T) {
	repo, mock, closeDB := newMock(t)
	defer closeDB()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "brand_id", "category_id", "description", "status", "created_at", "updated_at",
	}).AddRow(1, "Galaxy S24", nil, nil, nil, "active", now, now)

	mock.ExpectQuery(`(?s)SELECT p\.id, p\.name.*FROM products p.*WHERE p\.name ILIKE \$1.*LIMIT \$2 OFFSET \$3`).
		WithArgs("%galaxy%", int32(10), int32(10)).
		WillReturnRows(rows)

	filter := "galaxy"
	limit := int32(10)
	page := int32(2)
	products, err := repo.GetProducts(context.Background(), &filter, &limit, &page)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Galaxy S24", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_LoadsVariants(t *testing.T) {
	repo, mock, closeDB := newMock(t)
	defer closeDB()

	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT p\.id, p\.name.*WHERE p\.id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "brand_id", "category_id", "description", "status", "created_at", "updated_at",
		}).AddRow(1, "Galaxy S24", nil, nil, nil, "active", now, now))
	mock.ExpectQuery(`(?s)SELECT v\.id, v\.product_id.*WHERE v\.product_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "color", "kind", "stock", "currency_price", "price", "discount_price",
		}).
			AddRow(10, 1, "black", "256GB", 5, 12.5, 7_250_000, 0).
			AddRow(11, 1, "white", "256GB", 0, 12.5, 7_250_000, 5_800_000))

	p, err := repo.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, int64(5_800_000), p.Variants[1].DiscountPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	repo, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery(`(?s)SELECT p\.id, p\.name.*WHERE p\.id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetVariantsByIDs(t *testing.T) {
	repo, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectQuery(`(?s)SELECT v\.id, v\.product_id.*WHERE v\.id IN \(\$1, \$2\)`).
		WithArgs(int64(10), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "color", "kind", "stock", "currency_price", "price", "discount_price",
		}).
			AddRow(10, 1, "black", "256GB", 5, 12.5, 100_000, 0).
			AddRow(20, 2, "red", "standard", 3, 4.2, 50_000, 40_000))

	vs, err := repo.GetVariantsByIDs(context.Background(), []int64{10, 20})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, int64(40_000), vs[20].DiscountPrice)
}

func TestGetVariantsByIDs_Empty(t *testing.T) {
	repo, _, closeDB := newMock(t)
	defer closeDB()

	vs, err := repo.GetVariantsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	repo, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectExec(`(?s)UPDATE products.*WHERE id = \$6`).
		WithArgs("Galaxy S24", nil, nil, nil, "active", int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProduct(context.Background(), &Product{ID: 404, Name: "Galaxy S24", Status: "active"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRepriceAllTx_PreservesDiscountPercent(t *testing.T) {
	repo, mock, closeDB := newMock(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT id, currency_price, price, discount_price.*FROM variants`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "currency_price", "price", "discount_price"}).
			AddRow(10, 10.0, 5_000_000, 4_000_000). // 20% off
			AddRow(11, 10.0, 5_000_000, 0))
	// new rate 600,000: 10 * 600,000 = 6,000,000; 20% off -> 4,800,000
	mock.ExpectExec(`(?s)UPDATE variants.*SET price = \$1, discount_price = \$2.*WHERE id = \$3`).
		WithArgs(int64(6_000_000), int64(4_800_000), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE variants.*SET price = \$1, discount_price = \$2.*WHERE id = \$3`).
		WithArgs(int64(6_000_000), int64(0), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	db := repoDB(t, repo)
	tx, err := db.Begin()
	require.NoError(t, err)

	n, err := repo.RepriceAllTx(context.Background(), tx, 600_000)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func repoDB(t *testing.T, r Repository) *sql.DB {
	t.Helper()
	impl, ok := r.(*repository)
	require.True(t, ok)
	return impl.db
}
