package category

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestGetCategories_Filtered(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(`SELECT c\.id, c\.name, c\.slug FROM categories c WHERE c\.name ILIKE \$1`).
		WithArgs("%موبایل%", int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(1), "موبایل", "mobile"))

	filter := "موبایل"
	cats, err := repo.GetCategories(context.Background(), &filter, nil, nil)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "موبایل", cats[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(`SELECT id, name, slug FROM categories WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoMock(t)

	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("Mobile Phones", "mobile-phones").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	c := &Category{Name: "Mobile Phones", Slug: "mobile-phones"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(3), c.ID)
}
