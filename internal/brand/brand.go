package brand

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"parsshop-be/internal/utils"
)

var ErrBrandNotFound = errors.New("brand not found")

type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CreateBrandInput struct {
	Name string `json:"name" validate:"required"`
}

type Repository interface {
	List(ctx context.Context, filter *string, limit, page *int32) ([]*Brand, error)
	GetByID(ctx context.Context, id int64) (*Brand, error)
	Create(ctx context.Context, b *Brand) error
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filter *string, limit, page *int32) ([]*Brand, error) {
	finalLimit := int32(20)
	finalPage := int32(1)
	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if page != nil && *page > 0 {
		finalPage = *page
	}

	query := `SELECT b.id, b.name, b.slug FROM brands b`
	where := []string{}
	args := []interface{}{}

	if filter != nil && *filter != "" {
		where = append(where, fmt.Sprintf("b.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*filter+"%")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.name ASC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, finalLimit, (finalPage-1)*finalLimit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []*Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug); err != nil {
			return nil, err
		}
		brands = append(brands, &b)
	}
	return brands, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Brand, error) {
	var b Brand
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM brands WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Slug)
	if err == sql.ErrNoRows {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Create(ctx context.Context, b *Brand) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO brands (name, slug)
		VALUES ($1, $2)
		RETURNING id
	`, b.Name, b.Slug).Scan(&b.ID)
}

func (r *repository) Update(ctx context.Context, b *Brand) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE brands SET name = $1, slug = $2 WHERE id = $3
	`, b.Name, b.Slug, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBrandNotFound
	}
	return nil
}

type Service interface {
	List(ctx context.Context, filter *string, limit, page *int32) ([]*Brand, error)
	Get(ctx context.Context, id int64) (*Brand, error)
	Create(ctx context.Context, input CreateBrandInput) (*Brand, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter *string, limit, page *int32) ([]*Brand, error) {
	return s.repo.List(ctx, filter, limit, page)
}

func (s *service) Get(ctx context.Context, id int64) (*Brand, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateBrandInput) (*Brand, error) {
	b := &Brand{Name: input.Name, Slug: utils.Slugify(input.Name)}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
