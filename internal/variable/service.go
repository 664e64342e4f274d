package variable

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context, name string) (*Variable, error)
	List(ctx context.Context) ([]*Variable, error)
	Set(ctx context.Context, name, value string) error

	// UpdateCurrency changes the display rate and reprices every variant in
	// the same transaction, so readers never observe a new rate with old
	// prices or vice versa.
	UpdateCurrency(ctx context.Context, rate float64) (int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	products product.Repository
}

func NewService(db *sql.DB, repo Repository, products product.Repository) Service {
	return &service{db: db, repo: repo, products: products}
}

func (s *service) Get(ctx context.Context, name string) (*Variable, error) {
	return s.repo.Get(ctx, name)
}

func (s *service) List(ctx context.Context) ([]*Variable, error) {
	return s.repo.List(ctx)
}

func (s *service) Set(ctx context.Context, name, value string) error {
	return s.repo.Set(ctx, name, value)
}

func (s *service) UpdateCurrency(ctx context.Context, rate float64) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Variable"),
		zap.String("method", "UpdateCurrency"),
		zap.Float64("rate", rate),
	)

	if rate <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %f", rate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	value := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := s.repo.SetTx(ctx, tx, RateUSDToIRR, value); err != nil {
		log.Error("updating rate variable failed", zap.Error(err))
		return 0, err
	}

	count, err := s.products.RepriceAllTx(ctx, tx, rate)
	if err != nil {
		log.Error("repricing failed", zap.Error(err))
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	log.Info("currency updated and variants repriced", zap.Int64("count", count))
	return count, nil
}
