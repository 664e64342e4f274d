package product

import (
	"context"
	"errors"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/pricing"

	"go.uber.org/zap"
)

var ErrNoExchangeRate = errors.New("exchange rate not configured")

// RateSource provides the current display-conversion rate. Satisfied by the
// variable repository; declared here so the catalog does not depend on it.
type RateSource interface {
	GetRate(ctx context.Context, name string) (float64, error)
}

// DisplayRateName is the variable consulted when deriving variant display
// prices from their foreign-currency cost.
const DisplayRateName = "usdToIrr"

type Service interface {
	GetProducts(ctx context.Context, filter *string, limit, page *int32) ([]*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error

	GetVariant(ctx context.Context, id int64) (*Variant, error)
	CreateVariant(ctx context.Context, input CreateVariantInput) (*Variant, error)
	UpdateVariant(ctx context.Context, v *Variant) error
	DeleteVariant(ctx context.Context, id int64) error
}

type service struct {
	repo  Repository
	rates RateSource
}

func NewService(repo Repository, rates RateSource) Service {
	return &service{repo: repo, rates: rates}
}

func (s *service) GetProducts(ctx context.Context, filter *string, limit, page *int32) ([]*Product, error) {
	return s.repo.GetProducts(ctx, filter, limit, page)
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	p := &Product{
		Name:        input.Name,
		BrandID:     input.BrandID,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Status:      "active",
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	return s.repo.UpdateProduct(ctx, p)
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *service) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	return s.repo.GetVariant(ctx, id)
}

// CreateVariant derives the local display price from the foreign-currency
// cost at the current rate, snapping to the display denomination. The
// discount is stored as a derived price but entered as a percentage.
func (s *service) CreateVariant(ctx context.Context, input CreateVariantInput) (*Variant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Product"),
		zap.String("method", "CreateVariant"),
		zap.Int64("product_id", input.ProductID),
	)

	if _, err := s.repo.GetProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	rate, err := s.rates.GetRate(ctx, DisplayRateName)
	if err != nil {
		log.Error("rate lookup failed", zap.Error(err))
		return nil, ErrNoExchangeRate
	}

	price := pricing.DisplayPrice(input.CurrencyPrice, rate)
	v := &Variant{
		ProductID:     input.ProductID,
		Color:         input.Color,
		Kind:          input.Kind,
		Stock:         input.Stock,
		CurrencyPrice: input.CurrencyPrice,
		Price:         price,
		DiscountPrice: pricing.DiscountedDisplayPrice(price, input.DiscountPercent),
	}
	if err := s.repo.CreateVariant(ctx, v); err != nil {
		log.Error("insert failed", zap.Error(err))
		return nil, err
	}

	return v, nil
}

func (s *service) UpdateVariant(ctx context.Context, v *Variant) error {
	return s.repo.UpdateVariant(ctx, v)
}

func (s *service) DeleteVariant(ctx context.Context, id int64) error {
	return s.repo.DeleteVariant(ctx, id)
}
