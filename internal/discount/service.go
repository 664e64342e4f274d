package discount

import (
	"context"
	"errors"
	"time"

	"parsshop-be/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrCodeInactive   = errors.New("discount code is not active")
	ErrCodeNotStarted = errors.New("discount code is not yet valid")
	ErrCodeExpired    = errors.New("discount code has expired")
	ErrCodeUsedByUser = errors.New("discount code already used by this user")
	ErrMinOrderNotMet = errors.New("order total below the code's minimum")
)

type Service interface {
	// Validate runs the ordered checks against a cost basis and returns the
	// discount amount on success. Checks short-circuit on first failure.
	Validate(ctx context.Context, code string, orderCostBasis, userID int64) (int64, error)

	Create(ctx context.Context, input CreateCodeInput) (*DiscountCode, error)
	Update(ctx context.Context, c *DiscountCode) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, page *int32) ([]*DiscountCode, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Validate(ctx context.Context, code string, orderCostBasis, userID int64) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Discount"),
		zap.String("method", "Validate"),
		zap.String("code", code),
		zap.Int64("user_id", userID),
	)

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return 0, err
	}

	now := s.now()
	if !c.Active {
		return 0, ErrCodeInactive
	}
	if now.Before(c.StartDate) {
		return 0, ErrCodeNotStarted
	}
	if now.After(c.EndDate) {
		return 0, ErrCodeExpired
	}

	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return 0, ErrCodeExhausted
	}

	if c.UserSpecific {
		used, err := s.repo.CountUserOrders(ctx, userID, c.Code)
		if err != nil {
			log.Error("usage lookup failed", zap.Error(err))
			return 0, err
		}
		if used > 0 {
			return 0, ErrCodeUsedByUser
		}
	}

	if c.MinOrder > 0 && orderCostBasis < c.MinOrder {
		return 0, ErrMinOrderNotMet
	}

	amount := c.Value
	if c.Type == TypePercentage {
		amount = orderCostBasis * c.Value / 100
		if c.MaxAmount != nil && amount > *c.MaxAmount {
			amount = *c.MaxAmount
		}
	}

	log.Debug("discount validated", zap.Int64("amount", amount))
	return amount, nil
}

func (s *service) Create(ctx context.Context, input CreateCodeInput) (*DiscountCode, error) {
	c := &DiscountCode{
		Code:         input.Code,
		Type:         input.Type,
		Value:        input.Value,
		MinOrder:     input.MinOrder,
		MaxAmount:    input.MaxAmount,
		MaxUses:      input.MaxUses,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Active:       input.Active,
		UserSpecific: input.UserSpecific,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, c *DiscountCode) error {
	return s.repo.Update(ctx, c)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, limit, page *int32) ([]*DiscountCode, error) {
	return s.repo.List(ctx, limit, page)
}
