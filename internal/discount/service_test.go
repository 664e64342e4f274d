package discount

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByCode(ctx context.Context, code string) (*DiscountCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DiscountCode), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *DiscountCode) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, c *DiscountCode) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, limit, page *int32) ([]*DiscountCode, error) {
	args := m.Called(ctx, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*DiscountCode), args.Error(1)
}

func (m *MockRepository) CountUserOrders(ctx context.Context, userID int64, code string) (int64, error) {
	args := m.Called(ctx, userID, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) IncrementUsageTx(ctx context.Context, tx *sql.Tx, code string) error {
	args := m.Called(ctx, tx, code)
	return args.Error(0)
}

func maxUses(v int64) *int64   { return &v }
func maxAmount(v int64) *int64 { return &v }

func activeCode(c DiscountCode) *DiscountCode {
	now := time.Now()
	if c.Code == "" {
		c.Code = "OFF10"
	}
	if c.Type == "" {
		c.Type = TypeFixed
	}
	if c.StartDate.IsZero() {
		c.StartDate = now.Add(-time.Hour)
	}
	if c.EndDate.IsZero() {
		c.EndDate = now.Add(time.Hour)
	}
	c.Active = true
	return &c
}

func TestValidate_Fixed(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetByCode", ctx, "OFF10").Return(activeCode(DiscountCode{Value: 10000}), nil)

	amount, err := svc.Validate(ctx, "OFF10", 240000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), amount)
}

func TestValidate_PercentageCapped(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetByCode", ctx, "OFF10").Return(activeCode(DiscountCode{
		Type:      TypePercentage,
		Value:     20,
		MaxAmount: maxAmount(30000),
	}), nil)

	// 20 percent of 240000 is 48000, capped to 30000
	amount, err := svc.Validate(ctx, "OFF10", 240000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), amount)
}

func TestValidate_PercentageUncapped(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetByCode", ctx, "OFF10").Return(activeCode(DiscountCode{
		Type:  TypePercentage,
		Value: 20,
	}), nil)

	amount, err := svc.Validate(ctx, "OFF10", 240000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(48000), amount)
}

func TestValidate_Failures(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "NOPE").Return(nil, ErrCodeNotFound)

		_, err := NewService(repo).Validate(ctx, "NOPE", 240000, 1)
		assert.ErrorIs(t, err, ErrCodeNotFound)
	})

	t.Run("Inactive", func(t *testing.T) {
		repo := new(MockRepository)
		c := activeCode(DiscountCode{Value: 1000})
		c.Active = false
		repo.On("GetByCode", ctx, "OFF10").Return(c, nil)

		_, err := NewService(repo).Validate(ctx, "OFF10", 240000, 1)
		assert.ErrorIs(t, err, ErrCodeInactive)
	})

	t.Run("NotStarted", func(t *testing.T) {
		repo := new(MockRepository)
		c := activeCode(DiscountCode{Value: 1000})
		c.StartDate = now.Add(time.Hour)
		c.EndDate = now.Add(2 * time.Hour)
		repo.On("GetByCode", ctx, "OFF10").Return(c, nil)

		_, err := NewService(repo).Validate(ctx, "OFF10", 240000, 1)
		assert.ErrorIs(t, err, ErrCodeNotStarted)
	})

	t.Run("Expired", func(t *testing.T) {
		repo := new(MockRepository)
		c := activeCode(DiscountCode{Value: 1000})
		c.StartDate = now.Add(-2 * time.Hour)
		c.EndDate = now.Add(-time.Hour)
		repo.On("GetByCode", ctx, "OFF10").Return(c, nil)

		_, err := NewService(repo).Validate(ctx, "OFF10", 240000, 1)
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("Exhausted", func(t *testing.T) {
		repo := new(MockRepository)
		c := activeCode(DiscountCode{Value: 1000, MaxUses: maxUses(5)})
		c.UsedCount = 5
		repo.On("GetByCode", ctx, "OFF10").Return(c, nil)

		_, err := NewService(repo).Validate(ctx, "OFF10", 240000, 1)
		assert.ErrorIs(t, err, ErrCodeExhausted)
	})

	t.Run("MinOrderNotMet", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "OFF10").Return(activeCode(DiscountCode{
			Value:    1000,
			MinOrder: 500000,
		}), nil)

		_, err := NewService(repo).Validate(ctx, "OFF10", 240000, 1)
		assert.ErrorIs(t, err, ErrMinOrderNotMet)
	})
}

func TestValidate_UserSpecific(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstUse", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "ONCE").Return(activeCode(DiscountCode{
			Code:         "ONCE",
			Value:        5000,
			UserSpecific: true,
		}), nil)
		repo.On("CountUserOrders", ctx, int64(7), "ONCE").Return(int64(0), nil)

		amount, err := NewService(repo).Validate(ctx, "ONCE", 240000, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), amount)
	})

	t.Run("SecondUseRejected", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByCode", ctx, "ONCE").Return(activeCode(DiscountCode{
			Code:         "ONCE",
			Value:        5000,
			UserSpecific: true,
		}), nil)
		repo.On("CountUserOrders", ctx, int64(7), "ONCE").Return(int64(1), nil)

		_, err := NewService(repo).Validate(ctx, "ONCE", 240000, 7)
		assert.ErrorIs(t, err, ErrCodeUsedByUser)
	})
}
