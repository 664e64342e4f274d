package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"parsshop-be/internal/order"
	"parsshop-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettler struct {
	mock.Mock
}

func (m *MockSettler) ListStale(ctx context.Context, olderThan time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, olderThan)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockSettler) VerifyPayment(ctx context.Context, authority, callbackStatus string) (*order.Order, int64, error) {
	args := m.Called(ctx, authority, callbackStatus)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Get(1).(int64), args.Error(2)
}

type MockCodes struct {
	mock.Mock
}

func (m *MockCodes) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func staleOrder(id int64, authority string) *order.Order {
	return &order.Order{
		ID:          id,
		PaymentType: order.PaymentOnline,
		Authority:   &authority,
	}
}

func newSweeper(settler *MockSettler, codes *MockCodes) *Sweeper {
	s := New(settler, codes)
	s.now = func() time.Time {
		return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	}
	return s
}

func TestSweep_SettlesStaleOrders(t *testing.T) {
	settler := new(MockSettler)
	codes := new(MockCodes)

	settler.On("ListStale", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return cutoff.Equal(time.Date(2024, 3, 20, 11, 30, 0, 0, time.UTC))
	})).Return([]*order.Order{
		staleOrder(1, "A0001"),
		staleOrder(2, "A0002"),
	}, nil)
	settler.On("VerifyPayment", mock.Anything, "A0001", "").
		Return(staleOrder(1, "A0001"), int64(111), nil)
	settler.On("VerifyPayment", mock.Anything, "A0002", "").
		Return(staleOrder(2, "A0002"), int64(222), nil)
	codes.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(3), nil)

	settled := newSweeper(settler, codes).Sweep(context.Background())
	assert.Equal(t, 2, settled)
	codes.AssertCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
}

func TestSweep_OneFailureDoesNotStopTheRest(t *testing.T) {
	settler := new(MockSettler)
	codes := new(MockCodes)

	settler.On("ListStale", mock.Anything, mock.Anything).Return([]*order.Order{
		staleOrder(1, "A0001"),
		staleOrder(2, "A0002"),
		staleOrder(3, "A0003"),
	}, nil)
	settler.On("VerifyPayment", mock.Anything, "A0001", "").
		Return(staleOrder(1, "A0001"), int64(111), nil)
	settler.On("VerifyPayment", mock.Anything, "A0002", "").
		Return(nil, int64(0), errors.New("connection reset"))
	settler.On("VerifyPayment", mock.Anything, "A0003", "").
		Return(staleOrder(3, "A0003"), int64(333), nil)
	codes.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), nil)

	settled := newSweeper(settler, codes).Sweep(context.Background())
	assert.Equal(t, 2, settled)
	settler.AssertNumberOfCalls(t, "VerifyPayment", 3)
}

func TestSweep_PanicIsolatedPerOrder(t *testing.T) {
	settler := new(MockSettler)
	codes := new(MockCodes)

	settler.On("ListStale", mock.Anything, mock.Anything).Return([]*order.Order{
		staleOrder(1, "A0001"),
		staleOrder(2, "A0002"),
	}, nil)
	settler.On("VerifyPayment", mock.Anything, "A0001", "").
		Run(func(mock.Arguments) { panic("boom") }).
		Return(nil, int64(0), nil)
	settler.On("VerifyPayment", mock.Anything, "A0002", "").
		Return(staleOrder(2, "A0002"), int64(222), nil)
	codes.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), nil)

	settled := newSweeper(settler, codes).Sweep(context.Background())
	assert.Equal(t, 1, settled)
}

func TestSweep_TerminalGatewayCodeLoggedNotRetriedAsSettled(t *testing.T) {
	settler := new(MockSettler)
	codes := new(MockCodes)

	settler.On("ListStale", mock.Anything, mock.Anything).Return([]*order.Order{
		staleOrder(1, "A0001"),
	}, nil)
	gerr := &payment.GatewayError{Code: -51, Message: payment.MessageFor(-51)}
	settler.On("VerifyPayment", mock.Anything, "A0001", "").
		Return(nil, int64(0), gerr)
	codes.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), nil)

	settled := newSweeper(settler, codes).Sweep(context.Background())
	assert.Equal(t, 0, settled)
}

func TestSweep_ListFailureAbortsRun(t *testing.T) {
	settler := new(MockSettler)
	codes := new(MockCodes)

	settler.On("ListStale", mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	settled := newSweeper(settler, codes).Sweep(context.Background())
	assert.Equal(t, 0, settled)
	settler.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
	codes.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(new(MockSettler), new(MockCodes))
	require.Error(t, s.Start("not a cron spec"))
}
