package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parsshop-be/internal/order"
	"parsshop-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, userID int64, input order.CreateInput) (*order.CreateResult, error) {
	args := m.Called(ctx, userID, input)
	res, _ := args.Get(0).(*order.CreateResult)
	return res, args.Error(1)
}

func (m *MockOrderService) AdminCreate(ctx context.Context, input order.AdminCreateInput) (*order.CreateResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*order.CreateResult)
	return res, args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, userID, orderID int64, input order.UpdateInput, admin bool) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID, input, admin)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) ChangeStatus(ctx context.Context, orderID int64, to order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, to)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) VerifyPayment(ctx context.Context, authority, callbackStatus string) (*order.Order, int64, error) {
	args := m.Called(ctx, authority, callbackStatus)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) FinalizePayment(ctx context.Context, userID, orderID int64) (*order.CreateResult, error) {
	args := m.Called(ctx, userID, orderID)
	res, _ := args.Get(0).(*order.CreateResult)
	return res, args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, userID, orderID int64, admin bool) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID, admin)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter *order.Filter, limit, page *int32) ([]*order.Order, error) {
	args := m.Called(ctx, filter, limit, page)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) ListStale(ctx context.Context, olderThan time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, olderThan)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func asUser(req *http.Request, id int64, role string) *http.Request {
	ctx := utils.SetUserContext(req.Context(), id, "09120000000", role)
	return req.WithContext(ctx)
}

func TestCreateOrder(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("Create", mock.Anything, int64(7), mock.MatchedBy(func(in order.CreateInput) bool {
		return len(in.Items) == 1 && in.PaymentType == order.PaymentOnline
	})).Return(&order.CreateResult{
		Order:       &order.Order{ID: 42, UserID: 7},
		RedirectURL: "https://gateway.example/pay/A0001",
	}, nil)

	body := `{"items":[{"variant_id":10,"quantity":2,"price":100000,"discount_price":0}],"type_of_payment":"1"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), 7, "USER")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "gateway.example")
	svc.AssertExpectations(t)
}

func TestCreateOrder_EmptyItemsRejected(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	body := `{"items":[],"type_of_payment":"0"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), 7, "USER")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_OutOfStockMapsTo422(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("Create", mock.Anything, int64(7), mock.Anything).
		Return(nil, order.ErrOutOfStock)

	body := `{"items":[{"variant_id":10,"quantity":5,"price":100000,"discount_price":0}],"type_of_payment":"0"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), 7, "USER")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestChangeStatus(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("ChangeStatus", mock.Anything, int64(42), order.StatusDelivered).
		Return(&order.Order{ID: 42, Status: order.StatusDelivered}, nil)

	req := asUser(httptest.NewRequest(http.MethodPatch, "/42/status", strings.NewReader(`{"status":"2"}`)), 1, "ADMIN")
	rr := httptest.NewRecorder()
	h.AdminRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestChangeStatus_InvalidTransitionMapsTo422(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("ChangeStatus", mock.Anything, int64(42), order.StatusSubmitted).
		Return(nil, &order.InvalidTransitionError{From: order.StatusDelivered, To: order.StatusSubmitted})

	req := asUser(httptest.NewRequest(http.MethodPatch, "/42/status", strings.NewReader(`{"status":"1"}`)), 1, "ADMIN")
	rr := httptest.NewRecorder()
	h.AdminRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCallback_Settles(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("VerifyPayment", mock.Anything, "A0001", "OK").
		Return(&order.Order{ID: 42, PaymentStatus: order.PaymentStatusPaid}, int64(987654), nil)

	req := httptest.NewRequest(http.MethodGet, "/payment/callback?Authority=A0001&Status=OK", nil)
	rr := httptest.NewRecorder()
	h.Callback(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "987654")
}

func TestCallback_CanceledMapsTo402(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("VerifyPayment", mock.Anything, "A0001", "NOK").
		Return(nil, int64(0), order.ErrPaymentCanceled)

	req := httptest.NewRequest(http.MethodGet, "/payment/callback?Authority=A0001&Status=NOK", nil)
	rr := httptest.NewRecorder()
	h.Callback(rr, req)

	assert.Equal(t, http.StatusPaymentRequired, rr.Code)
}

func TestList_NonAdminScopedToOwnOrders(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f *order.Filter) bool {
		return f.UserID != nil && *f.UserID == 7
	}), (*int32)(nil), (*int32)(nil)).Return([]*order.Order{}, nil)

	// Asking for someone else's orders is ignored for non-admins.
	req := asUser(httptest.NewRequest(http.MethodGet, "/?user_id=99", nil), 7, "USER")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestFinalizePayment(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)

	svc.On("FinalizePayment", mock.Anything, int64(7), int64(42)).
		Return(&order.CreateResult{RedirectURL: "https://gateway.example/pay/A0002"}, nil)

	req := asUser(httptest.NewRequest(http.MethodPost, "/42/finalize-payment", nil), 7, "USER")
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A0002")
}
