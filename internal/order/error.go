package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOutOfStock         = errors.New("variant out of stock")
	ErrAccessDenied       = errors.New("cannot access others' orders")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrNotOnlineOrder     = errors.New("order is not an online-payment order")
	ErrPaymentCanceled    = errors.New("payment canceled at the gateway")
	ErrOverGatewayCeiling = errors.New("amount exceeds the gateway ceiling")
)

// InvalidTransitionError rejects a status change outside the transition
// table. Mapped to 422 by the HTTP layer.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
