package payment

import "context"

// RequestParams describes one payment session request to the gateway.
// Amount is in local currency (Rial).
type RequestParams struct {
	Amount      int64
	CallbackURL string
	Description string
	Mobile      string
	OrderID     int64
}

// RequestResult carries the gateway session token and where to send the
// buyer's browser.
type RequestResult struct {
	Authority   string
	RedirectURL string
}

// VerifyResult reports the verification outcome. Code 100 is a first-time
// verification, 101 an already-verified session; both mean the charge went
// through.
type VerifyResult struct {
	Code  int
	RefID int64
}

func (v *VerifyResult) AlreadyVerified() bool {
	return v.Code == codeAlreadyVerified
}

type Gateway interface {
	RequestPayment(ctx context.Context, params RequestParams) (*RequestResult, error)
	VerifyPayment(ctx context.Context, authority string, amount int64) (*VerifyResult, error)
}
