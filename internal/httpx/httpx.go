package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"parsshop-be/internal/address"
	"parsshop-be/internal/brand"
	"parsshop-be/internal/category"
	"parsshop-be/internal/discount"
	"parsshop-be/internal/logger"
	"parsshop-be/internal/order"
	"parsshop-be/internal/payment"
	"parsshop-be/internal/pricing"
	"parsshop-be/internal/product"
	"parsshop-be/internal/user"
	"parsshop-be/internal/variable"
	"parsshop-be/internal/verification"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RespondJSON writes the payload with the given status. A nil payload
// writes only the status line.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// RespondError maps a domain error onto an HTTP status and writes it as
// a JSON body. Unrecognized errors become a 500 with a generic message
// so internals never leak to clients.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
		msg = "internal server error"
	}
	RespondJSON(w, status, errorBody{Error: msg})
}

func statusFor(err error) (int, string) {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, verr.Msg
	}
	var terr *order.InvalidTransitionError
	if errors.As(err, &terr) {
		return http.StatusUnprocessableEntity, terr.Error()
	}
	var gerr *payment.GatewayError
	if errors.As(err, &gerr) {
		return http.StatusBadGateway, gerr.Message
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusUnprocessableEntity, validationErrs.Error()
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, product.ErrVariantNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, discount.ErrCodeNotFound),
		errors.Is(err, variable.ErrVariableNotFound),
		errors.Is(err, category.ErrCategoryNotFound),
		errors.Is(err, brand.ErrBrandNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, order.ErrAccessDenied):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, address.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, order.ErrOutOfStock),
		errors.Is(err, order.ErrNotOnlineOrder),
		errors.Is(err, order.ErrOverGatewayCeiling),
		errors.Is(err, product.ErrNoExchangeRate),
		errors.Is(err, discount.ErrCodeExhausted),
		errors.Is(err, discount.ErrCodeInactive),
		errors.Is(err, discount.ErrCodeNotStarted),
		errors.Is(err, discount.ErrCodeExpired),
		errors.Is(err, discount.ErrCodeUsedByUser),
		errors.Is(err, discount.ErrMinOrderNotMet),
		errors.Is(err, verification.ErrCodeExpired),
		errors.Is(err, verification.ErrCodeInvalid):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, user.ErrPhoneExists):
		return http.StatusConflict, err.Error()

	case errors.Is(err, order.ErrPaymentCanceled):
		return http.StatusPaymentRequired, err.Error()
	}

	return http.StatusInternalServerError, err.Error()
}

// DecodeJSON parses the request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// BadRequest reports an unparseable request body.
func BadRequest(w http.ResponseWriter, msg string) {
	RespondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
