package handlers

import (
	"net/http"

	"parsshop-be/internal/httpx"
	"parsshop-be/internal/order"
	"parsshop-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/finalize-payment", h.finalizePayment)
	return r
}

// AdminRoutes are mounted behind RequireAdmin.
func (h *OrderHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.adminCreate)
	r.Patch("/{id}/status", h.changeStatus)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var input order.CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	result, err := h.orders.Create(r.Context(), userID, input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, result)
}

func (h *OrderHandler) adminCreate(w http.ResponseWriter, r *http.Request) {
	var input order.AdminCreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	result, err := h.orders.AdminCreate(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, result)
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid order id")
		return
	}

	var input order.UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}

	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)
	o, err := h.orders.Update(ctx, userID, id, input, utils.IsAdmin(ctx))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}

type changeStatusInput struct {
	Status order.Status `json:"status" validate:"required,oneof=1 2 3 4"`
}

func (h *OrderHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid order id")
		return
	}

	var input changeStatusInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	o, err := h.orders.ChangeStatus(r.Context(), id, input.Status)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) finalizePayment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid order id")
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	result, err := h.orders.FinalizePayment(r.Context(), userID, id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid order id")
		return
	}

	ctx := r.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)
	o, err := h.orders.Get(ctx, userID, id, utils.IsAdmin(ctx))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := &order.Filter{}

	if utils.IsAdmin(ctx) {
		if raw := queryString(r, "user_id"); raw != nil {
			if id, err := utils.ToInt64(*raw); err == nil {
				filter.UserID = &id
			}
		}
	} else {
		// Non-admins only ever see their own orders.
		userID, _ := utils.GetUserIDFromContext(ctx)
		filter.UserID = &userID
	}
	if raw := queryString(r, "status"); raw != nil {
		s := order.Status(*raw)
		filter.Status = &s
	}
	if raw := queryInt32(r, "payment_status"); raw != nil {
		ps := int(*raw)
		filter.PaymentStatus = &ps
	}

	orders, err := h.orders.List(ctx, filter, queryInt32(r, "limit"), queryInt32(r, "page"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid order id")
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}

// Callback receives the gateway redirect after a payment attempt. The
// gateway appends Authority and Status as query parameters.
func (h *OrderHandler) Callback(w http.ResponseWriter, r *http.Request) {
	authority := r.URL.Query().Get("Authority")
	if authority == "" {
		httpx.BadRequest(w, "missing Authority")
		return
	}
	callbackStatus := r.URL.Query().Get("Status")

	o, refID, err := h.orders.VerifyPayment(r.Context(), authority, callbackStatus)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"order":  o,
		"ref_id": refID,
	})
}
