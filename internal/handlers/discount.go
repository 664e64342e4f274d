package handlers

import (
	"net/http"

	"parsshop-be/internal/discount"
	"parsshop-be/internal/httpx"
	"parsshop-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type DiscountHandler struct {
	discounts discount.Service
}

func NewDiscountHandler(discounts discount.Service) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// Routes carries the authenticated check endpoint; management lives
// under AdminRoutes.
func (h *DiscountHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/check", h.check)
	return r
}

func (h *DiscountHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

type checkCodeInput struct {
	Code      string `json:"code" validate:"required"`
	CostBasis int64  `json:"cost_basis" validate:"gt=0"`
}

// check lets a client pre-validate a code before submitting an order.
// The authoritative check still runs inside order creation.
func (h *DiscountHandler) check(w http.ResponseWriter, r *http.Request) {
	var input checkCodeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	amount, err := h.discounts.Validate(r.Context(), input.Code, input.CostBasis, userID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]int64{"discount_amount": amount})
}

func (h *DiscountHandler) list(w http.ResponseWriter, r *http.Request) {
	codes, err := h.discounts.List(r.Context(), queryInt32(r, "limit"), queryInt32(r, "page"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, codes)
}

func (h *DiscountHandler) create(w http.ResponseWriter, r *http.Request) {
	var input discount.CreateCodeInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	c, err := h.discounts.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, c)
}

func (h *DiscountHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid code id")
		return
	}

	var c discount.DiscountCode
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	c.ID = id

	if err := h.discounts.Update(r.Context(), &c); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, &c)
}

func (h *DiscountHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid code id")
		return
	}
	if err := h.discounts.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}
