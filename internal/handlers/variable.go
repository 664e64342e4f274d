package handlers

import (
	"net/http"

	"parsshop-be/internal/httpx"
	"parsshop-be/internal/variable"

	"github.com/go-chi/chi/v5"
)

type VariableHandler struct {
	variables variable.Service
}

func NewVariableHandler(variables variable.Service) *VariableHandler {
	return &VariableHandler{variables: variables}
}

func (h *VariableHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{name}", h.get)
	r.Put("/{name}", h.set)
	r.Put("/currency/rate", h.updateCurrency)
	return r
}

func (h *VariableHandler) list(w http.ResponseWriter, r *http.Request) {
	vars, err := h.variables.List(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, vars)
}

func (h *VariableHandler) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.variables.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, v)
}

type setVariableInput struct {
	Value string `json:"value" validate:"required"`
}

func (h *VariableHandler) set(w http.ResponseWriter, r *http.Request) {
	var input setVariableInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if err := h.variables.Set(r.Context(), chi.URLParam(r, "name"), input.Value); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type updateCurrencyInput struct {
	Rate float64 `json:"rate" validate:"gt=0"`
}

// updateCurrency changes the display exchange rate and reprices the
// whole catalog atomically.
func (h *VariableHandler) updateCurrency(w http.ResponseWriter, r *http.Request) {
	var input updateCurrencyInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	repriced, err := h.variables.UpdateCurrency(r.Context(), input.Rate)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]int64{"repriced_variants": repriced})
}
