package handlers

import (
	"net/http"

	"parsshop-be/internal/address"
	"parsshop-be/internal/httpx"

	"github.com/go-chi/chi/v5"
)

type AddressHandler struct {
	addresses address.Service
}

func NewAddressHandler(addresses address.Service) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func (h *AddressHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/default", h.setDefault)
	return r
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.List(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, addresses)
}

func (h *AddressHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid address id")
		return
	}
	a, err := h.addresses.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request) {
	var input address.CreateAddressInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	a, err := h.addresses.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, a)
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid address id")
		return
	}

	var input address.UpdateAddressInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	input.AddressID = id
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	a, err := h.addresses.Update(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid address id")
		return
	}
	if err := h.addresses.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *AddressHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid address id")
		return
	}
	if err := h.addresses.SetDefaultAddress(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "default set"})
}
