package handlers

import (
	"net/http"

	"parsshop-be/internal/httpx"
	"parsshop-be/internal/product"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	products product.Service
}

func NewCatalogHandler(products product.Service) *CatalogHandler {
	return &CatalogHandler{products: products}
}

func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	return r
}

func (h *CatalogHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/variants", h.createVariant)
	r.Put("/variants/{id}", h.updateVariant)
	r.Delete("/variants/{id}", h.deleteVariant)
	return r
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetProducts(r.Context(),
		queryString(r, "filter"), queryInt32(r, "limit"), queryInt32(r, "page"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid product id")
		return
	}
	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var input product.CreateProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	p, err := h.products.CreateProduct(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid product id")
		return
	}

	var p product.Product
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	p.ID = id

	if err := h.products.UpdateProduct(r.Context(), &p); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, &p)
}

func (h *CatalogHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid product id")
		return
	}
	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *CatalogHandler) createVariant(w http.ResponseWriter, r *http.Request) {
	var input product.CreateVariantInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	v, err := h.products.CreateVariant(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, v)
}

func (h *CatalogHandler) updateVariant(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid variant id")
		return
	}

	var v product.Variant
	if err := httpx.DecodeJSON(r, &v); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	v.ID = id

	if err := h.products.UpdateVariant(r.Context(), &v); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, &v)
}

func (h *CatalogHandler) deleteVariant(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid variant id")
		return
	}
	if err := h.products.DeleteVariant(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}
