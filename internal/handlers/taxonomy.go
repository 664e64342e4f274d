package handlers

import (
	"net/http"

	"parsshop-be/internal/brand"
	"parsshop-be/internal/category"
	"parsshop-be/internal/httpx"

	"github.com/go-chi/chi/v5"
)

// TaxonomyHandler serves the category and brand trees the catalog hangs
// off of.
type TaxonomyHandler struct {
	categories category.Service
	brands     brand.Service
}

func NewTaxonomyHandler(categories category.Service, brands brand.Service) *TaxonomyHandler {
	return &TaxonomyHandler{categories: categories, brands: brands}
}

func (h *TaxonomyHandler) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listCategories)
	r.Get("/{id}", h.getCategory)
	return r
}

func (h *TaxonomyHandler) CategoryAdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.createCategory)
	r.Put("/{id}", h.renameCategory)
	r.Delete("/{id}", h.deleteCategory)
	return r
}

func (h *TaxonomyHandler) BrandRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listBrands)
	r.Get("/{id}", h.getBrand)
	return r
}

func (h *TaxonomyHandler) BrandAdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.createBrand)
	r.Delete("/{id}", h.deleteBrand)
	return r
}

func (h *TaxonomyHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context(),
		queryString(r, "filter"), queryInt32(r, "limit"), queryInt32(r, "page"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, categories)
}

func (h *TaxonomyHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid category id")
		return
	}
	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *TaxonomyHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var input category.CreateCategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	c, err := h.categories.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, c)
}

type renameCategoryInput struct {
	Name string `json:"name" validate:"required"`
}

func (h *TaxonomyHandler) renameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid category id")
		return
	}

	var input renameCategoryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	c, err := h.categories.Rename(r.Context(), id, input.Name)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *TaxonomyHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid category id")
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *TaxonomyHandler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context(),
		queryString(r, "filter"), queryInt32(r, "limit"), queryInt32(r, "page"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, brands)
}

func (h *TaxonomyHandler) getBrand(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid brand id")
		return
	}
	b, err := h.brands.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, b)
}

func (h *TaxonomyHandler) createBrand(w http.ResponseWriter, r *http.Request) {
	var input brand.CreateBrandInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	b, err := h.brands.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, b)
}

func (h *TaxonomyHandler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.BadRequest(w, "invalid brand id")
		return
	}
	if err := h.brands.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondJSON(w, http.StatusNoContent, nil)
}
