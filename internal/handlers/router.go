package handlers

import (
	"net/http"

	"parsshop-be/internal/logger"
	"parsshop-be/internal/metrics"
	"parsshop-be/internal/middleware"
	"parsshop-be/internal/user"

	"github.com/go-chi/chi/v5"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Issuer    *user.TokenIssuer
	Users     *UserHandler
	Orders    *OrderHandler
	Catalog   *CatalogHandler
	Taxonomy  *TaxonomyHandler
	Discounts *DiscountHandler
	Addresses *AddressHandler
	Variables *VariableHandler
}

// NewRouter wires the middleware chain and mounts every handler.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.Authenticate(d.Issuer))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/auth", d.Users.Routes())

	r.Mount("/products", d.Catalog.Routes())
	r.Mount("/categories", d.Taxonomy.CategoryRoutes())
	r.Mount("/brands", d.Taxonomy.BrandRoutes())

	// The gateway redirects the buyer's browser here; the sweeper covers
	// lost callbacks.
	r.Get("/payment/callback", d.Orders.Callback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Mount("/profile", d.Users.ProfileRoutes())
		r.Mount("/addresses", d.Addresses.Routes())
		r.Mount("/orders", d.Orders.Routes())
		r.Mount("/discounts", d.Discounts.Routes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireAdmin)
		r.Mount("/orders", d.Orders.AdminRoutes())
		r.Mount("/products", d.Catalog.AdminRoutes())
		r.Mount("/categories", d.Taxonomy.CategoryAdminRoutes())
		r.Mount("/brands", d.Taxonomy.BrandAdminRoutes())
		r.Mount("/discounts", d.Discounts.AdminRoutes())
		r.Mount("/variables", d.Variables.AdminRoutes())
	})

	return r
}
