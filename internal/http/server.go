package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewRouter exposes the controller as a JSON API for a local UI.
func NewRouter(ctrl *app.Controller, cfg *config.Config, log *zap.Logger) http.Handler {
	h := NewHandler(ctrl, cfg.Media, log)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	r.Use(BodyLimit(cfg.HTTP.MaxRequestBodySize))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Post("/navigate", h.Navigate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
		})

		r.Get("/products", h.ListProducts)
		r.Post("/products/refresh", h.RefreshProducts)

		r.Route("/cart/items", func(r chi.Router) {
			r.Post("/", h.AddItem)
			r.Put("/{product_id}", h.UpdateQuantity)
			r.Delete("/{product_id}", h.RemoveItem)
		})
		r.Post("/checkout", h.Checkout)
		r.Post("/contact", h.Contact)

		r.Route("/admin/products", func(r chi.Router) {
			r.Post("/", h.CreateProduct)
			r.Get("/export", h.ExportProducts)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

// NewServer applies the configured address and timeouts.
func NewServer(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
