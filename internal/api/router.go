package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	mux := chi.NewRouter()
	mux.Use(mw.Log, mw.Recover, mw.Cors)

	mux.Route("/api", func(r chi.Router) {
		r.HandleFunc("/health", h.HealthHandler)

		r.Get("/checkout/{order_id}", h.Checkout)
		r.Get("/orders/{order_id}/status", h.OrderStatus)

		r.Post("/callbacks/invoice", h.InvoiceCallback)

		r.Route("/internal", func(r chi.Router) {
			r.Use(mw.APIKeyAuth)
			r.Get("/orders", h.Orders)
		})
	})

	return mux
}
