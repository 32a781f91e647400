package http

import (
	"net/http"

	"github.com/ludinhdung/programming-learning-sub003/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler, adminTokenHash string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/checkout", func(r chi.Router) {
		// The provider calls the webhook directly; it authenticates with its
		// signature, not with user identity.
		r.Post("/webhook", handler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Post("/create-payment", handler.CreatePayment)
			r.Post("/cancel-payment/{orderCode}", handler.CancelPayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(adminTokenHash))
			r.Get("/payment-info/{orderCode}", handler.PaymentInfo)
		})
	})

	r.Route("/instructor", func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/withdrawals", handler.RequestWithdrawal)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin(adminTokenHash))
		r.Get("/transactions", handler.ListTransactions)
		r.Get("/transactions/{id}", handler.GetTransaction)
		r.Patch("/transactions/{id}/status", handler.ReviewTransaction)
	})

	return &Server{Router: r}
}
