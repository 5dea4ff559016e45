package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lucasblanco/caja/internal/http/agreement"
	"github.com/lucasblanco/caja/internal/http/balance"
	"github.com/lucasblanco/caja/internal/http/savings"
	"github.com/lucasblanco/caja/internal/http/transaction"
)

func New(
	transactionsV1 *transaction.Handler,
	agreementsV1 *agreement.Handler,
	balanceV1 *balance.Handler,
	savingsV1 *savings.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/agreements", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			agreementsV1.Routes(r)
		})

		r.Route("/balance", balanceV1.Routes)

		r.Route("/savings", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			savingsV1.Routes(r)
		})
	})

	return router
}
