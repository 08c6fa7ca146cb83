package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ferreirogomes/contatos/metrics"
	"github.com/ferreirogomes/contatos/models"
)

// NewRouter monta todas as rotas da API.
func NewRouter(store Store, clusters map[models.Network]Cluster) chi.Router {
	contactHandler := NewContactHandler(store)
	userHandler := NewUserHandler(store)
	paymentHandler := NewPaymentHandler(store, clusters)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", contactHandler.CreateContact)
		r.Get("/", contactHandler.ListContacts)
		r.Post("/qr", contactHandler.BuildContactQR)
		r.Post("/qr/parse", contactHandler.ParseContactQR)
		r.Get("/{id}", contactHandler.GetContact)
		r.Put("/{id}", contactHandler.UpdateContact)
		r.Delete("/{id}", contactHandler.DeleteContact)
		r.Get("/{id}/qr", contactHandler.ContactQR)
		r.Post("/{id}/templates", contactHandler.CreateTemplate)
		r.Get("/{id}/templates", contactHandler.ListTemplates)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/{id}", contactHandler.GetTemplate)
		r.Delete("/{id}", contactHandler.DeleteTemplate)
		r.Post("/{id}/use", paymentHandler.UseTemplate)
	})

	r.Get("/profile", userHandler.GetProfile)
	r.Put("/profile", userHandler.SaveProfile)
	r.Get("/settings/network", userHandler.GetNetwork)
	r.Put("/settings/network", userHandler.SetNetwork)

	r.Get("/wallets/{address}/balances", paymentHandler.GetBalances)
	r.Get("/addresses/{address}/validate", paymentHandler.ValidateAddress)

	r.Route("/payments", func(r chi.Router) {
		r.Post("/send", paymentHandler.Send)
		r.Get("/pending", paymentHandler.ListPending)
		r.Post("/pending/{id}", paymentHandler.ResolvePending)
	})

	return r
}
