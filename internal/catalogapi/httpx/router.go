package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/auth"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/httpx/middlewares"
)

func NewRouter(handler *Handler, issuer *auth.Issuer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)

		r.Get("/parts/public", handler.ListPublicParts)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAuth(issuer))

			r.Get("/auth/profile", handler.Profile)
			r.Get("/parts/store", handler.ListStoreParts)
			r.Get("/parts/{id}", handler.GetPart)
			r.Post("/parts", handler.CreatePart)
			r.Put("/parts/{id}", handler.UpdatePart)
			r.Delete("/parts/{id}", handler.DeletePart)
		})
	})

	return r
}
