package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bankcards-api/internal/api"
	apiMiddleware "github.com/phrazzld/bankcards-api/internal/api/middleware"
	"github.com/phrazzld/bankcards-api/internal/api/shared"
)

// setupRouter creates the application router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	pagination := app.pagination()
	authHandler := api.NewAuthHandler(app.authService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, pagination, app.logger)
	adminCardHandler := api.NewAdminCardHandler(app.cardService, pagination, app.logger)
	adminUserHandler := api.NewAdminUserHandler(app.userService, pagination, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userStore)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/cards", func(r chi.Router) {
				r.Get("/my", cardHandler.ListMyCards)
				r.Post("/transfer", cardHandler.Transfer)
				r.Get("/{id}", cardHandler.GetCard)
				r.Get("/{id}/balance", cardHandler.GetBalance)
				r.Post("/{id}/block-request", cardHandler.RequestBlock)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin)

				r.Get("/cards", adminCardHandler.ListCards)
				r.Post("/cards", adminCardHandler.CreateCard)
				r.Post("/cards/{id}/status", adminCardHandler.UpdateStatus)
				r.Delete("/cards/{id}", adminCardHandler.DeleteCard)

				r.Get("/users", adminUserHandler.ListUsers)
				r.Get("/users/{id}", adminUserHandler.GetUser)
				r.Post("/users/{id}", adminUserHandler.UpdateUser)
				r.Delete("/users/{id}", adminUserHandler.DeleteUser)
				r.Patch("/users/{id}/block", adminUserHandler.BlockUser)
				r.Patch("/users/{id}/unblock", adminUserHandler.UnblockUser)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
