package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/financefusion/api/internal/auth"
	"github.com/financefusion/api/internal/handlers"
	"github.com/financefusion/api/internal/middleware"
	pkghttp "github.com/financefusion/api/pkg/http"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	TwoFactor     *handlers.TwoFactorHandler
	Currencies    *handlers.CurrencyHandler
	Tags          *handlers.TagHandler
	Plans         *handlers.PlanHandler
	Accounts      *handlers.AccountHandler
	Budgets       *handlers.BudgetHandler
	Transactions  *handlers.TransactionHandler
	Automations   *handlers.AutomationHandler
	Notifications *handlers.NotificationHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	authn auth.Authenticator,
	ipConfig *pkghttp.IPConfig,
	logger *slog.Logger,
) {
	router.Get("/health", h.Health.Health)
	router.Get("/vitals", h.Health.Vitals)

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(middleware.DefaultLoginRateLimit(), ipConfig)).Post("/auth/login", h.Auth.Login)
	router.With(middleware.RateLimitByIP(middleware.DefaultRegisterRateLimit(), ipConfig)).Post("/users", h.Users.Register)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(authn, logger))

		r.Post("/auth/logout", h.Auth.Logout)
		r.Post("/auth/refresh", h.Auth.Refresh)

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.Users.Me)
			r.Patch("/me", h.Users.UpdateMe)
			r.Delete("/me", h.Users.DeleteMe)
			r.Put("/me/password", h.Users.ChangePassword)
			r.Post("/me/2fa/setup", h.TwoFactor.Setup)
			r.Post("/me/2fa/enable", h.TwoFactor.Enable)
			r.Delete("/me/2fa", h.TwoFactor.Disable)
			r.Get("/username/{username}", h.Users.GetByUsername)
		})

		r.Route("/currencies", func(r chi.Router) {
			r.Get("/", h.Currencies.List)
			r.Post("/", h.Currencies.Create)
			r.Get("/{code}", h.Currencies.Get)
			r.Delete("/{code}", h.Currencies.Delete)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.Tags.List)
			r.Post("/", h.Tags.Create)
			r.Get("/{id}", h.Tags.Get)
			r.Put("/{id}", h.Tags.Update)
			r.Delete("/{id}", h.Tags.Delete)
		})

		r.Get("/plans", h.Plans.List)
		r.Route("/plans/{plan}", func(r chi.Router) {
			r.Get("/", h.Plans.Get)
			r.Post("/", h.Plans.Create)
			r.Delete("/", h.Plans.Delete)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.Accounts.List)
				r.Post("/", h.Accounts.Create)
				r.Get("/{id}", h.Accounts.Get)
				r.Put("/{id}", h.Accounts.Update)
				r.Delete("/{id}", h.Accounts.Delete)
				r.Put("/{id}/tags", h.Accounts.SetTags)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", h.Budgets.List)
				r.Post("/", h.Budgets.Create)
				r.Get("/{id}", h.Budgets.Get)
				r.Put("/{id}", h.Budgets.Update)
				r.Delete("/{id}", h.Budgets.Delete)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.Transactions.List)
				r.Post("/", h.Transactions.Create)
				r.Get("/{id}", h.Transactions.Get)
				r.Delete("/{id}", h.Transactions.Delete)
				r.Post("/{id}/cancel", h.Transactions.Cancel)
				r.Put("/{id}/tags", h.Transactions.SetTags)
			})

			r.Route("/automations", func(r chi.Router) {
				r.Get("/", h.Automations.List)
				r.Post("/", h.Automations.Create)
				r.Get("/{id}", h.Automations.Get)
				r.Put("/{id}", h.Automations.Update)
				r.Delete("/{id}", h.Automations.Delete)
				r.Post("/{id}/pause", h.Automations.Pause)
				r.Post("/{id}/resume", h.Automations.Resume)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Post("/", h.Notifications.Create)
				r.Get("/{id}", h.Notifications.Get)
				r.Patch("/{id}", h.Notifications.Update)
				r.Delete("/{id}", h.Notifications.Delete)
			})
		})
	})
}
