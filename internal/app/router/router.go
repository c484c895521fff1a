package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/smmboost/panel/internal/app/handlers"
	middlware "github.com/smmboost/panel/internal/app/middleware"
)

func NewAppRouter(ch *handlers.CatalogHandler,
	oh *handlers.OrdersHandler,
	bh *handlers.BalanceHandler,
	ph *handlers.ProfileHandler,
	ah *handlers.AdminHandler,
	am middlware.AuthMiddleware) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middlware.RequestLogger)
	r.Use(am.Identify)

	// Public: the catalog is safe to serve before authentication completes.
	r.Get("/api/panel/services", ch.GetServices)

	r.Group(func(r chi.Router) {
		r.Use(am.RequireAuth)

		r.Get("/api/panel/balance", bh.GetBalance)
		r.Post("/api/panel/topup", bh.InitiateTopUp)
		r.Post("/api/panel/orders", oh.CreateOrder)
		r.Get("/api/panel/orders", oh.GetOrders)
		r.Get("/api/panel/orders/estimate", oh.EstimateOrder)
		r.Get("/api/panel/session", ph.GetSession)
		r.Put("/api/panel/profile", ph.SaveProfile)

		r.Group(func(r chi.Router) {
			r.Use(am.RequireAdmin)

			r.Post("/api/panel/admin/balance", ah.AddBalance)
			r.Put("/api/panel/admin/orders/{orderID}/status", ah.UpdateOrderStatus)
			r.Put("/api/panel/admin/services/{serviceID}/price", ah.UpdateServicePrice)
		})
	})
	return r
}
