package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/wholesale-backoffice/api/controllers"
	inventorycontrollers "github.com/angelmondragon/wholesale-backoffice/api/controllers/inventory"
	ordercontrollers "github.com/angelmondragon/wholesale-backoffice/api/controllers/orders"
	providerordercontrollers "github.com/angelmondragon/wholesale-backoffice/api/controllers/providerorders"
	"github.com/angelmondragon/wholesale-backoffice/api/middleware"
	"github.com/angelmondragon/wholesale-backoffice/internal/categories"
	"github.com/angelmondragon/wholesale-backoffice/internal/customers"
	"github.com/angelmondragon/wholesale-backoffice/internal/inventory"
	"github.com/angelmondragon/wholesale-backoffice/internal/ledger"
	"github.com/angelmondragon/wholesale-backoffice/internal/orders"
	"github.com/angelmondragon/wholesale-backoffice/internal/providers"
	"github.com/angelmondragon/wholesale-backoffice/internal/restock"
	pkgAuth "github.com/angelmondragon/wholesale-backoffice/pkg/auth"
	"github.com/angelmondragon/wholesale-backoffice/pkg/config"
	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
	"github.com/angelmondragon/wholesale-backoffice/pkg/logger"
	pkgredis "github.com/angelmondragon/wholesale-backoffice/pkg/redis"
)

// Cache backs idempotency replay and rate limiting.
type Cache interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Params carries everything the HTTP surface is wired to.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Readiness   map[string]controllers.Pinger
	Cache       Cache
	Revocations pkgAuth.RevocationChecker
	Gatherer    prometheus.Gatherer

	Orders         orders.Service
	Inventory      inventory.Service
	Journal        ledger.Service
	ProviderOrders restock.Service
	Planner        providerordercontrollers.Planner
	Customers      customers.Service
	Providers      providers.Service
	Categories     categories.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	writePolicy := middleware.NewRateLimitPolicy("writes", cfg.RateLimit.Window, cfg.RateLimit.WriteLimit)
	restockPolicy := middleware.NewRateLimitPolicy("restock", cfg.RateLimit.Window, cfg.RateLimit.RestockRuns)
	writes := middleware.RateLimit(writePolicy, p.Cache, logg)
	idempotent := middleware.Idempotency(p.Cache, logg)
	can := func(perms ...enums.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(logg, perms...)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Revocations, logg))

		// customer orders
		r.With(can(enums.PermissionViewOrders)).Get("/orders", ordercontrollers.List(p.Orders, logg))
		r.With(can(enums.PermissionCreateOrder), writes, idempotent).Post("/orders", ordercontrollers.Create(p.Orders, logg))
		r.With(can(enums.PermissionViewOrders)).Get("/orders/{orderId}", ordercontrollers.Detail(p.Orders, logg))
		r.With(can(enums.PermissionViewOrders, enums.PermissionViewInventory)).Get("/orders/{orderId}/movements", controllers.ListOrderMovements(p.Journal, logg))
		r.With(can(enums.PermissionEditOrders), writes).Patch("/orders/{orderId}/status", ordercontrollers.UpdateStatus(p.Orders, logg))
		r.With(can(enums.PermissionEditOrders), writes, idempotent).Post("/orders/{orderId}/cancel", ordercontrollers.Cancel(p.Orders, logg))
		r.With(can(enums.PermissionEditOrders), writes, idempotent).Post("/orders/{orderId}/items", ordercontrollers.AddItem(p.Orders, logg))
		r.With(can(enums.PermissionDeleteOrders), writes).Delete("/orders/{orderId}", ordercontrollers.Delete(p.Orders, logg))

		// admin inventory
		r.With(can(enums.PermissionViewInventory)).Get("/inventory", inventorycontrollers.List(p.Inventory, logg))
		r.With(can(enums.PermissionViewInventory)).Get("/inventory/low-stock", inventorycontrollers.LowStock(p.Inventory, logg))
		r.With(can(enums.PermissionViewInventory)).Get("/inventory/{itemId}", inventorycontrollers.Detail(p.Inventory, logg))
		r.With(can(enums.PermissionViewInventory)).Get("/inventory/{itemId}/movements", controllers.ListItemMovements(p.Journal, logg))
		r.With(can(enums.PermissionEditInventory), writes).Post("/inventory", inventorycontrollers.Create(p.Inventory, logg))
		r.With(can(enums.PermissionEditInventory), writes).Patch("/inventory/{itemId}", inventorycontrollers.Update(p.Inventory, logg))
		r.With(can(enums.PermissionEditInventory), writes).Delete("/inventory/{itemId}", inventorycontrollers.Delete(p.Inventory, logg))
		r.With(can(enums.PermissionEditInventory), writes).Post("/inventory/{itemId}/adjust", inventorycontrollers.Adjust(p.Inventory, logg))

		// provider orders
		r.With(can(enums.PermissionViewProviderOrders)).Get("/provider-orders", providerordercontrollers.List(p.ProviderOrders, logg))
		r.With(can(enums.PermissionEditProviderOrders), middleware.RateLimit(restockPolicy, p.Cache, logg), idempotent).
			Post("/provider-orders/check", providerordercontrollers.Check(p.Planner, logg))
		r.With(can(enums.PermissionViewProviderOrders)).Get("/provider-orders/{providerOrderId}", providerordercontrollers.Detail(p.ProviderOrders, logg))
		r.With(can(enums.PermissionEditProviderOrders), writes).Patch("/provider-orders/{providerOrderId}/status", providerordercontrollers.UpdateStatus(p.ProviderOrders, logg))

		// customers and their inventories
		r.With(can(enums.PermissionViewCustomers)).Get("/customers", controllers.ListCustomers(p.Customers, logg))
		r.With(can(enums.PermissionEditCustomers), writes, idempotent).Post("/customers", controllers.CreateCustomer(p.Customers, logg))
		r.With(can(enums.PermissionViewCustomers)).Get("/customers/{customerId}", controllers.GetCustomer(p.Customers, logg))
		r.With(can(enums.PermissionEditCustomers), writes).Patch("/customers/{customerId}", controllers.UpdateCustomer(p.Customers, logg))
		r.With(can(enums.PermissionEditCustomers), writes).Delete("/customers/{customerId}", controllers.DeleteCustomer(p.Customers, logg))
		r.With(can(enums.PermissionViewCustomers)).Get("/customers/{customerId}/inventory", controllers.ListCustomerInventory(p.Customers, logg))
		r.With(can(enums.PermissionEditCustomers), writes).Post("/customers/{customerId}/inventory", controllers.GrantInventoryItem(p.Customers, logg))
		r.With(can(enums.PermissionEditCustomers), writes).Delete("/customers/{customerId}/inventory/{itemId}", controllers.RevokeInventoryItem(p.Customers, logg))

		r.With(can(enums.PermissionViewProviders)).Get("/providers", controllers.ListProviders(p.Providers, logg))
		r.With(can(enums.PermissionEditProviders), writes).Post("/providers", controllers.CreateProvider(p.Providers, logg))
		r.With(can(enums.PermissionViewProviders)).Get("/providers/{providerId}", controllers.GetProvider(p.Providers, logg))
		r.With(can(enums.PermissionEditProviders), writes).Patch("/providers/{providerId}", controllers.UpdateProvider(p.Providers, logg))
		r.With(can(enums.PermissionEditProviders), writes).Delete("/providers/{providerId}", controllers.DeleteProvider(p.Providers, logg))

		r.With(can(enums.PermissionViewCategories)).Get("/categories", controllers.ListCategories(p.Categories, logg))
		r.With(can(enums.PermissionEditCategories), writes).Post("/categories", controllers.CreateCategory(p.Categories, logg))
		r.With(can(enums.PermissionViewCategories)).Get("/categories/{categoryId}", controllers.GetCategory(p.Categories, logg))
		r.With(can(enums.PermissionEditCategories), writes).Patch("/categories/{categoryId}", controllers.UpdateCategory(p.Categories, logg))
		r.With(can(enums.PermissionEditCategories), writes).Delete("/categories/{categoryId}", controllers.DeleteCategory(p.Categories, logg))
	})

	return r
}
