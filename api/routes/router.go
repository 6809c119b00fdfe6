package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/malpra/marketplace-backend/api/controllers"
	webhookcontrollers "github.com/malpra/marketplace-backend/api/controllers/webhooks"
	"github.com/malpra/marketplace-backend/api/middleware"
	checkoutsvc "github.com/malpra/marketplace-backend/internal/checkout"
	"github.com/malpra/marketplace-backend/internal/orders"
	"github.com/malpra/marketplace-backend/internal/payments/helapay"
	"github.com/malpra/marketplace-backend/internal/reporting"
	"github.com/malpra/marketplace-backend/internal/settlement"
	"github.com/malpra/marketplace-backend/internal/vendors"
	"github.com/malpra/marketplace-backend/pkg/config"
	"github.com/malpra/marketplace-backend/pkg/db"
	"github.com/malpra/marketplace-backend/pkg/enums"
	"github.com/malpra/marketplace-backend/pkg/logger"
	pkgredis "github.com/malpra/marketplace-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *pkgredis.Client
	Metrics   prometheus.Gatherer
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Vendors   vendors.Service
	Payments  helapay.Service
	Payouts   settlement.Service
	Reporting reporting.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	idemStore := idempotencyStore(deps.Redis)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger(deps.Redis)))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	// Gateway notifications authenticate with an HMAC signature, not a JWT.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/helapay", webhookcontrollers.HelaPayNotify(deps.Payments, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.BuyerOrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.BuyerOrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/pay/helapay", controllers.HelaPayCheckout(deps.Payments, logg))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleVendor), logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.VendorOrderList(deps.Orders, deps.Vendors, logg))
				r.Patch("/{vendorOrderId}/status", controllers.VendorOrderUpdateStatus(deps.Orders, deps.Vendors, logg))
			})
			r.Get("/statement", controllers.VendorStatement(deps.Reporting, deps.Vendors, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.AdminListPayouts(deps.Payouts, logg))
			r.Post("/period", controllers.AdminGeneratePeriodPayouts(deps.Payouts, logg))
			r.Post("/online", controllers.AdminGenerateOnlinePayouts(deps.Payouts, logg))
			r.Post("/preview", controllers.AdminPreviewPeriodPayouts(deps.Payouts, logg))
			r.Patch("/{payoutId}/status", controllers.AdminSetPayoutStatus(deps.Payouts, logg))
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Get("/cod", controllers.AdminListUnsettledCOD(deps.Payouts, logg))
			r.Post("/cod", controllers.AdminSettleCODCommission(deps.Payouts, logg))
		})

		r.Get("/reports/dues", controllers.AdminDuesSummary(deps.Reporting, logg))

		r.Route("/vendors", func(r chi.Router) {
			r.Patch("/{vendorId}/commission", controllers.AdminSetVendorCommission(deps.Vendors, logg))
			r.Patch("/{vendorId}/approval", controllers.AdminSetVendorApproval(deps.Vendors, logg))
		})
	})

	return r
}

// Nil clients must become nil interfaces, not typed nils.
func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func redisPinger(client *pkgredis.Client) pkgredis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
