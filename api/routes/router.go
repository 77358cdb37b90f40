package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trailhop/partner-payments/api/controllers"
	"github.com/trailhop/partner-payments/api/middleware"
	"github.com/trailhop/partner-payments/internal/partneraccounts"
	"github.com/trailhop/partner-payments/internal/payments"
	"github.com/trailhop/partner-payments/pkg/config"
	"github.com/trailhop/partner-payments/pkg/db"
	"github.com/trailhop/partner-payments/pkg/logger"
	"github.com/trailhop/partner-payments/pkg/pubsub"
	"github.com/trailhop/partner-payments/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubClient *pubsub.Client,
	accountsService partneraccounts.Service,
	paymentsService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/{orderID}/payment", controllers.CheckoutPayment(paymentsService, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(paymentsService, logg))
		})

		r.Route("/partners", func(r chi.Router) {
			r.Get("/callback", controllers.PartnerCallback(accountsService, cfg.Checkout, logg))
			r.Route("/{sellerID}", func(r chi.Router) {
				r.Post("/onboarding-link", controllers.PartnerOnboardingLink(accountsService, logg))
				r.Post("/dashboard-link", controllers.PartnerDashboardLink(accountsService, logg))
				r.Get("/account", controllers.PartnerAccount(accountsService, logg))
				r.Delete("/account", controllers.PartnerDisconnect(accountsService, logg))
			})
		})
	})

	return r
}
