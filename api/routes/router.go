package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/batcom-app/batcom-backend/api/controllers"
	webhookcontrollers "github.com/batcom-app/batcom-backend/api/controllers/webhooks"
	"github.com/batcom-app/batcom-backend/api/middleware"
	"github.com/batcom-app/batcom-backend/internal/notify"
	"github.com/batcom-app/batcom-backend/internal/payments"
	"github.com/batcom-app/batcom-backend/internal/reconcile"
	"github.com/batcom-app/batcom-backend/pkg/config"
	"github.com/batcom-app/batcom-backend/pkg/db"
	"github.com/batcom-app/batcom-backend/pkg/logger"
	"github.com/batcom-app/batcom-backend/pkg/payos"
	"github.com/batcom-app/batcom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	payosClient *payos.Client,
	paymentsService payments.Service,
	reconcileService reconcile.Service,
	notifyService notify.Service,
	webhookGuard *reconcile.IdempotencyGuard,
	gatherer prometheus.Gatherer,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payos", webhookcontrollers.PayOSWebhook(reconcileService, payosClient, webhookGuard, logg))
		r.Post("/sms", webhookcontrollers.SMSWebhook(reconcileService, logg))
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", controllers.PaymentCreate(paymentsService, logg))
		r.Get("/status", controllers.PaymentStatus(paymentsService, logg))
		r.Get("/gateway", controllers.PaymentGatewaySync(reconcileService, logg))
	})

	r.Route("/api/v1/reminders", func(r chi.Router) {
		r.Get("/", controllers.ReminderSummary(notifyService, logg))
		r.Get("/summary", controllers.ReminderSummary(notifyService, logg))
		r.Post("/", controllers.ReminderSend(notifyService, logg))
		r.Post("/sweep", controllers.ReminderSweep(notifyService, cfg.Reminder, logg))
	})

	return r
}
