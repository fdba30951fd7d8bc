package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alishanbouraa/quicktech-pos/api/controllers"
	"github.com/Alishanbouraa/quicktech-pos/api/middleware"
	"github.com/Alishanbouraa/quicktech-pos/internal/drawer"
	"github.com/Alishanbouraa/quicktech-pos/pkg/config"
	"github.com/Alishanbouraa/quicktech-pos/pkg/db"
	"github.com/Alishanbouraa/quicktech-pos/pkg/logger"
	"github.com/Alishanbouraa/quicktech-pos/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	promRegistry *prometheus.Registry,
	drawerService drawer.Service,
	correctionService drawer.CorrectionService,
	reconciliationService drawer.ReconciliationService,
	reportingService drawer.ReportingService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/healthz", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/drawer", func(r chi.Router) {
		r.Get("/current", controllers.CurrentDrawer(drawerService, logg))
		r.Get("/current/balance", controllers.CurrentBalance(drawerService, logg))
		r.Post("/open", controllers.OpenDrawer(drawerService, logg))
		r.Post("/close", controllers.CloseDrawer(drawerService, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.ProcessTransaction(drawerService, logg))
			r.Post("/cash-sale", controllers.ProcessCashSale(drawerService, logg))
			r.Post("/expense", controllers.ProcessExpense(drawerService, logg))
			r.Post("/supplier-payment", controllers.ProcessSupplierPayment(drawerService, logg))
			r.Post("/supplier-invoice", controllers.ProcessSupplierInvoice(drawerService, logg))
			r.Post("/quote-payment", controllers.ProcessQuotePayment(drawerService, logg))
			r.Post("/cash-receipt", controllers.ProcessCashReceipt(drawerService, logg))
			r.Post("/cash", controllers.CashMovement(drawerService, logg))
		})

		r.Post("/corrections", controllers.ApplyCorrection(correctionService, logg))

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", controllers.ListSessions(drawerService, logg))
			r.Route("/{drawerId}", func(r chi.Router) {
				r.Get("/", controllers.SessionDetail(drawerService, logg))
				r.Get("/balances", controllers.SessionBalances(drawerService, logg))
				r.Post("/adjust-balance", controllers.AdjustBalance(drawerService, logg))
				r.Post("/audit", controllers.LogAudit(drawerService, logg))
				r.Post("/validate-access", controllers.ValidateAccess(drawerService, logg))

				r.Post("/reconcile", controllers.RecalculateTotals(reconciliationService, logg))
				r.Get("/verify", controllers.VerifyBalance(reconciliationService, logg))
				r.Get("/discrepancies", controllers.DiscrepancyTransactions(reconciliationService, logg))
				r.Get("/running-balances", controllers.RunningBalances(reconciliationService, logg))

				r.Get("/history", controllers.DrawerHistoryReport(reportingService, logg))
				r.Get("/daily", controllers.DailyTotalsReport(reportingService, logg))
				r.Post("/daily/refresh", controllers.RefreshDailyTotals(reportingService, logg))
				r.Post("/daily/reset", controllers.ResetDailyTotals(reportingService, logg))
			})
		})
	})

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/summary", controllers.FinancialSummaryReport(reportingService, logg))
		r.Get("/daily/{drawerId}", controllers.DailyTotalsReport(reportingService, logg))
		r.Get("/history-by-action", controllers.HistoryByActionReport(reportingService, logg))
		r.Get("/totals-by-action", controllers.TotalByActionReport(reportingService, logg))
	})

	return r
}
