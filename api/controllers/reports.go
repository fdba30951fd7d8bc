package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alishanbouraa/quicktech-pos/api/responses"
	"github.com/Alishanbouraa/quicktech-pos/api/validators"
	"github.com/Alishanbouraa/quicktech-pos/internal/drawer"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
	"github.com/Alishanbouraa/quicktech-pos/pkg/logger"
)

func FinancialSummaryReport(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		start, err := validators.ParseQueryDate(r, "start", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if end.Before(start) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "end date before start date"))
			return
		}

		summary, err := svc.Summary(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func DailyTotalsReport(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals, err := svc.DailyTotals(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

func RefreshDailyTotals(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateDailyCalculations(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ResetDailyTotals(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ResetDailyTotals(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DrawerHistoryReport(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.DrawerHistory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

func HistoryByActionReport(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := parseAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		start, err := validators.ParseQueryDate(r, "start", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.TransactionsByType(r.Context(), action, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func TotalByActionReport(svc drawer.ReportingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := parseAction(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now()
		start, err := validators.ParseQueryDate(r, "start", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := svc.TotalByTransactionType(r.Context(), action, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"action": action, "total": total})
	}
}

func parseAction(r *http.Request) (enums.ActionType, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("action"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "action is required").
			WithDetails(map[string]any{"field": "action"})
	}
	return enums.ActionType(raw), nil
}
