package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Alishanbouraa/quicktech-pos/api/responses"
	"github.com/Alishanbouraa/quicktech-pos/api/validators"
	"github.com/Alishanbouraa/quicktech-pos/internal/drawer"
	"github.com/Alishanbouraa/quicktech-pos/pkg/enums"
	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
	"github.com/Alishanbouraa/quicktech-pos/pkg/logger"
)

type openDrawerRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CashierID      string          `json:"cashier_id" validate:"required"`
	CashierName    string          `json:"cashier_name" validate:"required"`
}

type closeDrawerRequest struct {
	FinalBalance decimal.Decimal `json:"final_balance"`
	Notes        string          `json:"notes"`
}

type transactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

type cashSaleRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

type expenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ExpenseType string          `json:"expense_type" validate:"required"`
	Description string          `json:"description"`
}

type supplierPaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	SupplierName string          `json:"supplier_name" validate:"required"`
	Reference    string          `json:"reference"`
}

type quotePaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	CustomerName string          `json:"customer_name" validate:"required"`
	QuoteNumber  string          `json:"quote_number"`
}

type cashReceiptRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type cashMovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Direction   string          `json:"direction" validate:"required,oneof=in out"`
	Description string          `json:"description"`
}

type adjustBalanceRequest struct {
	NewBalance decimal.Decimal `json:"new_balance"`
	Reason     string          `json:"reason" validate:"required"`
}

type auditRequest struct {
	Action      string `json:"action" validate:"required"`
	Description string `json:"description"`
}

type accessRequest struct {
	CashierID string `json:"cashier_id" validate:"required"`
}

type correctionRequest struct {
	TransactionID string          `json:"transaction_id" validate:"required"`
	OldAmount     decimal.Decimal `json:"old_amount"`
	NewAmount     decimal.Decimal `json:"new_amount"`
	Description   string          `json:"description"`
}

// CurrentDrawer returns the open session, or null data when the till is closed.
func CurrentDrawer(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := svc.CurrentDrawer(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, current)
	}
}

func CurrentBalance(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := svc.CurrentBalance(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]decimal.Decimal{"balance": balance})
	}
}

func OpenDrawer(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openDrawerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		opened, err := svc.Open(r.Context(), drawer.OpenInput{
			OpeningBalance: req.OpeningBalance,
			CashierID:      req.CashierID,
			CashierName:    req.CashierName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, opened)
	}
}

func CloseDrawer(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req closeDrawerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		closed, err := svc.Close(r.Context(), drawer.CloseInput{
			FinalBalance: req.FinalBalance,
			Notes:        req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, closed)
	}
}

func ProcessTransaction(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txType, err := enums.ParseTransactionType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		updated, err := svc.ProcessTransaction(r.Context(), drawer.TransactionInput{
			Amount:      req.Amount,
			Type:        txType,
			Description: req.Description,
			Reference:   req.Reference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProcessCashSale(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cashSaleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ProcessCashSale(r.Context(), req.Amount, req.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProcessExpense(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req expenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ProcessExpense(r.Context(), req.Amount, req.ExpenseType, req.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProcessSupplierPayment(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req supplierPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ProcessSupplierPayment(r.Context(), req.Amount, req.SupplierName, req.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProcessQuotePayment(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quotePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ProcessQuotePayment(r.Context(), req.Amount, req.CustomerName, req.QuoteNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProcessCashReceipt(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cashReceiptRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ProcessCashReceipt(r.Context(), req.Amount, req.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProcessSupplierInvoice(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req supplierPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ProcessSupplierInvoice(r.Context(), req.Amount, req.SupplierName, req.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func CashMovement(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cashMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AddCashTransaction(r.Context(), req.Amount, req.Direction == "in", req.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ListSessions(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := validators.ParseQueryDatePtr(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDatePtr(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions, err := svc.Sessions(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessions)
	}
}

func SessionDetail(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Session(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// SessionBalances reports the expected balance, the stored balance and the
// gap between them for one session.
func SessionBalances(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Session(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expected := session.ExpectedBalance()
		responses.WriteSuccess(w, map[string]decimal.Decimal{
			"expected":   expected,
			"actual":     session.CurrentBalance,
			"difference": session.CurrentBalance.Sub(expected),
		})
	}
}

func AdjustBalance(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adjustBalanceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AdjustBalance(r.Context(), id, req.NewBalance, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func LogAudit(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req auditRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.LogDrawerAudit(r.Context(), id, req.Action, req.Description); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

func ValidateAccess(svc drawer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req accessRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allowed, err := svc.ValidateDrawerAccess(r.Context(), strings.TrimSpace(req.CashierID), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"allowed": allowed})
	}
}

func ApplyCorrection(svc drawer.CorrectionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req correctionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applied, err := svc.UpdateForModifiedSale(r.Context(), req.TransactionID, req.OldAmount, req.NewAmount, req.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"applied": applied})
	}
}

func RecalculateTotals(svc drawer.ReconciliationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RecalculateTotals(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func VerifyBalance(svc drawer.ReconciliationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		consistent, err := svc.VerifyBalance(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"consistent": consistent})
	}
}

func DiscrepancyTransactions(svc drawer.ReconciliationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flagged, err := svc.DiscrepancyTransactions(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, flagged)
	}
}

func RunningBalances(svc drawer.ReconciliationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseURLUUID(chi.URLParam(r, "drawerId"), "drawerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balances, err := svc.RunningBalances(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balances)
	}
}
