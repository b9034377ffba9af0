package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
)

type createInstallmentRequest struct {
	Customer    domain.Customer `json:"customer"`
	Location    string          `json:"location"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DownPayment decimal.Decimal `json:"down_payment"`
	Months      int             `json:"months"`
	StartDate   string          `json:"start_date"`
	ItemCode    string          `json:"item_code"`
	Quantity    int             `json:"quantity"`
}

// CreateInstallment handles POST /api/installments
func (h *LedgerHandler) CreateInstallment(w http.ResponseWriter, r *http.Request) {
	var req createInstallmentRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		respondBadRequest(w, "Invalid start_date, expected YYYY-MM-DD")
		return
	}

	result, err := h.cmd.CreatePlan.Handle(r.Context(), command.CreateInstallmentCommand{
		Actor:       actorOf(r),
		Customer:    req.Customer,
		Location:    req.Location,
		TotalAmount: req.TotalAmount,
		DownPayment: req.DownPayment,
		Months:      req.Months,
		StartDate:   start,
		ItemCode:    req.ItemCode,
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Installment plan created successfully", result)
}

// GetInstallment handles GET /api/installments/{id}
func (h *LedgerHandler) GetInstallment(w http.ResponseWriter, r *http.Request) {
	plan, err := h.qry.GetPlan.Handle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", plan)
}

// RecordPayment handles POST /api/installments/{id}/payments
func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Date   string          `json:"date"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondBadRequest(w, "Invalid date, expected YYYY-MM-DD")
		return
	}

	result, err := h.cmd.RecordPayment.Handle(r.Context(), command.RecordPaymentCommand{
		Actor:  actorOf(r),
		PlanID: mux.Vars(r)["id"],
		Amount: req.Amount,
		Date:   date,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Payment recorded successfully", result)
}

// closePlan handles POST /api/installments/{id}/{cancel|default}
func (h *LedgerHandler) closePlan(status domain.InstallmentStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := h.cmd.ClosePlan.Handle(r.Context(), command.CloseInstallmentCommand{
			Actor:  actorOf(r),
			PlanID: mux.Vars(r)["id"],
			Status: status,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, http.StatusOK, "Installment plan closed", plan)
	}
}
