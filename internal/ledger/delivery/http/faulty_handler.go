package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
)

type reportFaultyRequest struct {
	ItemCode            string          `json:"item_code"`
	Location            string          `json:"location"`
	IMEI                string          `json:"imei"`
	FaultDescription    string          `json:"fault_description"`
	ReportedCost        decimal.Decimal `json:"reported_cost"`
	EstimatedRepairCost decimal.Decimal `json:"estimated_repair_cost"`
	SparesNeeded        []string        `json:"spares_needed"`
	Customer            domain.Customer `json:"customer"`
}

// ReportFaulty handles POST /api/faulty
func (h *LedgerHandler) ReportFaulty(w http.ResponseWriter, r *http.Request) {
	var req reportFaultyRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	report, err := h.cmd.ReportFaulty.Handle(r.Context(), command.ReportFaultyCommand{
		Actor:               actorOf(r),
		ItemCode:            req.ItemCode,
		Location:            req.Location,
		IMEI:                req.IMEI,
		FaultDescription:    req.FaultDescription,
		ReportedCost:        req.ReportedCost,
		EstimatedRepairCost: req.EstimatedRepairCost,
		SparesNeeded:        req.SparesNeeded,
		Customer:            req.Customer,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Faulty device reported successfully", report)
}

// GetFaulty handles GET /api/faulty/{id}
func (h *LedgerHandler) GetFaulty(w http.ResponseWriter, r *http.Request) {
	view, err := h.qry.GetFaulty.Handle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", view)
}

// UpdateFaultyStatus handles PATCH /api/faulty/{id}/status
func (h *LedgerHandler) UpdateFaultyStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status     string           `json:"status"`
		Note       string           `json:"note"`
		RepairCost *decimal.Decimal `json:"repair_cost"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}
	status, err := domain.ParseFaultyStatus(req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.cmd.UpdateFaulty.Handle(r.Context(), command.UpdateFaultyStatusCommand{
		Actor:      actorOf(r),
		ReportID:   mux.Vars(r)["id"],
		Status:     status,
		Note:       req.Note,
		RepairCost: req.RepairCost,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Faulty status updated successfully", result)
}

// DeleteFaulty handles DELETE /api/faulty/{id}
func (h *LedgerHandler) DeleteFaulty(w http.ResponseWriter, r *http.Request) {
	err := h.cmd.DeleteFaulty.Handle(r.Context(), command.DeleteFaultyCommand{
		Actor:    actorOf(r),
		ReportID: mux.Vars(r)["id"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Faulty report deleted successfully", nil)
}
