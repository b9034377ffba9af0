package http

import (
	"net/http"

	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
	"github.com/tair/retail-ledger/pkg/logger"
)

// RequestTransfer handles POST /api/transfers
func (h *LedgerHandler) RequestTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemCode     string `json:"item_code"`
		FromLocation string `json:"from_location"`
		ToLocation   string `json:"to_location"`
		Quantity     int    `json:"quantity"`
		Note         string `json:"note"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	transfer, err := h.cmd.RequestTransfer.Handle(r.Context(), command.RequestTransferCommand{
		Actor:        actorOf(r),
		ItemCode:     req.ItemCode,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Quantity:     req.Quantity,
		Note:         req.Note,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Transfer requested successfully", transfer)
}

// ListTransfers handles GET /api/transfers
func (h *LedgerHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.qry.ListTransfers.Handle(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", transfers)
}

// ListAudit handles GET /api/audit
func (h *LedgerHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.qry.ListAudit.Handle(r.Context(), query.ListAuditQuery{
		TransactionID: r.URL.Query().Get("transaction_id"),
		ItemCode:      r.URL.Query().Get("item_code"),
		Location:      r.URL.Query().Get("location"),
		Limit:         queryInt(r, "limit"),
		Offset:        queryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", entries)
}

// RunConsistencyScan handles POST /api/consistency/scan
func (h *LedgerHandler) RunConsistencyScan(w http.ResponseWriter, r *http.Request) {
	report, err := h.scanner.Scan(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	if len(report.Findings) > 0 {
		logger.Warn(r.Context()).
			Int("findings", len(report.Findings)).
			Msg("Consistency scan reported findings")
	}
	respondOK(w, http.StatusOK, "", report)
}
