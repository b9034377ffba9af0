package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
)

type saleRequest struct {
	ItemCode      string           `json:"item_code"`
	Location      string           `json:"location"`
	Quantity      int              `json:"quantity"`
	CustomPrice   *decimal.Decimal `json:"custom_price"`
	PaymentMethod string           `json:"payment_method"`
	Customer      domain.Customer  `json:"customer"`
}

// CreateSale handles POST /api/sales
func (h *LedgerHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	sale, err := h.cmd.Sell.Handle(r.Context(), command.SellCommand{
		Actor:         actorOf(r),
		ItemCode:      req.ItemCode,
		Location:      req.Location,
		Quantity:      req.Quantity,
		CustomPrice:   req.CustomPrice,
		PaymentMethod: req.PaymentMethod,
		Customer:      req.Customer,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Sale recorded successfully", sale)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

// ListSales handles GET /api/sales
func (h *LedgerHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		respondBadRequest(w, "Invalid from date, expected YYYY-MM-DD")
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		respondBadRequest(w, "Invalid to date, expected YYYY-MM-DD")
		return
	}

	sales, err := h.qry.ListSales.Handle(r.Context(), query.ListSalesQuery{
		Location: r.URL.Query().Get("location"),
		ItemCode: r.URL.Query().Get("item_code"),
		From:     from,
		To:       to,
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", sales)
}

// SalesSummary handles GET /api/analytics/sales-summary
func (h *LedgerHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondBadRequest(w, "Invalid date, expected YYYY-MM-DD")
		return
	}

	summary, err := h.qry.SalesSummary.Handle(r.Context(), query.SalesSummaryQuery{
		Location: r.URL.Query().Get("location"),
		Date:     date,
		Top:      queryInt(r, "top"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", summary)
}
