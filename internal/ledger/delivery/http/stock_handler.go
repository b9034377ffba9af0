package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/internal/ledger/usecase/query"
)

type createStockRequest struct {
	ItemCode           string          `json:"item_code"`
	Location           string          `json:"location"`
	Brand              string          `json:"brand"`
	Model              string          `json:"model"`
	Category           string          `json:"category"`
	Color              string          `json:"color"`
	Storage            string          `json:"storage"`
	Quantity           int             `json:"quantity"`
	CostPrice          decimal.Decimal `json:"cost_price"`
	RetailPrice        decimal.Decimal `json:"retail_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// CreateStockItem handles POST /api/stock
func (h *LedgerHandler) CreateStockItem(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	item, err := h.cmd.CreateStock.Handle(r.Context(), command.CreateStockItemCommand{
		Actor:              actorOf(r),
		ItemCode:           req.ItemCode,
		Location:           req.Location,
		Brand:              req.Brand,
		Model:              req.Model,
		Category:           req.Category,
		Color:              req.Color,
		Storage:            req.Storage,
		Quantity:           req.Quantity,
		CostPrice:          req.CostPrice,
		RetailPrice:        req.RetailPrice,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Stock item created successfully", item)
}

// ListStock handles GET /api/stock
func (h *LedgerHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.qry.ListStock.Handle(r.Context(), query.ListStockQuery{
		Location: r.URL.Query().Get("location"),
		ItemCode: r.URL.Query().Get("item_code"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", items)
}

// GetStockItem handles GET /api/stock/{location}/{itemCode}
func (h *LedgerHandler) GetStockItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	item, err := h.qry.GetStock.Handle(r.Context(), query.GetStockItemQuery{
		ItemCode: vars["itemCode"],
		Location: vars["location"],
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", item)
}

// CheckAvailability handles GET /api/stock/{location}/{itemCode}/availability
func (h *LedgerHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := h.qry.Availability.Handle(r.Context(), query.AvailabilityQuery{
		ItemCode: vars["itemCode"],
		Location: vars["location"],
		Quantity: queryInt(r, "quantity"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", res)
}

// RestockItem handles POST /api/stock/{location}/{itemCode}/restock
func (h *LedgerHandler) RestockItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	item, err := h.cmd.Restock.Handle(r.Context(), command.RestockItemCommand{
		Actor:    actorOf(r),
		ItemCode: vars["itemCode"],
		Location: vars["location"],
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Stock item restocked successfully", item)
}

// UpdatePricing handles PATCH /api/stock/{location}/{itemCode}/pricing
func (h *LedgerHandler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CostPrice          *decimal.Decimal `json:"cost_price"`
		RetailPrice        *decimal.Decimal `json:"retail_price"`
		DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	item, err := h.cmd.UpdatePricing.Handle(r.Context(), command.UpdatePricingCommand{
		Actor:              actorOf(r),
		ItemCode:           vars["itemCode"],
		Location:           vars["location"],
		CostPrice:          req.CostPrice,
		RetailPrice:        req.RetailPrice,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Pricing updated successfully", item)
}
