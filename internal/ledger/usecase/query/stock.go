package query

import (
	"context"
	"fmt"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/validation"
)

func clampLimit(limit int) int {
	if limit == 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}

// GetStockItemQuery represents the query to read one stock item
type GetStockItemQuery struct {
	ItemCode string
	Location string
}

// GetStockItemHandler handles get stock item query
type GetStockItemHandler struct {
	reader domain.LedgerReader
}

// NewGetStockItemHandler creates a new get stock item handler
func NewGetStockItemHandler(reader domain.LedgerReader) *GetStockItemHandler {
	return &GetStockItemHandler{reader: reader}
}

// Handle executes the get stock item query
func (h *GetStockItemHandler) Handle(ctx context.Context, q GetStockItemQuery) (*domain.StockItem, error) {
	if q.ItemCode == "" || q.Location == "" {
		return nil, domain.Validation("item code and location are required")
	}
	return h.reader.FindStockItem(ctx, q.ItemCode, q.Location)
}

// ListStockQuery represents the query to list stock items
type ListStockQuery struct {
	Location string
	ItemCode string
	Limit    int
	Offset   int
}

// ListStockHandler handles list stock query
type ListStockHandler struct {
	reader domain.LedgerReader
}

// NewListStockHandler creates a new list stock handler
func NewListStockHandler(reader domain.LedgerReader) *ListStockHandler {
	return &ListStockHandler{reader: reader}
}

// Handle executes the list stock query
func (h *ListStockHandler) Handle(ctx context.Context, q ListStockQuery) ([]domain.StockItem, error) {
	items, err := h.reader.ListStockItems(ctx, domain.StockFilter{
		Location: q.Location,
		ItemCode: q.ItemCode,
		Limit:    clampLimit(q.Limit),
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	return items, nil
}

// AvailabilityQuery asks whether quantity units could be taken now
type AvailabilityQuery struct {
	ItemCode string
	Location string
	Quantity int
}

// AvailabilityHandler runs the advisory check on its own
type AvailabilityHandler struct {
	reader domain.LedgerReader
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(reader domain.LedgerReader) *AvailabilityHandler {
	return &AvailabilityHandler{reader: reader}
}

// Handle executes the availability query
func (h *AvailabilityHandler) Handle(ctx context.Context, q AvailabilityQuery) (validation.Result, error) {
	if q.Quantity == 0 {
		q.Quantity = 1
	}
	return validation.Advisory(ctx, h.reader, validation.StockRequest{
		ItemCode: q.ItemCode,
		Location: q.Location,
		Quantity: q.Quantity,
	})
}
