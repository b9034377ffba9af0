package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// ListSalesQuery represents the query to list sales
type ListSalesQuery struct {
	Location string
	ItemCode string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// ListSalesHandler handles list sales query
type ListSalesHandler struct {
	reader domain.LedgerReader
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(reader domain.LedgerReader) *ListSalesHandler {
	return &ListSalesHandler{reader: reader}
}

// Handle executes the list sales query
func (h *ListSalesHandler) Handle(ctx context.Context, q ListSalesQuery) ([]domain.SaleRecord, error) {
	sales, err := h.reader.ListSales(ctx, domain.SaleFilter{
		Location: q.Location,
		ItemCode: q.ItemCode,
		From:     q.From,
		To:       q.To,
		Limit:    clampLimit(q.Limit),
		Offset:   q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// FaultyReportView is a report with its repair record
type FaultyReportView struct {
	Report *domain.FaultyPhoneReport `json:"report"`
	Repair *domain.RepairRecord      `json:"repair,omitempty"`
}

// GetFaultyReportHandler handles get faulty report query
type GetFaultyReportHandler struct {
	reader domain.LedgerReader
}

// NewGetFaultyReportHandler creates a new get faulty report handler
func NewGetFaultyReportHandler(reader domain.LedgerReader) *GetFaultyReportHandler {
	return &GetFaultyReportHandler{reader: reader}
}

// Handle executes the get faulty report query
func (h *GetFaultyReportHandler) Handle(ctx context.Context, id string) (*FaultyReportView, error) {
	report, err := h.reader.FindFaultyReport(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &FaultyReportView{Report: report}
	repairs, err := h.reader.ListRepairs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list repairs: %w", err)
	}
	if len(repairs) > 0 {
		view.Repair = &repairs[0]
	}
	return view, nil
}

// GetInstallmentPlanHandler handles get plan query
type GetInstallmentPlanHandler struct {
	reader domain.LedgerReader
}

// NewGetInstallmentPlanHandler creates a new get installment plan handler
func NewGetInstallmentPlanHandler(reader domain.LedgerReader) *GetInstallmentPlanHandler {
	return &GetInstallmentPlanHandler{reader: reader}
}

// Handle executes the get installment plan query
func (h *GetInstallmentPlanHandler) Handle(ctx context.Context, id string) (*domain.InstallmentPlan, error) {
	return h.reader.FindInstallmentPlan(ctx, id)
}

// ListTransfersHandler handles list transfers query
type ListTransfersHandler struct {
	reader domain.LedgerReader
}

// NewListTransfersHandler creates a new list transfers handler
func NewListTransfersHandler(reader domain.LedgerReader) *ListTransfersHandler {
	return &ListTransfersHandler{reader: reader}
}

// Handle executes the list transfers query
func (h *ListTransfersHandler) Handle(ctx context.Context, location string) ([]domain.StockTransferRequest, error) {
	transfers, err := h.reader.ListTransfers(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

// ListAuditQuery represents the query to list audit entries
type ListAuditQuery struct {
	TransactionID string
	ItemCode      string
	Location      string
	Limit         int
	Offset        int
}

// ListAuditHandler handles list audit query
type ListAuditHandler struct {
	reader domain.LedgerReader
}

// NewListAuditHandler creates a new list audit handler
func NewListAuditHandler(reader domain.LedgerReader) *ListAuditHandler {
	return &ListAuditHandler{reader: reader}
}

// Handle executes the list audit query
func (h *ListAuditHandler) Handle(ctx context.Context, q ListAuditQuery) ([]domain.AuditLogEntry, error) {
	entries, err := h.reader.ListAudit(ctx, domain.AuditFilter{
		TransactionID: q.TransactionID,
		ItemCode:      q.ItemCode,
		Location:      q.Location,
		Limit:         clampLimit(q.Limit),
		Offset:        q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
