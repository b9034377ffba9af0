package command

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// ReportFaultyCommand represents a faulty device report
type ReportFaultyCommand struct {
	Actor               domain.Actor
	ItemCode            string
	Location            string
	IMEI                string
	FaultDescription    string
	ReportedCost        decimal.Decimal
	EstimatedRepairCost decimal.Decimal
	SparesNeeded        []string
	Customer            domain.Customer
}

// ReportFaultyHandler handles faulty device reports
type ReportFaultyHandler struct {
	exec   Executor
	finder StockFinder
	now    func() time.Time
}

// NewReportFaultyHandler creates a new report faulty handler
func NewReportFaultyHandler(exec Executor, finder StockFinder) *ReportFaultyHandler {
	return &ReportFaultyHandler{exec: exec, finder: finder, now: time.Now}
}

func (h *ReportFaultyHandler) precheck(ctx context.Context, cmd ReportFaultyCommand) error {
	if cmd.ItemCode == "" {
		return domain.Validation("item_code is required")
	}
	if cmd.FaultDescription == "" {
		return domain.Validation("fault_description is required")
	}
	if cmd.ReportedCost.IsNegative() || cmd.EstimatedRepairCost.IsNegative() {
		return domain.Validation("costs cannot be negative")
	}
	_, err := h.finder.FindStockItem(ctx, cmd.ItemCode, cmd.Location)
	return err
}

// Handle creates the report and takes one unit out of sellable stock when there is one
func (h *ReportFaultyHandler) Handle(ctx context.Context, cmd ReportFaultyCommand) (*domain.FaultyPhoneReport, error) {
	cmd.Location = locationOr(cmd.Location, cmd.Actor)

	var report *domain.FaultyPhoneReport
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionFaultyReported,
		Actor:    cmd.Actor,
		Location: cmd.Location,
		ItemCode: cmd.ItemCode,
		Precheck: func(ctx context.Context) error { return h.precheck(ctx, cmd) },
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			report = nil
			item, err := tx.GetStockItem(ctx, cmd.ItemCode, cmd.Location)
			if err != nil {
				return err
			}
			rec.Observe(item)

			r := &domain.FaultyPhoneReport{
				ID:                  txn.NewID(),
				StockItemID:         item.ID,
				ItemCode:            item.ItemCode,
				Location:            item.Location,
				IMEI:                cmd.IMEI,
				FaultDescription:    cmd.FaultDescription,
				ReportedCost:        cmd.ReportedCost.Round(2),
				EstimatedRepairCost: cmd.EstimatedRepairCost.Round(2),
				SparesNeeded:        domain.NormalizeSpares(cmd.SparesNeeded),
				Status:              domain.FaultyReported,
				StatusHistory: []domain.StatusChange{{
					Status:    domain.FaultyReported,
					ActorID:   cmd.Actor.UID,
					ActorName: cmd.Actor.DisplayName,
					At:        h.now(),
				}},
				Customer:   cmd.Customer,
				ReportedBy: cmd.Actor.UID,
			}

			if item.Quantity > 0 {
				before := item.Quantity
				item.Quantity--
				if err := tx.UpdateStockItem(ctx, item); err != nil {
					return err
				}
				rec.Adjust(item, before)
				r.StockDecremented = true
			}

			if err := tx.CreateFaultyReport(ctx, r); err != nil {
				return err
			}
			rec.Entity("faulty_phone_report", r.ID)
			report = r
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
