package command

import (
	"context"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// DeleteFaultyCommand removes a report opened in error
type DeleteFaultyCommand struct {
	Actor    domain.Actor
	ReportID string
}

// DeleteFaultyHandler handles report deletion
type DeleteFaultyHandler struct {
	exec Executor
}

// NewDeleteFaultyHandler creates a new delete faulty handler
func NewDeleteFaultyHandler(exec Executor) *DeleteFaultyHandler {
	return &DeleteFaultyHandler{exec: exec}
}

// Handle deletes a non-terminal report and returns the unit it took from stock.
// Terminal reports are history and cannot be deleted.
func (h *DeleteFaultyHandler) Handle(ctx context.Context, cmd DeleteFaultyCommand) error {
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionFaultyDeleted,
		Actor:    cmd.Actor,
		Location: cmd.Actor.Location,
		Precheck: func(ctx context.Context) error {
			if cmd.ReportID == "" {
				return domain.Validation("report id is required")
			}
			return nil
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			report, err := tx.GetFaultyReport(ctx, cmd.ReportID)
			if err != nil {
				return err
			}
			rec.Entity("faulty_phone_report", report.ID)
			rec.Locate(report.Location)

			if report.Status.IsTerminal() {
				return domain.Validation("report %s is %s and cannot be deleted", report.ID, report.Status)
			}

			if report.StockDecremented {
				item, err := tx.GetStockItemByID(ctx, report.StockItemID)
				if err != nil {
					return err
				}
				before := item.Quantity
				item.Quantity++
				if err := tx.UpdateStockItem(ctx, item); err != nil {
					return err
				}
				rec.Adjust(item, before)
			}

			return tx.DeleteFaultyReport(ctx, report)
		},
	})
	return err
}
