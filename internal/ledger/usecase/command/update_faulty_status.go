package command

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// UpdateFaultyStatusCommand moves a report through its lifecycle
type UpdateFaultyStatusCommand struct {
	Actor    domain.Actor
	ReportID string
	Status   domain.FaultyStatus
	Note     string
	// RepairCost overrides the estimate on the repair record when moving to Fixed
	RepairCost *decimal.Decimal
}

// FaultyStatusResult is the updated report and, for Fixed, its repair record
type FaultyStatusResult struct {
	Report *domain.FaultyPhoneReport `json:"report"`
	Repair *domain.RepairRecord      `json:"repair,omitempty"`
}

// UpdateFaultyStatusHandler handles faulty status transitions
type UpdateFaultyStatusHandler struct {
	exec Executor
	now  func() time.Time
}

// NewUpdateFaultyStatusHandler creates a new update faulty status handler
func NewUpdateFaultyStatusHandler(exec Executor) *UpdateFaultyStatusHandler {
	return &UpdateFaultyStatusHandler{exec: exec, now: time.Now}
}

// Handle applies the transition. Reaching Fixed writes the repair record and returns the unit
// to stock when the report had taken it out.
func (h *UpdateFaultyStatusHandler) Handle(ctx context.Context, cmd UpdateFaultyStatusCommand) (*FaultyStatusResult, error) {
	if status, err := domain.ParseFaultyStatus(string(cmd.Status)); err == nil {
		cmd.Status = status
	}

	var result *FaultyStatusResult
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   domain.ActionFaultyStatusUpdated,
		Actor:    cmd.Actor,
		Location: cmd.Actor.Location,
		Precheck: func(ctx context.Context) error {
			if cmd.ReportID == "" {
				return domain.Validation("report id is required")
			}
			if cmd.RepairCost != nil && cmd.RepairCost.IsNegative() {
				return domain.Validation("repair cost cannot be negative")
			}
			_, err := domain.ParseFaultyStatus(string(cmd.Status))
			return err
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			result = nil
			report, err := tx.GetFaultyReport(ctx, cmd.ReportID)
			if err != nil {
				return err
			}
			rec.Entity("faulty_phone_report", report.ID)
			rec.Locate(report.Location)

			item, err := tx.GetStockItemByID(ctx, report.StockItemID)
			if err != nil {
				return err
			}
			rec.Observe(item)

			if err := report.Transition(cmd.Status, cmd.Actor, cmd.Note, h.now()); err != nil {
				return err
			}

			res := &FaultyStatusResult{Report: report}
			if cmd.Status == domain.FaultyFixed {
				if report.StockDecremented {
					before := item.Quantity
					item.Quantity++
					if err := tx.UpdateStockItem(ctx, item); err != nil {
						return err
					}
					rec.Adjust(item, before)
				}

				cost := report.EstimatedRepairCost
				if cmd.RepairCost != nil {
					cost = cmd.RepairCost.Round(2)
				}
				repair := &domain.RepairRecord{
					ID:             txn.NewID(),
					FaultyReportID: report.ID,
					StockItemID:    item.ID,
					ItemCode:       item.ItemCode,
					Location:       item.Location,
					IMEI:           report.IMEI,
					RepairCost:     cost,
					SparesUsed:     report.SparesNeeded,
					RepairedBy:     cmd.Actor.UID,
					TransactionID:  rec.TransactionID(),
				}
				if err := tx.CreateRepair(ctx, repair); err != nil {
					return err
				}
				res.Repair = repair
			}

			if err := tx.UpdateFaultyReport(ctx, report); err != nil {
				return err
			}
			result = res
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
