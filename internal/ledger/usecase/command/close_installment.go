package command

import (
	"context"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
)

// CloseInstallmentCommand marks an active plan defaulted or cancelled
type CloseInstallmentCommand struct {
	Actor  domain.Actor
	PlanID string
	Status domain.InstallmentStatus
}

// CloseInstallmentHandler handles plan default and cancellation
type CloseInstallmentHandler struct {
	exec Executor
}

// NewCloseInstallmentHandler creates a new close installment handler
func NewCloseInstallmentHandler(exec Executor) *CloseInstallmentHandler {
	return &CloseInstallmentHandler{exec: exec}
}

// Handle moves the plan to its terminal status; no further payments are accepted
func (h *CloseInstallmentHandler) Handle(ctx context.Context, cmd CloseInstallmentCommand) (*domain.InstallmentPlan, error) {
	action := domain.ActionInstallmentDefaulted
	if cmd.Status == domain.InstallmentCancelled {
		action = domain.ActionInstallmentCancelled
	}

	var result *domain.InstallmentPlan
	_, err := h.exec.Run(ctx, txn.Operation{
		Action:   action,
		Actor:    cmd.Actor,
		Location: cmd.Actor.Location,
		Precheck: func(ctx context.Context) error {
			if cmd.PlanID == "" {
				return domain.Validation("plan id is required")
			}
			if cmd.Status != domain.InstallmentDefaulted && cmd.Status != domain.InstallmentCancelled {
				return domain.Validation("cannot close plan as %s", cmd.Status)
			}
			return nil
		},
		Work: func(ctx context.Context, tx domain.Tx, rec *txn.Recorder) error {
			result = nil
			plan, err := tx.GetInstallmentPlan(ctx, cmd.PlanID)
			if err != nil {
				return err
			}
			rec.Entity("installment_plan", plan.ID)
			rec.Locate(plan.Location)

			if err := plan.Close(cmd.Status); err != nil {
				return err
			}
			if err := tx.UpdateInstallmentPlan(ctx, plan); err != nil {
				return err
			}
			result = plan
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
