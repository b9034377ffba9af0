package domain

import "time"

// AuditAction names the kind of mutation attempted
type AuditAction string

// Audit actions
const (
	ActionStockCreated         AuditAction = "stock_created"
	ActionStockRestocked       AuditAction = "stock_restocked"
	ActionPricingUpdated       AuditAction = "pricing_updated"
	ActionSale                 AuditAction = "sale"
	ActionFaultyReported       AuditAction = "faulty_reported"
	ActionFaultyStatusUpdated  AuditAction = "faulty_status_updated"
	ActionFaultyDeleted        AuditAction = "faulty_deleted"
	ActionInstallmentCreated   AuditAction = "installment_created"
	ActionInstallmentPayment   AuditAction = "installment_payment"
	ActionInstallmentDefaulted AuditAction = "installment_defaulted"
	ActionInstallmentCancelled AuditAction = "installment_cancelled"
	ActionTransferRequested    AuditAction = "transfer_requested"
)

// AuditOutcome is the result of an executor invocation
type AuditOutcome string

// Outcomes
const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailed  AuditOutcome = "failed"
)

// AuditLogEntry is written exactly once per executor invocation and never mutated.
// RecordedAt is assigned by the store.
type AuditLogEntry struct {
	ID             string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TransactionID  string       `json:"transaction_id" gorm:"not null;uniqueIndex"`
	Action         AuditAction  `json:"action" gorm:"not null;index"`
	ActorID        string       `json:"actor_id" gorm:"not null"`
	ActorName      string       `json:"actor_name"`
	ActorRole      string       `json:"actor_role"`
	Location       string       `json:"location" gorm:"index"`
	StockItemID    string       `json:"stock_item_id,omitempty" gorm:"index"`
	ItemCode       string       `json:"item_code,omitempty" gorm:"index"`
	QuantityBefore *int         `json:"quantity_before,omitempty"`
	QuantityAfter  *int         `json:"quantity_after,omitempty"`
	QuantityDelta  int          `json:"quantity_delta" gorm:"not null;default:0"`
	EntityType     string       `json:"entity_type,omitempty"`
	EntityID       string       `json:"entity_id,omitempty"`
	Outcome        AuditOutcome `json:"outcome" gorm:"not null;index"`
	ErrorKind      string       `json:"error_kind,omitempty"`
	ErrorDetail    string       `json:"error_detail,omitempty"`
	Attempts       int          `json:"attempts" gorm:"not null;default:1"`
	RecordedAt     time.Time    `json:"recorded_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName specifies the table name
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}

// AuditFilter narrows audit listings
type AuditFilter struct {
	TransactionID string
	ItemCode      string
	Location      string
	Limit         int
	Offset        int
}
