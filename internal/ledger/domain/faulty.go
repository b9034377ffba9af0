package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FaultyStatus is a state of the faulty-device lifecycle
type FaultyStatus string

// Faulty statuses
const (
	FaultyReported FaultyStatus = "Reported"
	FaultyInRepair FaultyStatus = "In Repair"
	FaultyFixed    FaultyStatus = "Fixed"
	FaultyEOS      FaultyStatus = "EOS"
	FaultyScrapped FaultyStatus = "Scrapped"
)

var faultyTransitions = map[FaultyStatus][]FaultyStatus{
	FaultyReported: {FaultyInRepair, FaultyEOS, FaultyScrapped},
	FaultyInRepair: {FaultyFixed, FaultyEOS, FaultyScrapped},
}

// ParseFaultyStatus accepts the canonical names case-insensitively
func ParseFaultyStatus(s string) (FaultyStatus, error) {
	for _, st := range []FaultyStatus{FaultyReported, FaultyInRepair, FaultyFixed, FaultyEOS, FaultyScrapped} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", Validation("unknown faulty status %q", s)
}

// IsTerminal reports whether no transition leaves s
func (s FaultyStatus) IsTerminal() bool {
	return len(faultyTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> next is legal
func (s FaultyStatus) CanTransitionTo(next FaultyStatus) bool {
	for _, allowed := range faultyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatusChange is one statusHistory entry
type StatusChange struct {
	Status    FaultyStatus `json:"status"`
	ActorID   string       `json:"actor_id"`
	ActorName string       `json:"actor_name"`
	Note      string       `json:"note,omitempty"`
	At        time.Time    `json:"at"`
}

// FaultyPhoneReport tracks a device removed from sellable stock for repair
type FaultyPhoneReport struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	StockItemID         string          `json:"stock_item_id" gorm:"not null;index"`
	ItemCode            string          `json:"item_code" gorm:"not null"`
	Location            string          `json:"location" gorm:"not null;index"`
	IMEI                string          `json:"imei"`
	FaultDescription    string          `json:"fault_description" gorm:"not null"`
	ReportedCost        decimal.Decimal `json:"reported_cost" gorm:"type:numeric(14,2);not null;default:0"`
	EstimatedRepairCost decimal.Decimal `json:"estimated_repair_cost" gorm:"type:numeric(14,2);not null;default:0"`
	SparesNeeded        []string        `json:"spares_needed" gorm:"type:jsonb;serializer:json"`
	Status              FaultyStatus    `json:"status" gorm:"not null;index"`
	StatusHistory       []StatusChange  `json:"status_history" gorm:"type:jsonb;serializer:json"`
	StockDecremented    bool            `json:"stock_decremented"`
	Customer            Customer        `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	ReportedBy          string          `json:"reported_by" gorm:"not null"`
	Version             int             `json:"version" gorm:"not null;default:1"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (FaultyPhoneReport) TableName() string {
	return "faulty_phone_reports"
}

// Transition moves the report to next and appends the history entry
func (r *FaultyPhoneReport) Transition(next FaultyStatus, actor Actor, note string, at time.Time) error {
	if r.Status.IsTerminal() {
		return Validation("report %s is in terminal status %s", r.ID, r.Status)
	}
	if !r.Status.CanTransitionTo(next) {
		return Validation("cannot move report from %s to %s", r.Status, next)
	}
	r.Status = next
	r.StatusHistory = append(r.StatusHistory, StatusChange{
		Status:    next,
		ActorID:   actor.UID,
		ActorName: actor.DisplayName,
		Note:      note,
		At:        at,
	})
	return nil
}

// NormalizeSpares turns a spare-part tag list into a sorted set
func NormalizeSpares(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RepairRecord is written once, when a report reaches Fixed
type RepairRecord struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FaultyReportID string          `json:"faulty_report_id" gorm:"not null;uniqueIndex"`
	StockItemID    string          `json:"stock_item_id" gorm:"not null;index"`
	ItemCode       string          `json:"item_code" gorm:"not null"`
	Location       string          `json:"location" gorm:"not null"`
	IMEI           string          `json:"imei"`
	RepairCost     decimal.Decimal `json:"repair_cost" gorm:"type:numeric(14,2);not null;default:0"`
	SparesUsed     []string        `json:"spares_used" gorm:"type:jsonb;serializer:json"`
	RepairedBy     string          `json:"repaired_by" gorm:"not null"`
	TransactionID  string          `json:"transaction_id" gorm:"uniqueIndex"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (RepairRecord) TableName() string {
	return "repair_records"
}
