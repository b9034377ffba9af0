package txn

import (
	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// Recorder collects what one attempt of a unit of work touched, for its audit entry.
// A fresh Recorder is handed to every attempt.
type Recorder struct {
	txID        string
	stockItemID string
	itemCode    string
	location    string
	before      *int
	after       *int
	delta       int
	entityType  string
	entityID    string
}

func newRecorder(txID string) *Recorder {
	return &Recorder{txID: txID}
}

// TransactionID is shared by every attempt of one invocation
func (r *Recorder) TransactionID() string {
	return r.txID
}

// Observe notes the stock item an attempt read, before any change
func (r *Recorder) Observe(item *domain.StockItem) {
	q := item.Quantity
	r.stockItemID = item.ID
	r.itemCode = item.ItemCode
	r.location = item.Location
	r.before = &q
	r.after = &q
	r.delta = 0
}

// Adjust records a quantity change from before to the item's current quantity
func (r *Recorder) Adjust(item *domain.StockItem, before int) {
	b, q := before, item.Quantity
	r.stockItemID = item.ID
	r.itemCode = item.ItemCode
	r.location = item.Location
	r.before = &b
	r.after = &q
	r.delta = q - b
}

// Created records a new stock item; its opening quantity is not a delta
func (r *Recorder) Created(item *domain.StockItem) {
	q := item.Quantity
	r.stockItemID = item.ID
	r.itemCode = item.ItemCode
	r.location = item.Location
	r.after = &q
	r.before = nil
	r.delta = 0
}

// Locate sets the audited location when no stock item is touched
func (r *Recorder) Locate(location string) {
	if r.stockItemID == "" {
		r.location = location
	}
}

// Entity names the dependent record produced by the attempt
func (r *Recorder) Entity(entityType, id string) {
	r.entityType = entityType
	r.entityID = id
}

// Delta is the quantity change staged so far
func (r *Recorder) Delta() int {
	return r.delta
}

func (r *Recorder) fill(e *domain.AuditLogEntry, committed bool) {
	if r.stockItemID != "" {
		e.StockItemID = r.stockItemID
	}
	if r.itemCode != "" {
		e.ItemCode = r.itemCode
	}
	if r.location != "" {
		e.Location = r.location
	}
	e.EntityType = r.entityType
	e.EntityID = r.entityID
	e.QuantityBefore = r.before
	if committed {
		e.QuantityAfter = r.after
		e.QuantityDelta = r.delta
		return
	}
	// nothing was applied
	e.QuantityAfter = r.before
	e.QuantityDelta = 0
}
