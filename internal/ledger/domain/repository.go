package domain

import "context"

// Tx is the store as seen from inside one atomic unit of work.
// Writes become visible only when the enclosing InTx returns nil.
type Tx interface {
	// GetStockItem reads the freshest row and holds it for the rest of the unit of work
	GetStockItem(ctx context.Context, itemCode, location string) (*StockItem, error)
	GetStockItemByID(ctx context.Context, id string) (*StockItem, error)
	CreateStockItem(ctx context.Context, item *StockItem) error
	// UpdateStockItem writes item if its version is unchanged since it was read, then bumps the version
	UpdateStockItem(ctx context.Context, item *StockItem) error

	CreateSale(ctx context.Context, sale *SaleRecord) error

	GetFaultyReport(ctx context.Context, id string) (*FaultyPhoneReport, error)
	CreateFaultyReport(ctx context.Context, report *FaultyPhoneReport) error
	UpdateFaultyReport(ctx context.Context, report *FaultyPhoneReport) error
	DeleteFaultyReport(ctx context.Context, report *FaultyPhoneReport) error
	CreateRepair(ctx context.Context, repair *RepairRecord) error

	GetInstallmentPlan(ctx context.Context, id string) (*InstallmentPlan, error)
	CreateInstallmentPlan(ctx context.Context, plan *InstallmentPlan) error
	UpdateInstallmentPlan(ctx context.Context, plan *InstallmentPlan) error

	CreateTransfer(ctx context.Context, transfer *StockTransferRequest) error

	AppendAudit(ctx context.Context, entry *AuditLogEntry) error
}

// LedgerReader serves immutable snapshots to queries
type LedgerReader interface {
	FindStockItem(ctx context.Context, itemCode, location string) (*StockItem, error)
	ListStockItems(ctx context.Context, filter StockFilter) ([]StockItem, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]SaleRecord, error)
	FindFaultyReport(ctx context.Context, id string) (*FaultyPhoneReport, error)
	ListRepairs(ctx context.Context, faultyReportID string) ([]RepairRecord, error)
	FindInstallmentPlan(ctx context.Context, id string) (*InstallmentPlan, error)
	ListTransfers(ctx context.Context, location string) ([]StockTransferRequest, error)
	ListAudit(ctx context.Context, filter AuditFilter) ([]AuditLogEntry, error)
}

// Store is the single authoritative persistence boundary
type Store interface {
	LedgerReader
	// InTx runs fn as one atomic, isolated unit of work
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// AppendAudit writes an entry outside any unit of work
	AppendAudit(ctx context.Context, entry *AuditLogEntry) error
	Ping(ctx context.Context) error
}

// OrphanReference is a record pointing at something that no longer exists
type OrphanReference struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Field      string `json:"field"`
	MissingID  string `json:"missing_id"`
}

// ConsistencySource is the read surface the consistency scanner sweeps, outside any transaction
type ConsistencySource interface {
	ListStockItems(ctx context.Context, filter StockFilter) ([]StockItem, error)
	// AuditDeltaTotals sums successful quantity deltas per stock item id
	AuditDeltaTotals(ctx context.Context) (map[string]int, error)
	OrphanReferences(ctx context.Context) ([]OrphanReference, error)
	ListInstallmentPlans(ctx context.Context) ([]InstallmentPlan, error)
}
