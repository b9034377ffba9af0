package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// GormStore is the postgres-backed domain.Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new gorm store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the ledger tables
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&domain.StockItem{},
		&domain.SaleRecord{},
		&domain.FaultyPhoneReport{},
		&domain.RepairRecord{},
		&domain.InstallmentPlan{},
		&domain.StockTransferRequest{},
		&domain.AuditLogEntry{},
	)
}

// Ping checks the connection
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return translate(sqlDB.PingContext(ctx))
}

// InTx runs fn in a read-committed transaction. Stock rows are locked by GetStockItem,
// and every versioned update is conditional, so a lost race surfaces as a conflict.
func (s *GormStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return translate(err)
}

// AppendAudit writes an entry in its own statement
func (s *GormStore) AppendAudit(ctx context.Context, entry *domain.AuditLogEntry) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

type gormTx struct {
	db *gorm.DB
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(format, args...)
	}
	return translate(err)
}

func (t *gormTx) GetStockItem(ctx context.Context, itemCode, location string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_code = ? AND location = ?", itemCode, location).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.StockItemNotFound(itemCode, location)
		}
		return nil, translate(err)
	}
	return &item, nil
}

func (t *gormTx) GetStockItemByID(ctx context.Context, id string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "stock item %s not found", id)
	}
	return &item, nil
}

func (t *gormTx) CreateStockItem(ctx context.Context, item *domain.StockItem) error {
	item.Version = 1
	return translate(t.db.WithContext(ctx).Create(item).Error)
}

func (t *gormTx) UpdateStockItem(ctx context.Context, item *domain.StockItem) error {
	old := item.Version
	item.Version = old + 1
	res := t.db.WithContext(ctx).
		Model(item).
		Where("version = ?", old).
		Select("quantity", "cost_price", "retail_price", "discount_percentage", "version", "updated_at").
		Updates(item)
	if res.Error != nil {
		item.Version = old
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		item.Version = old
		return domain.Conflict(fmt.Errorf("stock item %s version %d is stale", item.ID, old))
	}
	return nil
}

func (t *gormTx) CreateSale(ctx context.Context, sale *domain.SaleRecord) error {
	return translate(t.db.WithContext(ctx).Create(sale).Error)
}

func (t *gormTx) GetFaultyReport(ctx context.Context, id string) (*domain.FaultyPhoneReport, error) {
	var report domain.FaultyPhoneReport
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "faulty report %s not found", id)
	}
	return &report, nil
}

func (t *gormTx) CreateFaultyReport(ctx context.Context, report *domain.FaultyPhoneReport) error {
	report.Version = 1
	return translate(t.db.WithContext(ctx).Create(report).Error)
}

func (t *gormTx) UpdateFaultyReport(ctx context.Context, report *domain.FaultyPhoneReport) error {
	old := report.Version
	report.Version = old + 1
	res := t.db.WithContext(ctx).
		Model(report).
		Where("version = ?", old).
		Select("status", "status_history", "estimated_repair_cost", "spares_needed", "stock_decremented", "version", "updated_at").
		Updates(report)
	if res.Error != nil {
		report.Version = old
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		report.Version = old
		return domain.Conflict(fmt.Errorf("faulty report %s version %d is stale", report.ID, old))
	}
	return nil
}

func (t *gormTx) DeleteFaultyReport(ctx context.Context, report *domain.FaultyPhoneReport) error {
	res := t.db.WithContext(ctx).Where("version = ?", report.Version).Delete(report)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Conflict(fmt.Errorf("faulty report %s version %d is stale", report.ID, report.Version))
	}
	return nil
}

func (t *gormTx) CreateRepair(ctx context.Context, repair *domain.RepairRecord) error {
	return translate(t.db.WithContext(ctx).Create(repair).Error)
}

func (t *gormTx) GetInstallmentPlan(ctx context.Context, id string) (*domain.InstallmentPlan, error) {
	var plan domain.InstallmentPlan
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&plan, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "installment plan %s not found", id)
	}
	return &plan, nil
}

func (t *gormTx) CreateInstallmentPlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	plan.Version = 1
	return translate(t.db.WithContext(ctx).Create(plan).Error)
}

func (t *gormTx) UpdateInstallmentPlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	old := plan.Version
	plan.Version = old + 1
	res := t.db.WithContext(ctx).
		Model(plan).
		Where("version = ?", old).
		Select("total_paid", "remaining_amount", "total_late_fees", "next_due_date", "status", "payments", "version", "updated_at").
		Updates(plan)
	if res.Error != nil {
		plan.Version = old
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		plan.Version = old
		return domain.Conflict(fmt.Errorf("installment plan %s version %d is stale", plan.ID, old))
	}
	return nil
}

func (t *gormTx) CreateTransfer(ctx context.Context, transfer *domain.StockTransferRequest) error {
	return translate(t.db.WithContext(ctx).Create(transfer).Error)
}

func (t *gormTx) AppendAudit(ctx context.Context, entry *domain.AuditLogEntry) error {
	return translate(t.db.WithContext(ctx).Create(entry).Error)
}

// FindStockItem reads a stock item without locking
func (s *GormStore) FindStockItem(ctx context.Context, itemCode, location string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := s.db.WithContext(ctx).Where("item_code = ? AND location = ?", itemCode, location).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.StockItemNotFound(itemCode, location)
		}
		return nil, translate(err)
	}
	return &item, nil
}

// ListStockItems lists stock ordered by location and item code
func (s *GormStore) ListStockItems(ctx context.Context, filter domain.StockFilter) ([]domain.StockItem, error) {
	q := s.db.WithContext(ctx).Order("location, item_code")
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.ItemCode != "" {
		q = q.Where("item_code = ?", filter.ItemCode)
	}
	var items []domain.StockItem
	err := paginate(q, filter.Limit, filter.Offset).Find(&items).Error
	return items, translate(err)
}

// ListSales lists sales newest first
func (s *GormStore) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.ItemCode != "" {
		q = q.Where("item_code = ?", filter.ItemCode)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	var sales []domain.SaleRecord
	err := paginate(q, filter.Limit, filter.Offset).Find(&sales).Error
	return sales, translate(err)
}

// FindFaultyReport reads a report
func (s *GormStore) FindFaultyReport(ctx context.Context, id string) (*domain.FaultyPhoneReport, error) {
	var report domain.FaultyPhoneReport
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "faulty report %s not found", id)
	}
	return &report, nil
}

// ListRepairs lists repairs, optionally for one report
func (s *GormStore) ListRepairs(ctx context.Context, faultyReportID string) ([]domain.RepairRecord, error) {
	q := s.db.WithContext(ctx).Order("created_at")
	if faultyReportID != "" {
		q = q.Where("faulty_report_id = ?", faultyReportID)
	}
	var repairs []domain.RepairRecord
	err := q.Find(&repairs).Error
	return repairs, translate(err)
}

// FindInstallmentPlan reads a plan
func (s *GormStore) FindInstallmentPlan(ctx context.Context, id string) (*domain.InstallmentPlan, error) {
	var plan domain.InstallmentPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "installment plan %s not found", id)
	}
	return &plan, nil
}

// ListTransfers lists transfers touching a location
func (s *GormStore) ListTransfers(ctx context.Context, location string) ([]domain.StockTransferRequest, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if location != "" {
		q = q.Where("from_location = ? OR to_location = ?", location, location)
	}
	var transfers []domain.StockTransferRequest
	err := q.Find(&transfers).Error
	return transfers, translate(err)
}

// ListAudit lists audit entries in recording order
func (s *GormStore) ListAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	q := s.db.WithContext(ctx).Order("recorded_at, id")
	if filter.TransactionID != "" {
		q = q.Where("transaction_id = ?", filter.TransactionID)
	}
	if filter.ItemCode != "" {
		q = q.Where("item_code = ?", filter.ItemCode)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	var entries []domain.AuditLogEntry
	err := paginate(q, filter.Limit, filter.Offset).Find(&entries).Error
	return entries, translate(err)
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

var _ domain.Store = (*GormStore)(nil)
