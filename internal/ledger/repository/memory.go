package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// MemoryStore is an in-process domain.Store. Units of work run optimistically and are
// validated against row versions at commit, so concurrent writers conflict as they would
// on a database.
type MemoryStore struct {
	mu sync.Mutex

	stock     map[string]domain.StockItem
	stockKey  map[string]string
	sales     []domain.SaleRecord
	faulty    map[string]domain.FaultyPhoneReport
	repairs   []domain.RepairRecord
	plans     map[string]domain.InstallmentPlan
	transfers []domain.StockTransferRequest
	audit     []domain.AuditLogEntry

	failCommits   int
	failCommitErr error
	failWrites    map[string]error

	now func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stock:      make(map[string]domain.StockItem),
		stockKey:   make(map[string]string),
		faulty:     make(map[string]domain.FaultyPhoneReport),
		plans:      make(map[string]domain.InstallmentPlan),
		failWrites: make(map[string]error),
		now:        time.Now,
	}
}

func stockKey(itemCode, location string) string {
	return itemCode + "|" + location
}

// FailNextCommits makes the next n commits fail with err after the unit of work has run.
// A nil err fails with a write conflict.
func (s *MemoryStore) FailNextCommits(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = domain.Conflict(fmt.Errorf("injected commit failure"))
	}
	s.failCommits = n
	s.failCommitErr = err
}

// FailNextWrite makes the next call of the named Tx method (e.g. "CreateSale") return err
func (s *MemoryStore) FailNextWrite(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites[method] = err
}

func (s *MemoryStore) takeWriteFault(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err, ok := s.failWrites[method]
	if !ok {
		return nil
	}
	delete(s.failWrites, method)
	return err
}

// Seed inserts records directly, bypassing units of work and audit.
// It exists to set up fixtures and to simulate corrupted data.
func (s *MemoryStore) Seed(records ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		switch v := r.(type) {
		case domain.StockItem:
			if v.Version == 0 {
				v.Version = 1
			}
			s.stock[v.ID] = v
			s.stockKey[stockKey(v.ItemCode, v.Location)] = v.ID
		case domain.SaleRecord:
			s.sales = append(s.sales, v)
		case domain.FaultyPhoneReport:
			s.faulty[v.ID] = cloneReport(v)
		case domain.RepairRecord:
			s.repairs = append(s.repairs, v)
		case domain.InstallmentPlan:
			s.plans[v.ID] = clonePlan(v)
		case domain.StockTransferRequest:
			s.transfers = append(s.transfers, v)
		case domain.AuditLogEntry:
			s.audit = append(s.audit, v)
		default:
			panic(fmt.Sprintf("repository: cannot seed %T", r))
		}
	}
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// InTx runs fn against a private view and commits its writes atomically
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newMemTx(s)
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// AppendAudit appends an entry outside any unit of work
func (s *MemoryStore) AppendAudit(ctx context.Context, entry *domain.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAuditLocked(entry); err != nil {
		return err
	}
	entry.RecordedAt = s.now()
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *MemoryStore) checkAuditLocked(entry *domain.AuditLogEntry) error {
	for _, a := range s.audit {
		if a.TransactionID == entry.TransactionID {
			return domain.Validation("audit entry for transaction %s already exists", entry.TransactionID)
		}
	}
	return nil
}

func (s *MemoryStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommits > 0 {
		s.failCommits--
		return s.failCommitErr
	}

	for id, v := range tx.stockVersions {
		cur, ok := s.stock[id]
		if !ok || cur.Version != v {
			return domain.Conflict(fmt.Errorf("stock item %s modified concurrently", id))
		}
	}
	for id, v := range tx.faultyVersions {
		cur, ok := s.faulty[id]
		if !ok || cur.Version != v {
			return domain.Conflict(fmt.Errorf("faulty report %s modified concurrently", id))
		}
	}
	for id, v := range tx.planVersions {
		cur, ok := s.plans[id]
		if !ok || cur.Version != v {
			return domain.Conflict(fmt.Errorf("installment plan %s modified concurrently", id))
		}
	}

	for _, item := range tx.newStock {
		if _, exists := s.stockKey[stockKey(item.ItemCode, item.Location)]; exists {
			return domain.Validation("stock item %s already exists at %s", item.ItemCode, item.Location)
		}
	}
	for _, sale := range tx.sales {
		for _, existing := range s.sales {
			if existing.ReceiptNumber == sale.ReceiptNumber || existing.TransactionID == sale.TransactionID {
				return domain.Validation("sale %s already recorded", sale.ReceiptNumber)
			}
		}
	}
	for _, repair := range tx.repairs {
		for _, existing := range s.repairs {
			if existing.FaultyReportID == repair.FaultyReportID {
				return domain.Validation("repair for report %s already recorded", repair.FaultyReportID)
			}
		}
	}
	for _, entry := range tx.audit {
		if err := s.checkAuditLocked(entry); err != nil {
			return err
		}
	}

	now := s.now()
	for _, item := range tx.newStock {
		item.CreatedAt, item.UpdatedAt = now, now
		s.stock[item.ID] = *item
		s.stockKey[stockKey(item.ItemCode, item.Location)] = item.ID
	}
	for id, item := range tx.stock {
		if _, created := tx.newStock[id]; created {
			continue
		}
		item.UpdatedAt = now
		s.stock[id] = *item
	}
	for _, sale := range tx.sales {
		sale.CreatedAt = now
		s.sales = append(s.sales, *sale)
	}
	for id, report := range tx.faulty {
		if report.CreatedAt.IsZero() {
			report.CreatedAt = now
		}
		report.UpdatedAt = now
		s.faulty[id] = cloneReport(*report)
	}
	for id := range tx.deletedFaulty {
		delete(s.faulty, id)
	}
	for _, repair := range tx.repairs {
		repair.CreatedAt = now
		s.repairs = append(s.repairs, *repair)
	}
	for id, plan := range tx.plans {
		if plan.CreatedAt.IsZero() {
			plan.CreatedAt = now
		}
		plan.UpdatedAt = now
		s.plans[id] = clonePlan(*plan)
	}
	for _, tr := range tx.transfers {
		tr.CreatedAt = now
		s.transfers = append(s.transfers, *tr)
	}
	for _, entry := range tx.audit {
		entry.RecordedAt = now
		s.audit = append(s.audit, *entry)
	}
	return nil
}

// memTx stages writes for one unit of work. Versions seen on first read are checked at commit.
type memTx struct {
	store *MemoryStore

	stockVersions  map[string]int
	faultyVersions map[string]int
	planVersions   map[string]int

	stock         map[string]*domain.StockItem
	newStock      map[string]*domain.StockItem
	sales         []*domain.SaleRecord
	faulty        map[string]*domain.FaultyPhoneReport
	deletedFaulty map[string]struct{}
	repairs       []*domain.RepairRecord
	plans         map[string]*domain.InstallmentPlan
	transfers     []*domain.StockTransferRequest
	audit         []*domain.AuditLogEntry
}

func newMemTx(s *MemoryStore) *memTx {
	return &memTx{
		store:          s,
		stockVersions:  make(map[string]int),
		faultyVersions: make(map[string]int),
		planVersions:   make(map[string]int),
		stock:          make(map[string]*domain.StockItem),
		newStock:       make(map[string]*domain.StockItem),
		faulty:         make(map[string]*domain.FaultyPhoneReport),
		deletedFaulty:  make(map[string]struct{}),
		plans:          make(map[string]*domain.InstallmentPlan),
	}
}

func (t *memTx) GetStockItem(ctx context.Context, itemCode, location string) (*domain.StockItem, error) {
	for _, item := range t.stock {
		if item.ItemCode == itemCode && item.Location == location {
			cp := *item
			return &cp, nil
		}
	}
	t.store.mu.Lock()
	id, ok := t.store.stockKey[stockKey(itemCode, location)]
	t.store.mu.Unlock()
	if !ok {
		return nil, domain.StockItemNotFound(itemCode, location)
	}
	return t.GetStockItemByID(ctx, id)
}

func (t *memTx) GetStockItemByID(ctx context.Context, id string) (*domain.StockItem, error) {
	if item, ok := t.stock[id]; ok {
		cp := *item
		return &cp, nil
	}
	t.store.mu.Lock()
	item, ok := t.store.stock[id]
	t.store.mu.Unlock()
	if !ok {
		return nil, domain.NotFound("stock item %s not found", id)
	}
	if _, seen := t.stockVersions[id]; !seen {
		t.stockVersions[id] = item.Version
	}
	return &item, nil
}

func (t *memTx) CreateStockItem(ctx context.Context, item *domain.StockItem) error {
	if err := t.store.takeWriteFault("CreateStockItem"); err != nil {
		return err
	}
	item.Version = 1
	cp := *item
	t.newStock[item.ID] = &cp
	t.stock[item.ID] = &cp
	return nil
}

func (t *memTx) UpdateStockItem(ctx context.Context, item *domain.StockItem) error {
	if err := t.store.takeWriteFault("UpdateStockItem"); err != nil {
		return err
	}
	if item.Quantity < 0 {
		return domain.Integrity("stock item %s would go negative", item.ID)
	}
	if _, seen := t.stockVersions[item.ID]; !seen {
		if _, created := t.newStock[item.ID]; !created {
			t.stockVersions[item.ID] = item.Version
		}
	}
	item.Version++
	cp := *item
	if _, created := t.newStock[item.ID]; created {
		t.newStock[item.ID] = &cp
	}
	t.stock[item.ID] = &cp
	return nil
}

func (t *memTx) CreateSale(ctx context.Context, sale *domain.SaleRecord) error {
	if err := t.store.takeWriteFault("CreateSale"); err != nil {
		return err
	}
	cp := *sale
	t.sales = append(t.sales, &cp)
	return nil
}

func (t *memTx) GetFaultyReport(ctx context.Context, id string) (*domain.FaultyPhoneReport, error) {
	if _, gone := t.deletedFaulty[id]; gone {
		return nil, domain.NotFound("faulty report %s not found", id)
	}
	if r, ok := t.faulty[id]; ok {
		cp := cloneReport(*r)
		return &cp, nil
	}
	t.store.mu.Lock()
	r, ok := t.store.faulty[id]
	t.store.mu.Unlock()
	if !ok {
		return nil, domain.NotFound("faulty report %s not found", id)
	}
	if _, seen := t.faultyVersions[id]; !seen {
		t.faultyVersions[id] = r.Version
	}
	cp := cloneReport(r)
	return &cp, nil
}

func (t *memTx) CreateFaultyReport(ctx context.Context, report *domain.FaultyPhoneReport) error {
	if err := t.store.takeWriteFault("CreateFaultyReport"); err != nil {
		return err
	}
	report.Version = 1
	cp := cloneReport(*report)
	t.faulty[report.ID] = &cp
	return nil
}

func (t *memTx) UpdateFaultyReport(ctx context.Context, report *domain.FaultyPhoneReport) error {
	if err := t.store.takeWriteFault("UpdateFaultyReport"); err != nil {
		return err
	}
	if _, seen := t.faultyVersions[report.ID]; !seen {
		t.faultyVersions[report.ID] = report.Version
	}
	report.Version++
	cp := cloneReport(*report)
	t.faulty[report.ID] = &cp
	return nil
}

func (t *memTx) DeleteFaultyReport(ctx context.Context, report *domain.FaultyPhoneReport) error {
	if err := t.store.takeWriteFault("DeleteFaultyReport"); err != nil {
		return err
	}
	if _, seen := t.faultyVersions[report.ID]; !seen {
		t.faultyVersions[report.ID] = report.Version
	}
	delete(t.faulty, report.ID)
	t.deletedFaulty[report.ID] = struct{}{}
	return nil
}

func (t *memTx) CreateRepair(ctx context.Context, repair *domain.RepairRecord) error {
	if err := t.store.takeWriteFault("CreateRepair"); err != nil {
		return err
	}
	cp := *repair
	t.repairs = append(t.repairs, &cp)
	return nil
}

func (t *memTx) GetInstallmentPlan(ctx context.Context, id string) (*domain.InstallmentPlan, error) {
	if p, ok := t.plans[id]; ok {
		cp := clonePlan(*p)
		return &cp, nil
	}
	t.store.mu.Lock()
	p, ok := t.store.plans[id]
	t.store.mu.Unlock()
	if !ok {
		return nil, domain.NotFound("installment plan %s not found", id)
	}
	if _, seen := t.planVersions[id]; !seen {
		t.planVersions[id] = p.Version
	}
	cp := clonePlan(p)
	return &cp, nil
}

func (t *memTx) CreateInstallmentPlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	if err := t.store.takeWriteFault("CreateInstallmentPlan"); err != nil {
		return err
	}
	plan.Version = 1
	cp := clonePlan(*plan)
	t.plans[plan.ID] = &cp
	return nil
}

func (t *memTx) UpdateInstallmentPlan(ctx context.Context, plan *domain.InstallmentPlan) error {
	if err := t.store.takeWriteFault("UpdateInstallmentPlan"); err != nil {
		return err
	}
	if _, seen := t.planVersions[plan.ID]; !seen {
		t.planVersions[plan.ID] = plan.Version
	}
	plan.Version++
	cp := clonePlan(*plan)
	t.plans[plan.ID] = &cp
	return nil
}

func (t *memTx) CreateTransfer(ctx context.Context, transfer *domain.StockTransferRequest) error {
	if err := t.store.takeWriteFault("CreateTransfer"); err != nil {
		return err
	}
	cp := *transfer
	t.transfers = append(t.transfers, &cp)
	return nil
}

func (t *memTx) AppendAudit(ctx context.Context, entry *domain.AuditLogEntry) error {
	if err := t.store.takeWriteFault("AppendAudit"); err != nil {
		return err
	}
	t.audit = append(t.audit, entry)
	return nil
}

func cloneReport(r domain.FaultyPhoneReport) domain.FaultyPhoneReport {
	r.SparesNeeded = append([]string(nil), r.SparesNeeded...)
	r.StatusHistory = append([]domain.StatusChange(nil), r.StatusHistory...)
	return r
}

func clonePlan(p domain.InstallmentPlan) domain.InstallmentPlan {
	p.Payments = append([]domain.PaymentRecord(nil), p.Payments...)
	if p.NextDueDate != nil {
		d := *p.NextDueDate
		p.NextDueDate = &d
	}
	if p.SaleID != nil {
		id := *p.SaleID
		p.SaleID = &id
	}
	return p
}

// FindStockItem reads a committed stock item
func (s *MemoryStore) FindStockItem(ctx context.Context, itemCode, location string) (*domain.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.stockKey[stockKey(itemCode, location)]
	if !ok {
		return nil, domain.StockItemNotFound(itemCode, location)
	}
	item := s.stock[id]
	return &item, nil
}

// ListStockItems returns committed stock items ordered by location and item code
func (s *MemoryStore) ListStockItems(ctx context.Context, filter domain.StockFilter) ([]domain.StockItem, error) {
	s.mu.Lock()
	items := make([]domain.StockItem, 0, len(s.stock))
	for _, item := range s.stock {
		if filter.Location != "" && item.Location != filter.Location {
			continue
		}
		if filter.ItemCode != "" && item.ItemCode != filter.ItemCode {
			continue
		}
		items = append(items, item)
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Location != items[j].Location {
			return items[i].Location < items[j].Location
		}
		return items[i].ItemCode < items[j].ItemCode
	})
	return page(items, filter.Offset, filter.Limit), nil
}

// ListSales returns committed sales, newest first
func (s *MemoryStore) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error) {
	s.mu.Lock()
	sales := make([]domain.SaleRecord, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.Location != "" && sale.Location != filter.Location {
			continue
		}
		if filter.ItemCode != "" && sale.ItemCode != filter.ItemCode {
			continue
		}
		if !filter.From.IsZero() && sale.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sale.CreatedAt.Before(filter.To) {
			continue
		}
		sales = append(sales, sale)
	}
	s.mu.Unlock()

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return page(sales, filter.Offset, filter.Limit), nil
}

// FindFaultyReport reads a committed report
func (s *MemoryStore) FindFaultyReport(ctx context.Context, id string) (*domain.FaultyPhoneReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.faulty[id]
	if !ok {
		return nil, domain.NotFound("faulty report %s not found", id)
	}
	cp := cloneReport(r)
	return &cp, nil
}

// ListRepairs returns repairs, optionally for one report
func (s *MemoryStore) ListRepairs(ctx context.Context, faultyReportID string) ([]domain.RepairRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RepairRecord, 0)
	for _, r := range s.repairs {
		if faultyReportID == "" || r.FaultyReportID == faultyReportID {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindInstallmentPlan reads a committed plan
func (s *MemoryStore) FindInstallmentPlan(ctx context.Context, id string) (*domain.InstallmentPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, domain.NotFound("installment plan %s not found", id)
	}
	cp := clonePlan(p)
	return &cp, nil
}

// ListInstallmentPlans returns all committed plans
func (s *MemoryStore) ListInstallmentPlans(ctx context.Context) ([]domain.InstallmentPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.InstallmentPlan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, clonePlan(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListTransfers returns transfer requests touching a location, or all of them
func (s *MemoryStore) ListTransfers(ctx context.Context, location string) ([]domain.StockTransferRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.StockTransferRequest, 0)
	for _, tr := range s.transfers {
		if location == "" || tr.FromLocation == location || tr.ToLocation == location {
			out = append(out, tr)
		}
	}
	return out, nil
}

// ListAudit returns audit entries in append order
func (s *MemoryStore) ListAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	s.mu.Lock()
	out := make([]domain.AuditLogEntry, 0)
	for _, a := range s.audit {
		if filter.TransactionID != "" && a.TransactionID != filter.TransactionID {
			continue
		}
		if filter.ItemCode != "" && a.ItemCode != filter.ItemCode {
			continue
		}
		if filter.Location != "" && a.Location != filter.Location {
			continue
		}
		out = append(out, a)
	}
	s.mu.Unlock()
	return page(out, filter.Offset, filter.Limit), nil
}

// AuditDeltaTotals sums successful quantity deltas per stock item
func (s *MemoryStore) AuditDeltaTotals(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]int)
	for _, a := range s.audit {
		if a.Outcome != domain.OutcomeSuccess || a.StockItemID == "" {
			continue
		}
		totals[a.StockItemID] += a.QuantityDelta
	}
	return totals, nil
}

// OrphanReferences finds records whose references point at missing rows
func (s *MemoryStore) OrphanReferences(ctx context.Context) ([]domain.OrphanReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.OrphanReference
	missingStock := func(entity, id, ref string) {
		if ref == "" {
			return
		}
		if _, ok := s.stock[ref]; !ok {
			out = append(out, domain.OrphanReference{EntityType: entity, EntityID: id, Field: "stock_item_id", MissingID: ref})
		}
	}

	for _, sale := range s.sales {
		missingStock("sale_record", sale.ID, sale.StockItemID)
	}
	for _, r := range s.faulty {
		missingStock("faulty_phone_report", r.ID, r.StockItemID)
	}
	for _, r := range s.repairs {
		missingStock("repair_record", r.ID, r.StockItemID)
		if _, ok := s.faulty[r.FaultyReportID]; !ok {
			out = append(out, domain.OrphanReference{EntityType: "repair_record", EntityID: r.ID, Field: "faulty_report_id", MissingID: r.FaultyReportID})
		}
	}
	for _, tr := range s.transfers {
		missingStock("stock_transfer_request", tr.ID, tr.StockItemID)
	}

	saleIDs := make(map[string]struct{}, len(s.sales))
	for _, sale := range s.sales {
		saleIDs[sale.ID] = struct{}{}
	}
	for _, p := range s.plans {
		missingStock("installment_plan", p.ID, p.StockItemID)
		if p.SaleID != nil {
			if _, ok := saleIDs[*p.SaleID]; !ok {
				out = append(out, domain.OrphanReference{EntityType: "installment_plan", EntityID: p.ID, Field: "sale_id", MissingID: *p.SaleID})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityType != out[j].EntityType {
			return out[i].EntityType < out[j].EntityType
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ domain.Store             = (*MemoryStore)(nil)
	_ domain.ConsistencySource = (*MemoryStore)(nil)
)
