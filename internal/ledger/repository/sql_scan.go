package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// SQLScanReader serves the consistency scanner straight from a lib/pq pool,
// with plain non-transactional reads
type SQLScanReader struct {
	db *sql.DB
}

// NewSQLScanReader creates a new scan reader
func NewSQLScanReader(db *sql.DB) *SQLScanReader {
	return &SQLScanReader{db: db}
}

// ListStockItems reads the quantity columns of every stock item
func (r *SQLScanReader) ListStockItems(ctx context.Context, filter domain.StockFilter) ([]domain.StockItem, error) {
	query := `SELECT id, item_code, location, brand, model, quantity, initial_quantity, version
		FROM stock_items WHERE ($1 = '' OR location = $1) ORDER BY location, item_code`
	rows, err := r.db.QueryContext(ctx, query, filter.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock items: %w", translate(err))
	}
	defer rows.Close()

	var items []domain.StockItem
	for rows.Next() {
		var it domain.StockItem
		if err := rows.Scan(&it.ID, &it.ItemCode, &it.Location, &it.Brand, &it.Model, &it.Quantity, &it.InitialQuantity, &it.Version); err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AuditDeltaTotals sums successful deltas per stock item
func (r *SQLScanReader) AuditDeltaTotals(ctx context.Context) (map[string]int, error) {
	query := `SELECT stock_item_id, COALESCE(SUM(quantity_delta), 0)
		FROM audit_log_entries
		WHERE outcome = 'success' AND stock_item_id <> ''
		GROUP BY stock_item_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum audit deltas: %w", translate(err))
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var id string
		var sum int
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan audit delta: %w", err)
		}
		totals[id] = sum
	}
	return totals, rows.Err()
}

const orphanQuery = `
SELECT 'sale_record', s.id, 'stock_item_id', s.stock_item_id
	FROM sale_records s LEFT JOIN stock_items i ON i.id = s.stock_item_id WHERE i.id IS NULL
UNION ALL
SELECT 'faulty_phone_report', f.id, 'stock_item_id', f.stock_item_id
	FROM faulty_phone_reports f LEFT JOIN stock_items i ON i.id = f.stock_item_id WHERE i.id IS NULL
UNION ALL
SELECT 'repair_record', r.id, 'stock_item_id', r.stock_item_id
	FROM repair_records r LEFT JOIN stock_items i ON i.id = r.stock_item_id WHERE i.id IS NULL
UNION ALL
SELECT 'repair_record', r.id, 'faulty_report_id', r.faulty_report_id
	FROM repair_records r LEFT JOIN faulty_phone_reports f ON f.id = r.faulty_report_id WHERE f.id IS NULL
UNION ALL
SELECT 'stock_transfer_request', t.id, 'stock_item_id', t.stock_item_id
	FROM stock_transfer_requests t LEFT JOIN stock_items i ON i.id = t.stock_item_id WHERE i.id IS NULL
UNION ALL
SELECT 'installment_plan', p.id, 'stock_item_id', p.stock_item_id
	FROM installment_plans p LEFT JOIN stock_items i ON i.id = p.stock_item_id
	WHERE p.stock_item_id <> '' AND i.id IS NULL
UNION ALL
SELECT 'installment_plan', p.id, 'sale_id', p.sale_id
	FROM installment_plans p LEFT JOIN sale_records s ON s.id = p.sale_id
	WHERE p.sale_id IS NOT NULL AND s.id IS NULL
ORDER BY 1, 2`

// OrphanReferences finds dangling references with anti-joins
func (r *SQLScanReader) OrphanReferences(ctx context.Context) ([]domain.OrphanReference, error) {
	rows, err := r.db.QueryContext(ctx, orphanQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphan references: %w", translate(err))
	}
	defer rows.Close()

	var out []domain.OrphanReference
	for rows.Next() {
		var o domain.OrphanReference
		if err := rows.Scan(&o.EntityType, &o.EntityID, &o.Field, &o.MissingID); err != nil {
			return nil, fmt.Errorf("failed to scan orphan reference: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListInstallmentPlans reads plan balances and payment histories
func (r *SQLScanReader) ListInstallmentPlans(ctx context.Context) ([]domain.InstallmentPlan, error) {
	query := `SELECT id, location, total_amount, total_paid, remaining_amount, status, COALESCE(payments, '[]')
		FROM installment_plans ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query installment plans: %w", translate(err))
	}
	defer rows.Close()

	var plans []domain.InstallmentPlan
	for rows.Next() {
		var p domain.InstallmentPlan
		var payments []byte
		if err := rows.Scan(&p.ID, &p.Location, &p.TotalAmount, &p.TotalPaid, &p.RemainingAmount, &p.Status, &payments); err != nil {
			return nil, fmt.Errorf("failed to scan installment plan: %w", err)
		}
		if err := json.Unmarshal(payments, &p.Payments); err != nil {
			return nil, fmt.Errorf("failed to decode payments of plan %s: %w", p.ID, err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

var _ domain.ConsistencySource = (*SQLScanReader)(nil)
