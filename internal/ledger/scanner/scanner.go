package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// FindingKind classifies an invariant violation
type FindingKind string

// Finding kinds
const (
	NegativeQuantity       FindingKind = "negative_quantity"
	ReconciliationMismatch FindingKind = "reconciliation_mismatch"
	OrphanedReference      FindingKind = "orphaned_reference"
	PlanBalanceMismatch    FindingKind = "installment_balance_mismatch"
)

// Finding is one violation for operator attention
type Finding struct {
	Kind       FindingKind `json:"kind"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	ItemCode   string      `json:"item_code,omitempty"`
	Location   string      `json:"location,omitempty"`
	Detail     string      `json:"detail"`
}

// Report is the result of one sweep
type Report struct {
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	StockItemsScanned int       `json:"stock_items_scanned"`
	PlansScanned      int       `json:"plans_scanned"`
	Findings          []Finding `json:"findings"`
}

// Err summarizes the findings as an integrity error, or nil when there are none
func (r *Report) Err() error {
	if len(r.Findings) == 0 {
		return nil
	}
	return domain.Integrity("%d consistency findings", len(r.Findings))
}

// Scanner sweeps the ledger for invariant violations. It reads outside any
// transaction and never repairs what it finds.
type Scanner struct {
	source   domain.ConsistencySource
	findings *prometheus.GaugeVec
	runs     prometheus.Counter
	now      func() time.Time
}

// New creates a scanner; reg may be nil
func New(source domain.ConsistencySource, reg prometheus.Registerer) *Scanner {
	s := &Scanner{
		source: source,
		findings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_consistency_findings",
				Help: "Findings of the last consistency scan by kind",
			},
			[]string{"kind"},
		),
		runs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_consistency_scans_total",
				Help: "Total number of consistency scans",
			},
		),
		now: time.Now,
	}
	if reg != nil {
		reg.MustRegister(s.findings)
		reg.MustRegister(s.runs)
	}
	return s
}

// Scan runs one sweep
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: s.now(), Findings: []Finding{}}

	items, err := s.source.ListStockItems(ctx, domain.StockFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	report.StockItemsScanned = len(items)

	deltas, err := s.source.AuditDeltaTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum audit deltas: %w", err)
	}

	for _, it := range items {
		if it.Quantity < 0 {
			report.Findings = append(report.Findings, Finding{
				Kind:       NegativeQuantity,
				EntityType: "stock_item",
				EntityID:   it.ID,
				ItemCode:   it.ItemCode,
				Location:   it.Location,
				Detail:     fmt.Sprintf("quantity is %d", it.Quantity),
			})
		}
		observed := it.Quantity - it.InitialQuantity
		if logged := deltas[it.ID]; logged != observed {
			report.Findings = append(report.Findings, Finding{
				Kind:       ReconciliationMismatch,
				EntityType: "stock_item",
				EntityID:   it.ID,
				ItemCode:   it.ItemCode,
				Location:   it.Location,
				Detail:     fmt.Sprintf("audit deltas sum to %d but quantity moved by %d", logged, observed),
			})
		}
	}

	orphans, err := s.source.OrphanReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphan references: %w", err)
	}
	for _, o := range orphans {
		report.Findings = append(report.Findings, Finding{
			Kind:       OrphanedReference,
			EntityType: o.EntityType,
			EntityID:   o.EntityID,
			Detail:     fmt.Sprintf("%s %s does not exist", o.Field, o.MissingID),
		})
	}

	plans, err := s.source.ListInstallmentPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list installment plans: %w", err)
	}
	report.PlansScanned = len(plans)
	for _, p := range plans {
		expected := p.TotalAmount.Sub(p.SumPayments())
		if expected.IsNegative() {
			expected = decimal.Zero
		}
		if !expected.Equal(p.RemainingAmount) {
			report.Findings = append(report.Findings, Finding{
				Kind:       PlanBalanceMismatch,
				EntityType: "installment_plan",
				EntityID:   p.ID,
				Location:   p.Location,
				Detail: fmt.Sprintf("remaining %s but total minus payments is %s",
					p.RemainingAmount.StringFixed(2), expected.StringFixed(2)),
			})
		}
	}

	report.FinishedAt = s.now()
	s.record(report)
	return report, nil
}

func (s *Scanner) record(report *Report) {
	s.runs.Inc()
	counts := map[FindingKind]int{
		NegativeQuantity:       0,
		ReconciliationMismatch: 0,
		OrphanedReference:      0,
		PlanBalanceMismatch:    0,
	}
	for _, f := range report.Findings {
		counts[f.Kind]++
	}
	for kind, n := range counts {
		s.findings.WithLabelValues(string(kind)).Set(float64(n))
	}
}
