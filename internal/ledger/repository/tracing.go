package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

var tracer = otel.Tracer("ledger-repository")

// TracedStore wraps a domain.Store with spans
type TracedStore struct {
	domain.Store
}

// NewTracedStore creates a new store with tracing
func NewTracedStore(store domain.Store) *TracedStore {
	return &TracedStore{Store: store}
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InTx with tracing
func (s *TracedStore) InTx(ctx context.Context, fn func(tx domain.Tx) error) (err error) {
	ctx, span := tracer.Start(ctx, "repository.InTx")
	defer func() { finish(span, err) }()
	return s.Store.InTx(ctx, fn)
}

// AppendAudit with tracing
func (s *TracedStore) AppendAudit(ctx context.Context, entry *domain.AuditLogEntry) (err error) {
	ctx, span := tracer.Start(ctx, "repository.AppendAudit",
		trace.WithAttributes(
			attribute.String("audit.transaction_id", entry.TransactionID),
			attribute.String("audit.action", string(entry.Action)),
			attribute.String("audit.outcome", string(entry.Outcome)),
		),
	)
	defer func() { finish(span, err) }()
	return s.Store.AppendAudit(ctx, entry)
}

// FindStockItem with tracing
func (s *TracedStore) FindStockItem(ctx context.Context, itemCode, location string) (item *domain.StockItem, err error) {
	ctx, span := tracer.Start(ctx, "repository.FindStockItem",
		trace.WithAttributes(
			attribute.String("stock.item_code", itemCode),
			attribute.String("stock.location", location),
		),
	)
	defer func() { finish(span, err) }()
	item, err = s.Store.FindStockItem(ctx, itemCode, location)
	if err == nil {
		span.SetAttributes(attribute.Int("stock.quantity", item.Quantity))
	}
	return item, err
}

// ListStockItems with tracing
func (s *TracedStore) ListStockItems(ctx context.Context, filter domain.StockFilter) (items []domain.StockItem, err error) {
	ctx, span := tracer.Start(ctx, "repository.ListStockItems",
		trace.WithAttributes(attribute.String("stock.location", filter.Location)),
	)
	defer func() { finish(span, err) }()
	items, err = s.Store.ListStockItems(ctx, filter)
	span.SetAttributes(attribute.Int("result.count", len(items)))
	return items, err
}

// ListSales with tracing
func (s *TracedStore) ListSales(ctx context.Context, filter domain.SaleFilter) (sales []domain.SaleRecord, err error) {
	ctx, span := tracer.Start(ctx, "repository.ListSales",
		trace.WithAttributes(attribute.String("sale.location", filter.Location)),
	)
	defer func() { finish(span, err) }()
	sales, err = s.Store.ListSales(ctx, filter)
	span.SetAttributes(attribute.Int("result.count", len(sales)))
	return sales, err
}

// ListAudit with tracing
func (s *TracedStore) ListAudit(ctx context.Context, filter domain.AuditFilter) (entries []domain.AuditLogEntry, err error) {
	ctx, span := tracer.Start(ctx, "repository.ListAudit",
		trace.WithAttributes(attribute.String("audit.transaction_id", filter.TransactionID)),
	)
	defer func() { finish(span, err) }()
	return s.Store.ListAudit(ctx, filter)
}
