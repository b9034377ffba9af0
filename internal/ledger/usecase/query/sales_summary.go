package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/pkg/logger"
)

// ErrCacheMiss is returned by a SummaryCache that holds no value for a key
var ErrCacheMiss = errors.New("cache miss")

// SummaryCache stores rendered projections for a short time
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ProductSales aggregates one item's sales
type ProductSales struct {
	ItemCode string          `json:"item_code"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Units    int             `json:"units"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesSummary is the daily sales projection of a location
type SalesSummary struct {
	Location     string          `json:"location,omitempty"`
	Date         string          `json:"date"`
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"`
	Units        int             `json:"units"`
	Transactions int             `json:"transactions"`
	TopProducts  []ProductSales  `json:"top_products"`
}

// SalesSummaryQuery selects the day and location
type SalesSummaryQuery struct {
	Location string
	Date     time.Time
	Top      int
}

// SalesSummaryHandler recomputes the projection from committed sales. It holds no state of its own.
type SalesSummaryHandler struct {
	reader domain.LedgerReader
	cache  SummaryCache
	ttl    time.Duration
	now    func() time.Time
}

// NewSalesSummaryHandler creates a new sales summary handler. cache may be nil.
func NewSalesSummaryHandler(reader domain.LedgerReader, cache SummaryCache, ttl time.Duration) *SalesSummaryHandler {
	return &SalesSummaryHandler{reader: reader, cache: cache, ttl: ttl, now: time.Now}
}

// Handle executes the sales summary query
func (h *SalesSummaryHandler) Handle(ctx context.Context, q SalesSummaryQuery) (*SalesSummary, error) {
	if q.Date.IsZero() {
		q.Date = h.now()
	}
	if q.Top <= 0 {
		q.Top = 5
	}
	day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, q.Date.Location())
	key := fmt.Sprintf("sales-summary:%s:%s:%d", q.Location, day.Format("2006-01-02"), q.Top)

	if h.cache != nil {
		if raw, err := h.cache.Get(ctx, key); err == nil {
			var cached SalesSummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, ErrCacheMiss) {
			logger.Warn(ctx).Err(err).Str("key", key).Msg("Sales summary cache read failed")
		}
	}

	sales, err := h.reader.ListSales(ctx, domain.SaleFilter{
		Location: q.Location,
		From:     day,
		To:       day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	summary := Summarize(sales, q.Top)
	summary.Location = q.Location
	summary.Date = day.Format("2006-01-02")

	if h.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := h.cache.Set(ctx, key, raw, h.ttl); err != nil {
				logger.Warn(ctx).Err(err).Str("key", key).Msg("Sales summary cache write failed")
			}
		}
	}
	return summary, nil
}

// Summarize folds sales into totals and the top products by units sold
func Summarize(sales []domain.SaleRecord, top int) *SalesSummary {
	s := &SalesSummary{Revenue: decimal.Zero, Profit: decimal.Zero, TopProducts: []ProductSales{}}
	byItem := make(map[string]*ProductSales)
	for _, sale := range sales {
		s.Revenue = s.Revenue.Add(sale.FinalSalePrice)
		s.Profit = s.Profit.Add(sale.Profit)
		s.Units += sale.Quantity
		s.Transactions++

		p, ok := byItem[sale.ItemCode]
		if !ok {
			p = &ProductSales{ItemCode: sale.ItemCode, Brand: sale.Brand, Model: sale.Model, Revenue: decimal.Zero}
			byItem[sale.ItemCode] = p
		}
		p.Units += sale.Quantity
		p.Revenue = p.Revenue.Add(sale.FinalSalePrice)
	}

	for _, p := range byItem {
		s.TopProducts = append(s.TopProducts, *p)
	}
	sort.Slice(s.TopProducts, func(i, j int) bool {
		a, b := s.TopProducts[i], s.TopProducts[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.ItemCode < b.ItemCode
	})
	if len(s.TopProducts) > top {
		s.TopProducts = s.TopProducts[:top]
	}
	return s
}
