package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/repository"
	"github.com/tair/retail-ledger/internal/ledger/validation"
)

func phone(qty int) domain.StockItem {
	return domain.StockItem{
		ID:          "s1",
		ItemCode:    "IP13",
		Location:    "nairobi",
		Brand:       "Apple",
		Model:       "iPhone 13",
		Quantity:    qty,
		CostPrice:   decimal.NewFromInt(700),
		RetailPrice: decimal.NewFromInt(1000),
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		item  domain.StockItem
		qty   int
		valid bool
		kind  domain.ErrorKind
	}{
		{"enough stock", phone(3), 3, true, ""},
		{"insufficient stock", phone(1), 2, false, domain.KindValidation},
		{"zero quantity", phone(3), 0, false, domain.KindValidation},
		{"negative request", phone(3), -1, false, domain.KindValidation},
		{"missing brand", func() domain.StockItem { s := phone(3); s.Brand = ""; return s }(), 1, false, domain.KindIntegrity},
		{"negative stock", phone(-1), 1, false, domain.KindIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			res := validation.Check(&item, validation.StockRequest{ItemCode: "IP13", Location: "nairobi", Quantity: tt.qty})

			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, item.Quantity, res.AvailableQuantity)
			if tt.valid {
				assert.NoError(t, res.Err())
				return
			}
			assert.NotEmpty(t, res.Reason)
			assert.Equal(t, tt.kind, domain.KindOf(res.Err()))
		})
	}
}

func TestCheck_InsufficientStockMatchesSentinel(t *testing.T) {
	item := phone(1)
	res := validation.Check(&item, validation.StockRequest{Quantity: 2})

	assert.True(t, errors.Is(res.Err(), domain.ErrInsufficientStock))
	assert.Equal(t, 1, res.AvailableQuantity)
}

func TestAdvisory(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Seed(phone(2))
	ctx := context.Background()

	res, err := validation.Advisory(ctx, store, validation.StockRequest{ItemCode: "IP13", Location: "nairobi", Quantity: 2})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = validation.Advisory(ctx, store, validation.StockRequest{ItemCode: "IP13", Location: "mombasa", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, errors.Is(res.Err(), domain.ErrStockItemNotFound))

	res, err = validation.Advisory(ctx, store, validation.StockRequest{Location: "nairobi", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, domain.KindValidation, domain.KindOf(res.Err()))
}

func TestAuthoritative_SeesCommittedChanges(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Seed(phone(1))
	ctx := context.Background()
	req := validation.StockRequest{ItemCode: "IP13", Location: "nairobi", Quantity: 1}

	// advisory passes against the snapshot
	res, err := validation.Advisory(ctx, store, req)
	require.NoError(t, err)
	require.True(t, res.Valid)

	// another writer takes the last unit
	require.NoError(t, store.InTx(ctx, func(tx domain.Tx) error {
		item, err := tx.GetStockItem(ctx, "IP13", "nairobi")
		if err != nil {
			return err
		}
		item.Quantity = 0
		return tx.UpdateStockItem(ctx, item)
	}))

	err = store.InTx(ctx, func(tx domain.Tx) error {
		_, err := validation.Authoritative(ctx, tx, req)
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}
