package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
)

func TestCreateStockItem(t *testing.T) {
	f := newFixture(t)
	h := command.NewCreateStockItemHandler(f.exec)
	ctx := context.Background()
	cmd := command.CreateStockItemCommand{
		Actor:       manager,
		ItemCode:    " A54 ",
		Brand:       "Samsung",
		Model:       "Galaxy A54",
		Quantity:    10,
		CostPrice:   dec("700"),
		RetailPrice: dec("1000"),
	}

	item, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "A54", item.ItemCode)
	assert.Equal(t, "nairobi", item.Location)
	assert.Equal(t, 10, item.InitialQuantity)
	assert.Equal(t, 10, f.quantity(t, "A54", "nairobi"))

	entries := f.audit(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionStockCreated, entries[0].Action)
	assert.Equal(t, 0, entries[0].QuantityDelta)
	require.NotNil(t, entries[0].QuantityAfter)
	assert.Equal(t, 10, *entries[0].QuantityAfter)

	_, err = h.Handle(ctx, cmd)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCreateStockItem_Validation(t *testing.T) {
	base := command.CreateStockItemCommand{
		Actor:       manager,
		ItemCode:    "A54",
		Location:    "nairobi",
		Brand:       "Samsung",
		Model:       "Galaxy A54",
		CostPrice:   dec("700"),
		RetailPrice: dec("1000"),
	}

	tests := []struct {
		name   string
		mutate func(*command.CreateStockItemCommand)
	}{
		{"missing item code", func(c *command.CreateStockItemCommand) { c.ItemCode = "" }},
		{"missing model", func(c *command.CreateStockItemCommand) { c.Model = "" }},
		{"negative quantity", func(c *command.CreateStockItemCommand) { c.Quantity = -1 }},
		{"negative price", func(c *command.CreateStockItemCommand) { c.RetailPrice = dec("-1") }},
		{"discount over 100", func(c *command.CreateStockItemCommand) { c.DiscountPercentage = dec("101") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cmd := base
			tt.mutate(&cmd)
			_, err := command.NewCreateStockItemHandler(f.exec).Handle(context.Background(), cmd)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestRestockItem(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 2)
	h := command.NewRestockItemHandler(f.exec)
	ctx := context.Background()

	item, err := h.Handle(ctx, command.RestockItemCommand{Actor: manager, ItemCode: "A54", Location: "nairobi", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)
	assert.Equal(t, 7, f.quantity(t, "A54", "nairobi"))

	_, err = h.Handle(ctx, command.RestockItemCommand{Actor: manager, ItemCode: "A54", Location: "nairobi", Quantity: 0})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = h.Handle(ctx, command.RestockItemCommand{Actor: manager, ItemCode: "A54", Location: "mombasa", Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrStockItemNotFound))
}

func TestUpdatePricing(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 4)
	h := command.NewUpdatePricingHandler(f.exec)
	ctx := context.Background()

	item, err := h.Handle(ctx, command.UpdatePricingCommand{
		Actor:              manager,
		ItemCode:           "A54",
		Location:           "nairobi",
		RetailPrice:        decPtr("1099.999"),
		DiscountPercentage: decPtr("5"),
	})
	require.NoError(t, err)
	assert.True(t, dec("1100").Equal(item.RetailPrice))
	assert.True(t, dec("700").Equal(item.CostPrice))
	assert.Equal(t, 4, item.Quantity)

	_, err = h.Handle(ctx, command.UpdatePricingCommand{Actor: manager, ItemCode: "A54", Location: "nairobi"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = h.Handle(ctx, command.UpdatePricingCommand{Actor: manager, ItemCode: "A54", Location: "nairobi", DiscountPercentage: decPtr("120")})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRequestTransfer(t *testing.T) {
	f := newFixture(t)
	f.seed("A54", "nairobi", 3)
	h := command.NewRequestTransferHandler(f.exec, f.store)
	ctx := context.Background()

	tr, err := h.Handle(ctx, command.RequestTransferCommand{Actor: manager, ItemCode: "A54", ToLocation: "mombasa", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.TransferPending, tr.Status)
	assert.Equal(t, "nairobi", tr.FromLocation)
	assert.Equal(t, 3, f.quantity(t, "A54", "nairobi"), "requests do not move stock")

	transfers, err := f.store.ListTransfers(ctx, "mombasa")
	require.NoError(t, err)
	assert.Len(t, transfers, 1)

	_, err = h.Handle(ctx, command.RequestTransferCommand{Actor: manager, ItemCode: "A54", ToLocation: "nairobi", Quantity: 1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = h.Handle(ctx, command.RequestTransferCommand{Actor: manager, ItemCode: "A54", ToLocation: "mombasa", Quantity: 4})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}
