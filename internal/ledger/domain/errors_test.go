package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesSentinels(t *testing.T) {
	err := fmt.Errorf("sell: %w", InsufficientStock(3, 1))

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrStockItemNotFound))
	assert.Contains(t, err.Error(), "requested 3, available 1")

	assert.True(t, errors.Is(StockItemNotFound("A1", "nairobi"), ErrStockItemNotFound))
	assert.True(t, errors.Is(Conflict(errors.New("version mismatch")), ErrConflict))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindValidation, KindOf(Validation("bad %s", "input")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFound("missing"))))
	assert.Equal(t, KindIntegrity, KindOf(Integrity("broken")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Conflict(errors.New("x"))))
	assert.True(t, IsRetryable(Unavailable(errors.New("x"))))
	assert.False(t, IsRetryable(Validation("x")))
	assert.False(t, IsRetryable(errors.New("x")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "insufficient stock", MessageOf(InsufficientStock(2, 0)))
	assert.Equal(t, RetryMessage, MessageOf(fmt.Errorf("failed after 3 attempts: %w", Conflict(errors.New("x")))))
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: connection refused")))
}

func TestActor_Validate(t *testing.T) {
	assert.NoError(t, Actor{UID: "u1", Role: RoleClerk}.Validate())
	assert.Error(t, Actor{Role: RoleClerk}.Validate())
	assert.Error(t, Actor{UID: "u1"}.Validate())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Manager ")
	assert.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	r, err = ParseRole("user")
	assert.NoError(t, err)
	assert.Equal(t, RoleClerk, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)
}

func TestStockItem_Pricing(t *testing.T) {
	item := &StockItem{
		RetailPrice:        decimal.RequireFromString("1000"),
		CostPrice:          decimal.RequireFromString("700"),
		DiscountPercentage: decimal.RequireFromString("10"),
	}

	assert.True(t, decimal.RequireFromString("2000").Equal(item.StandardPrice(2)))
	assert.True(t, decimal.RequireFromString("1800").Equal(item.DiscountedPrice(2)))
	assert.True(t, decimal.RequireFromString("1400").Equal(item.Cost(2)))

	assert.True(t, ValidDiscount(decimal.Zero))
	assert.True(t, ValidDiscount(decimal.NewFromInt(100)))
	assert.False(t, ValidDiscount(decimal.NewFromInt(-1)))
	assert.False(t, ValidDiscount(decimal.RequireFromString("100.01")))
}
