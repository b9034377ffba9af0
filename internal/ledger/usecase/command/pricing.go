package command

import (
	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
)

// SalePolicy holds the per-role pricing rules
type SalePolicy struct {
	// FloorPercent is the lowest custom price allowed, as a percentage of the standard retail price
	FloorPercent     decimal.Decimal
	CustomPriceRoles []domain.Role
}

// DefaultSalePolicy allows managers and operations to price down to half of retail
func DefaultSalePolicy() SalePolicy {
	return SalePolicy{
		FloorPercent:     decimal.NewFromInt(50),
		CustomPriceRoles: []domain.Role{domain.RoleManager, domain.RoleOperations},
	}
}

// AllowsCustomPrice reports whether role may override the price
func (p SalePolicy) AllowsCustomPrice(role domain.Role) bool {
	for _, r := range p.CustomPriceRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Quote is the priced outcome of a sale request
type Quote struct {
	FinalPrice decimal.Decimal
	Profit     decimal.Decimal
	Custom     bool
}

// Quote prices qty units of item
func (p SalePolicy) Quote(item *domain.StockItem, qty int, custom *decimal.Decimal, role domain.Role) (Quote, error) {
	cost := item.Cost(qty)

	if custom != nil {
		if !p.AllowsCustomPrice(role) {
			return Quote{}, domain.Validation("role %s may not set a custom price", role)
		}
		price := custom.Round(2)
		if price.IsNegative() {
			return Quote{}, domain.Validation("custom price cannot be negative")
		}
		floor := item.StandardPrice(qty).Mul(p.FloorPercent).Div(decimal.NewFromInt(100)).Round(2)
		if price.LessThan(floor) {
			return Quote{}, domain.Validation("custom price %s is below the minimum of %s (%s%% of retail)",
				price.StringFixed(2), floor.StringFixed(2), p.FloorPercent.String())
		}
		return Quote{FinalPrice: price, Profit: price.Sub(cost), Custom: true}, nil
	}

	price := item.DiscountedPrice(qty)
	profit := price.Sub(cost)
	if profit.IsNegative() {
		return Quote{}, domain.Validation("sale price %s is below cost %s", price.StringFixed(2), cost.StringFixed(2))
	}
	return Quote{FinalPrice: price, Profit: profit}, nil
}
