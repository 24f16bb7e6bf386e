package service

import (
	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/shopspring/decimal"
)

// PricingService computes cart totals with quantity tier discounts
type PricingService struct{}

// NewPricingService creates the pricing service
func NewPricingService() *PricingService {
	return &PricingService{}
}

// PriceItem one cart line for quoting
type PriceItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// PriceQuote quoted cart totals
type PriceQuote struct {
	Subtotal        models.Money    `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  models.Money    `json:"discount_amount"`
	Total           models.Money    `json:"total"`
}

// Quote prices the cart: the tier is selected by the summed quantity of all
// lines; overlapping tiers resolve to the highest percent. Amounts round to
// 2 decimals and the total never goes below zero.
func (s *PricingService) Quote(items []PriceItem, rules []models.DiscountRule) PriceQuote {
	subtotal := decimal.Zero
	totalQuantity := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		totalQuantity += item.Quantity
	}
	subtotal = subtotal.Round(2)

	percent := s.SelectPercent(rules, totalQuantity)
	discount := subtotal.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	total := subtotal.Sub(discount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return PriceQuote{
		Subtotal:        models.NewMoneyFromDecimal(subtotal),
		DiscountPercent: percent,
		DiscountAmount:  models.NewMoneyFromDecimal(discount),
		Total:           models.NewMoneyFromDecimal(total),
	}
}

// SelectPercent picks the applicable tier percent for a cart quantity.
// Overlapping tiers resolve deterministically to the highest percent.
func (s *PricingService) SelectPercent(rules []models.DiscountRule, quantity int) decimal.Decimal {
	best := decimal.Zero
	for i := range rules {
		rule := rules[i]
		if !rule.IsActive {
			continue
		}
		if !rule.Matches(quantity) {
			continue
		}
		if rule.Percent.GreaterThan(best) {
			best = rule.Percent
		}
	}
	return best
}

// ValidateTier checks a tier submitted by the dashboard
func (s *PricingService) ValidateTier(rule *models.DiscountRule) error {
	if rule == nil {
		return ErrInvalidDiscountTier
	}
	if rule.MinQuantity < 1 {
		return ErrInvalidDiscountTier
	}
	if rule.MaxQuantity != nil && *rule.MaxQuantity < rule.MinQuantity {
		return ErrInvalidDiscountTier
	}
	if !rule.Percent.IsPositive() || rule.Percent.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscountTier
	}
	return nil
}
