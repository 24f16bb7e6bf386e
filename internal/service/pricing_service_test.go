package service

import (
	"testing"

	"github.com/aquaponto/aquaponto/internal/models"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int {
	return &v
}

func tierRules() []models.DiscountRule {
	return []models.DiscountRule{
		{MinQuantity: 3, MaxQuantity: intPtr(5), Percent: decimal.NewFromInt(5), IsActive: true},
		{MinQuantity: 6, Percent: decimal.NewFromInt(10), IsActive: true},
	}
}

func TestQuoteAppliesTierDiscount(t *testing.T) {
	s := NewPricingService()
	// 3 x 15.00 = 45.00, 5% tier -> 2.25 off -> 42.75
	quote := s.Quote([]PriceItem{
		{UnitPrice: decimal.NewFromFloat(15.00), Quantity: 3},
	}, tierRules())

	if got := quote.Subtotal.StringFixed(2); got != "45.00" {
		t.Fatalf("subtotal want 45.00 got %s", got)
	}
	if got := quote.DiscountAmount.StringFixed(2); got != "2.25" {
		t.Fatalf("discount want 2.25 got %s", got)
	}
	if got := quote.Total.StringFixed(2); got != "42.75" {
		t.Fatalf("total want 42.75 got %s", got)
	}
}

func TestQuoteSumsQuantityAcrossLines(t *testing.T) {
	s := NewPricingService()
	// 2 + 4 = 6 units crosses into the 10% tier even though no single line does
	quote := s.Quote([]PriceItem{
		{UnitPrice: decimal.NewFromFloat(12.00), Quantity: 2},
		{UnitPrice: decimal.NewFromFloat(10.00), Quantity: 4},
	}, tierRules())

	if got := quote.DiscountPercent.String(); got != "10" {
		t.Fatalf("percent want 10 got %s", got)
	}
	if got := quote.Total.StringFixed(2); got != "57.60" {
		t.Fatalf("total want 57.60 got %s", got)
	}
}

func TestQuoteBelowEveryTier(t *testing.T) {
	s := NewPricingService()
	quote := s.Quote([]PriceItem{
		{UnitPrice: decimal.NewFromFloat(15.00), Quantity: 2},
	}, tierRules())

	if !quote.DiscountPercent.IsZero() {
		t.Fatalf("percent want 0 got %s", quote.DiscountPercent)
	}
	if got := quote.Total.StringFixed(2); got != "30.00" {
		t.Fatalf("total want 30.00 got %s", got)
	}
}

func TestSelectPercentOverlappingTiersPicksHighest(t *testing.T) {
	s := NewPricingService()
	rules := []models.DiscountRule{
		{MinQuantity: 3, Percent: decimal.NewFromInt(5), IsActive: true},
		{MinQuantity: 3, Percent: decimal.NewFromInt(8), IsActive: true},
		{MinQuantity: 3, Percent: decimal.NewFromInt(12), IsActive: false}, // inactive never wins
	}
	got := s.SelectPercent(rules, 4)
	if got.String() != "8" {
		t.Fatalf("percent want 8 got %s", got)
	}
}

func TestQuoteIgnoresNonPositiveQuantities(t *testing.T) {
	s := NewPricingService()
	quote := s.Quote([]PriceItem{
		{UnitPrice: decimal.NewFromFloat(15.00), Quantity: 0},
		{UnitPrice: decimal.NewFromFloat(15.00), Quantity: -2},
	}, tierRules())
	if got := quote.Total.StringFixed(2); got != "0.00" {
		t.Fatalf("total want 0.00 got %s", got)
	}
}

func TestValidateTier(t *testing.T) {
	s := NewPricingService()
	valid := &models.DiscountRule{MinQuantity: 3, MaxQuantity: intPtr(5), Percent: decimal.NewFromInt(5)}
	if err := s.ValidateTier(valid); err != nil {
		t.Fatalf("valid tier rejected: %v", err)
	}

	bad := []*models.DiscountRule{
		nil,
		{MinQuantity: 0, Percent: decimal.NewFromInt(5)},
		{MinQuantity: 5, MaxQuantity: intPtr(3), Percent: decimal.NewFromInt(5)},
		{MinQuantity: 3, Percent: decimal.Zero},
		{MinQuantity: 3, Percent: decimal.NewFromInt(101)},
	}
	for i, rule := range bad {
		if err := s.ValidateTier(rule); err != ErrInvalidDiscountTier {
			t.Fatalf("case %d: want ErrInvalidDiscountTier got %v", i, err)
		}
	}
}
