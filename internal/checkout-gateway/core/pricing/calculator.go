package pricing

import (
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/shopspring/decimal"
)

// Totals is a display-only estimate. The order API recomputes the amounts
// that are actually charged.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	BundleDiscount decimal.Decimal `json:"bundleDiscount"`
	LineDiscount   decimal.Decimal `json:"lineDiscount"`
	NextDayCharge  decimal.Decimal `json:"nextDayCharge"`
	Total          decimal.Decimal `json:"total"`
	// Clamped is set when discounts exceeded the subtotal and Total was
	// floored at zero. The underlying discount data needs correcting.
	Clamped bool `json:"clamped,omitempty"`
}

func Calculate(snapshot []entity.CartLine) Totals {
	t := Totals{
		Subtotal:       Subtotal(snapshot),
		BundleDiscount: BundleDiscount(snapshot),
		LineDiscount:   LineDiscount(snapshot),
		NextDayCharge:  NextDayCharge(snapshot),
	}
	t.Total = t.Subtotal.Sub(t.BundleDiscount).Sub(t.LineDiscount).Add(t.NextDayCharge)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
		t.Clamped = true
	}
	return t
}

// Subtotal sums the undiscounted line amounts, preferring priceBeforeDiscount
// over price.
func Subtotal(snapshot []entity.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range snapshot {
		price := firstPrice(line.PriceBeforeDiscount, line.Price)
		sum = sum.Add(price.Mul(qty(line)))
	}
	return sum
}

// IsBundleComplete reports whether the main line for mainProductID has at
// least one child and every child covers the main line's quantity.
func IsBundleComplete(snapshot []entity.CartLine, mainProductID string) bool {
	main, ok := findMain(snapshot, mainProductID)
	if !ok {
		return false
	}
	children := 0
	for _, line := range snapshot {
		if line.ParentProductID != mainProductID {
			continue
		}
		children++
		if line.Quantity < main.Quantity {
			return false
		}
	}
	return children > 0
}

// BundleDiscount awards totalSavings per main unit for complete bundles only.
// Incomplete bundles contribute nothing.
func BundleDiscount(snapshot []entity.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range snapshot {
		if !line.IsBundleMain() || line.ProductData.TotalSavings == nil {
			continue
		}
		if !IsBundleComplete(snapshot, line.ProductID) {
			continue
		}
		sum = sum.Add(line.ProductData.TotalSavings.Mul(qty(line)))
	}
	return sum
}

func LineDiscount(snapshot []entity.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range snapshot {
		if line.DiscountAmount == nil {
			continue
		}
		sum = sum.Add(line.DiscountAmount.Mul(qty(line)))
	}
	return sum
}

// NextDayCharge is a single flat surcharge taken from the first line that
// requests next-day delivery.
func NextDayCharge(snapshot []entity.CartLine) decimal.Decimal {
	for _, line := range snapshot {
		if !line.NextDayDeliveryEnabled {
			continue
		}
		if line.NextDayDeliveryCharge == nil {
			return decimal.Zero
		}
		return *line.NextDayDeliveryCharge
	}
	return decimal.Zero
}

// UnitPrice is the per-unit amount sent to the order API:
// finalPrice, then price, then priceBeforeDiscount.
func UnitPrice(line entity.CartLine) decimal.Decimal {
	return firstPrice(line.FinalPrice, line.Price, line.PriceBeforeDiscount)
}

func findMain(snapshot []entity.CartLine, productID string) (entity.CartLine, bool) {
	for _, line := range snapshot {
		if line.ProductID == productID && !line.IsBundleChild() {
			return line, true
		}
	}
	return entity.CartLine{}, false
}

func firstPrice(prices ...*decimal.Decimal) decimal.Decimal {
	for _, p := range prices {
		if p != nil {
			return *p
		}
	}
	return decimal.Zero
}

func qty(line entity.CartLine) decimal.Decimal {
	return decimal.NewFromInt(int64(line.Quantity))
}
