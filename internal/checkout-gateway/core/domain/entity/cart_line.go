package entity

import "github.com/shopspring/decimal"

func init() {
	// The storefront API reads and writes money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const LineTypeSubscription = "subscription"

// CartLine is one purchasable unit in the active checkout set.
//
// A line with ParentProductID set is a bundle child; it always refers to the
// ProductID of a main line in the same snapshot.
type CartLine struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity"`

	Price               *decimal.Decimal `json:"price,omitempty"`
	PriceBeforeDiscount *decimal.Decimal `json:"priceBeforeDiscount,omitempty"`
	FinalPrice          *decimal.Decimal `json:"finalPrice,omitempty"`
	// DiscountAmount is per unit.
	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`

	ParentProductID string       `json:"parentProductId,omitempty"`
	ProductData     *ProductData `json:"productData,omitempty"`

	NextDayDeliveryEnabled bool             `json:"nextDayDeliveryEnabled,omitempty"`
	NextDayDeliveryCharge  *decimal.Decimal `json:"nextDayDeliveryCharge,omitempty"`

	Type         string             `json:"type,omitempty"`
	Subscription *SubscriptionTerms `json:"subscription,omitempty"`
}

type ProductData struct {
	Name                 string `json:"name,omitempty"`
	RequireOtherProducts bool   `json:"requireOtherProducts,omitempty"`
	// TotalSavings is the saving for one unit of a complete bundle.
	TotalSavings *decimal.Decimal `json:"totalSavings,omitempty"`
}

// SubscriptionTerms describes the delivery cadence of a subscription line.
type SubscriptionTerms struct {
	Frequency     string `json:"frequency"`
	IntervalCount int    `json:"intervalCount"`
}

// IsBundleChild reports whether the line belongs to a main bundle line.
func (l CartLine) IsBundleChild() bool {
	return l.ParentProductID != ""
}

// IsBundleMain reports whether the line requires child products to unlock a
// bundle saving.
func (l CartLine) IsBundleMain() bool {
	return !l.IsBundleChild() && l.ProductData != nil && l.ProductData.RequireOtherProducts
}

func (l CartLine) IsSubscription() bool {
	return l.Type == LineTypeSubscription
}
