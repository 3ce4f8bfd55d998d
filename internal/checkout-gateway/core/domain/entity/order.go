package entity

import "github.com/shopspring/decimal"

// OrderPayload is the request body of POST /Orders.
type OrderPayload struct {
	CustomerEmail     string             `json:"customerEmail"`
	CustomerFirstName string             `json:"customerFirstName"`
	CustomerLastName  string             `json:"customerLastName"`
	CustomerPhone     string             `json:"customerPhone"`
	BillingAddress    Address            `json:"billingAddress"`
	ShippingAddress   Address            `json:"shippingAddress"`
	DeliveryMethod    DeliveryMethod     `json:"deliveryMethod"`
	PaymentMethod     PaymentMethod      `json:"paymentMethod"`
	IsCashOnDelivery  bool               `json:"isCashOnDelivery"`
	Notes             string             `json:"notes,omitempty"`
	Items             []OrderItemPayload `json:"orderItems"`
}

type OrderItemPayload struct {
	ProductID        string          `json:"productId"`
	ProductVariantID string          `json:"productVariantId,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	SubscriptionID   string          `json:"subscriptionId,omitempty"`
}

// OrderSummary holds the authoritative totals returned by the order API.
// Client-side totals are display estimates; these are what gets charged.
type OrderSummary struct {
	SubtotalAmount       decimal.Decimal `json:"subtotalAmount"`
	ShippingAmount       decimal.Decimal `json:"shippingAmount"`
	DiscountAmount       decimal.Decimal `json:"discountAmount"`
	BundleDiscountAmount decimal.Decimal `json:"bundleDiscountAmount"`
	TaxAmount            decimal.Decimal `json:"taxAmount"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
}

// CreatedOrder is the response of POST /Orders.
type CreatedOrder struct {
	ID            string `json:"id"`
	CustomerEmail string `json:"customerEmail"`
	OrderSummary
}

type PaymentIntentRequest struct {
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customerEmail"`
	OrderID       string            `json:"orderId"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type SubscriptionRequest struct {
	ProductID        string            `json:"productId"`
	ProductVariantID string            `json:"productVariantId,omitempty"`
	Quantity         int               `json:"quantity"`
	Terms            SubscriptionTerms `json:"terms"`
	CustomerEmail    string            `json:"customerEmail"`
	ShippingAddress  Address           `json:"shippingAddress"`
}

type NewsletterSubscription struct {
	Email     string `json:"email"`
	Source    string `json:"source"`
	IPAddress string `json:"ipAddress"`
}
