package orderpayload

import (
	"strings"
	"unicode"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/pricing"
)

const DefaultPhonePrefix = "+44"

// Builder assembles the order request body. Callers validate the form first.
type Builder struct {
	PhonePrefix string
}

func NewBuilder(phonePrefix string) *Builder {
	if phonePrefix == "" {
		phonePrefix = DefaultPhonePrefix
	}
	return &Builder{PhonePrefix: phonePrefix}
}

// Build maps the form and snapshot to an order payload. Items are index
// aligned with snapshot.
func (b *Builder) Build(form entity.CheckoutForm, snapshot []entity.CartLine) entity.OrderPayload {
	billing := form.Billing
	billing.Phone = NormalizePhone(b.PhonePrefix, billing.Phone)

	shipping := form.ShippingAddress()
	if form.ShippingSameAsBilling {
		shipping = billing
	} else if shipping.Phone != "" {
		shipping.Phone = NormalizePhone(b.PhonePrefix, shipping.Phone)
	}

	payload := entity.OrderPayload{
		CustomerEmail:     strings.TrimSpace(billing.Email),
		CustomerFirstName: strings.TrimSpace(billing.FirstName),
		CustomerLastName:  strings.TrimSpace(billing.LastName),
		CustomerPhone:     billing.Phone,
		BillingAddress:    billing,
		ShippingAddress:   shipping,
		DeliveryMethod:    form.DeliveryMethod,
		PaymentMethod:     form.PaymentMethod,
		IsCashOnDelivery:  form.PaymentMethod == entity.PaymentCOD,
		Notes:             form.Notes,
		Items:             make([]entity.OrderItemPayload, 0, len(snapshot)),
	}
	for _, line := range snapshot {
		payload.Items = append(payload.Items, entity.OrderItemPayload{
			ProductID:        line.ProductID,
			ProductVariantID: line.VariantID,
			Quantity:         line.Quantity,
			UnitPrice:        pricing.UnitPrice(line),
		})
	}
	return payload
}

// NormalizePhone joins prefix with the digits of raw. Leading trunk zeros are
// kept.
func NormalizePhone(prefix, raw string) string {
	d := digits(raw)
	if d == "" {
		return ""
	}
	return prefix + d
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
