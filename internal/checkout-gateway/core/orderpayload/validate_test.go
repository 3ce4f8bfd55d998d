package orderpayload

import (
	"testing"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactOnlyForm(method entity.DeliveryMethod) entity.CheckoutForm {
	return entity.CheckoutForm{
		Billing: entity.Address{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.co.uk",
			Phone:     "07700 900123",
		},
		ShippingSameAsBilling: true,
		DeliveryMethod:        method,
		PaymentMethod:         entity.PaymentCard,
		AcceptTerms:           true,
	}
}

func TestValidate_ClickAndCollectSkipsAddress(t *testing.T) {
	assert.NoError(t, Validate(contactOnlyForm(entity.ClickAndCollect)))
}

func TestValidate_HomeDeliveryRequiresAddress(t *testing.T) {
	err := Validate(contactOnlyForm(entity.HomeDelivery))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Contains(t, verr.Fields, "addressLine1")
	assert.Contains(t, verr.Fields, "postalCode")
}

func TestValidate_SeparateShippingSection(t *testing.T) {
	form := contactOnlyForm(entity.HomeDelivery)
	form.Billing.Line1 = "1 High St"
	form.Billing.PostalCode = "AB1 2CD"
	form.ShippingSameAsBilling = false

	err := Validate(form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shipping.addressLine1")
	assert.Contains(t, verr.Fields, "shipping.postalCode")

	form.Shipping = entity.Address{Line1: "9 Low Rd", PostalCode: "ZZ9 9ZZ"}
	assert.NoError(t, Validate(form))
}

func TestValidate_ContactFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*entity.CheckoutForm)
		field string
	}{
		{"missing email", func(f *entity.CheckoutForm) { f.Billing.Email = "" }, "email"},
		{"email without tld", func(f *entity.CheckoutForm) { f.Billing.Email = "ada@example" }, "email"},
		{"email with space", func(f *entity.CheckoutForm) { f.Billing.Email = "a da@example.com" }, "email"},
		{"missing first name", func(f *entity.CheckoutForm) { f.Billing.FirstName = "  " }, "firstName"},
		{"missing last name", func(f *entity.CheckoutForm) { f.Billing.LastName = "" }, "lastName"},
		{"phone without digits", func(f *entity.CheckoutForm) { f.Billing.Phone = "n/a" }, "phone"},
		{"unknown delivery method", func(f *entity.CheckoutForm) { f.DeliveryMethod = "Drone" }, "deliveryMethod"},
		{"unknown payment method", func(f *entity.CheckoutForm) { f.PaymentMethod = "crypto" }, "paymentMethod"},
		{"terms not accepted", func(f *entity.CheckoutForm) { f.AcceptTerms = false }, "acceptTerms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := contactOnlyForm(entity.ClickAndCollect)
			tt.edit(&form)

			var verr *ValidationError
			require.ErrorAs(t, Validate(form), &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"phone": "x", "email": "y"}}
	assert.Equal(t, "invalid checkout form: email, phone", err.Error())
}
