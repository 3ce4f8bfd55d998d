package orderpayload

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError maps form field names to a message for each failed field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Validate checks the form before any payload is built or any remote call is
// made. Address fields are only required for home delivery; click and collect
// orders carry no shipping address.
func Validate(form entity.CheckoutForm) error {
	verr := &ValidationError{}
	b := form.Billing

	switch email := strings.TrimSpace(b.Email); {
	case email == "":
		verr.add("email", "Email is required")
	case !emailPattern.MatchString(email):
		verr.add("email", "Enter a valid email address")
	}
	if strings.TrimSpace(b.FirstName) == "" {
		verr.add("firstName", "First name is required")
	}
	if strings.TrimSpace(b.LastName) == "" {
		verr.add("lastName", "Last name is required")
	}
	if digits(b.Phone) == "" {
		verr.add("phone", "Phone number is required")
	}

	switch form.DeliveryMethod {
	case entity.HomeDelivery:
		if strings.TrimSpace(b.Line1) == "" {
			verr.add("addressLine1", "Address line 1 is required")
		}
		if strings.TrimSpace(b.PostalCode) == "" {
			verr.add("postalCode", "Postal code is required")
		}
		if !form.ShippingSameAsBilling {
			s := form.Shipping
			if strings.TrimSpace(s.Line1) == "" {
				verr.add("shipping.addressLine1", "Address line 1 is required")
			}
			if strings.TrimSpace(s.PostalCode) == "" {
				verr.add("shipping.postalCode", "Postal code is required")
			}
		}
	case entity.ClickAndCollect:
	default:
		verr.add("deliveryMethod", "Choose a delivery method")
	}

	if !form.PaymentMethod.Valid() {
		verr.add("paymentMethod", "Choose a payment method")
	}
	if !form.AcceptTerms {
		verr.add("acceptTerms", "You must accept the terms and conditions")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
