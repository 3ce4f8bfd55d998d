package entity

// DeliveryMethod selects how the order reaches the customer.
type DeliveryMethod string

const (
	HomeDelivery    DeliveryMethod = "HomeDelivery"
	ClickAndCollect DeliveryMethod = "ClickAndCollect"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case HomeDelivery, ClickAndCollect:
		return true
	default:
		return false
	}
}

// PaymentMethod selects the payment path of the sequencer.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCOD  PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCOD:
		return true
	default:
		return false
	}
}

type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"addressLine1"`
	Line2      string `json:"addressLine2,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CheckoutForm is the state of one checkout session. It is owned by the
// session and never persisted by the checkout layer.
type CheckoutForm struct {
	Billing               Address        `json:"billing"`
	Shipping              Address        `json:"shipping"`
	ShippingSameAsBilling bool           `json:"shippingSameAsBilling"`
	DeliveryMethod        DeliveryMethod `json:"deliveryMethod"`
	PaymentMethod         PaymentMethod  `json:"paymentMethod"`
	AcceptTerms           bool           `json:"acceptTerms"`
	SubscribeNewsletter   bool           `json:"subscribeNewsletter"`
	Notes                 string         `json:"notes,omitempty"`
}

// ShippingAddress returns the effective shipping address: the billing address
// when ShippingSameAsBilling is set, the shipping section otherwise.
func (f CheckoutForm) ShippingAddress() Address {
	if f.ShippingSameAsBilling {
		return f.Billing
	}
	return f.Shipping
}
