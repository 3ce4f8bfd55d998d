package entity

type AddressSuggestion struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type AddressDetails struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// ApplyTo copies the looked-up fields into addr, leaving contact fields alone.
func (d AddressDetails) ApplyTo(addr *Address) {
	addr.Line1 = d.Line1
	addr.City = d.City
	addr.Province = d.Province
	addr.PostalCode = d.PostalCode
	addr.Country = d.Country
}
