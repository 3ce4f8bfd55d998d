package app

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
)

type subscriptionStore struct {
	mu   sync.Mutex
	subs map[string]entity.SubscriptionRequest
}

func newSubscriptionStore() *subscriptionStore {
	return &subscriptionStore{subs: make(map[string]entity.SubscriptionRequest)}
}

func (s *subscriptionStore) create(req entity.SubscriptionRequest) string {
	id := "sub_" + uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[id] = req
	return id
}

type newsletterList struct {
	mu      sync.Mutex
	members map[string]entity.NewsletterSubscription
}

func newNewsletterList() *newsletterList {
	return &newsletterList{members: make(map[string]entity.NewsletterSubscription)}
}

func (l *newsletterList) add(sub entity.NewsletterSubscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.members[strings.ToLower(sub.Email)] = sub
}

func (l *newsletterList) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members)
}

type addressRecord struct {
	ID      string
	Details entity.AddressDetails
}

func (r addressRecord) text() string {
	d := r.Details
	return strings.Join([]string{d.Line1, d.City, d.PostalCode}, ", ")
}

// addressBook is a fixed set of GB addresses served by the lookup endpoints.
var addressBook = []addressRecord{
	{ID: "GB-001", Details: entity.AddressDetails{Line1: "10 Downing Street", City: "London", Province: "Greater London", PostalCode: "SW1A 2AA", Country: "GB"}},
	{ID: "GB-002", Details: entity.AddressDetails{Line1: "221B Baker Street", City: "London", Province: "Greater London", PostalCode: "NW1 6XE", Country: "GB"}},
	{ID: "GB-003", Details: entity.AddressDetails{Line1: "1 Deansgate", City: "Manchester", Province: "Greater Manchester", PostalCode: "M3 1AZ", Country: "GB"}},
	{ID: "GB-004", Details: entity.AddressDetails{Line1: "50 Princes Street", City: "Edinburgh", Province: "City of Edinburgh", PostalCode: "EH2 2BY", Country: "GB"}},
	{ID: "GB-005", Details: entity.AddressDetails{Line1: "12 Broad Street", City: "Bristol", Province: "Bristol", PostalCode: "BS1 2HL", Country: "GB"}},
	{ID: "GB-006", Details: entity.AddressDetails{Line1: "3 London Road", City: "Leeds", Province: "West Yorkshire", PostalCode: "LS1 4AP", Country: "GB"}},
}

func searchAddresses(query, country string) []entity.AddressSuggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []entity.AddressSuggestion{}
	for _, r := range addressBook {
		if country != "" && !strings.EqualFold(r.Details.Country, country) {
			continue
		}
		if strings.Contains(strings.ToLower(r.text()), q) {
			out = append(out, entity.AddressSuggestion{ID: r.ID, Type: "Address", Text: r.text()})
		}
	}
	return out
}

func findAddress(id string) (entity.AddressDetails, bool) {
	for _, r := range addressBook {
		if r.ID == id {
			return r.Details, true
		}
	}
	return entity.AddressDetails{}, false
}
