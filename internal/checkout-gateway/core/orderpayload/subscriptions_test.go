package orderpayload

import (
	"context"
	"errors"
	"testing"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriptions struct {
	requests []entity.SubscriptionRequest
	failOn   string
}

func (f *fakeSubscriptions) CreateSubscription(_ context.Context, req entity.SubscriptionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if req.ProductID == f.failOn {
		return "", errors.New("upstream unavailable")
	}
	return "sub-" + req.ProductID, nil
}

func subscriptionSnapshot() []entity.CartLine {
	return []entity.CartLine{
		{ProductID: "A", Quantity: 1, Price: price("10")},
		{
			ProductID: "S", Quantity: 2, Price: price("5"), Type: entity.LineTypeSubscription,
			Subscription: &entity.SubscriptionTerms{Frequency: "month", IntervalCount: 1},
		},
	}
}

func TestAttachSubscriptions(t *testing.T) {
	snapshot := subscriptionSnapshot()
	payload := NewBuilder("+44").Build(entity.CheckoutForm{
		Billing:               entity.Address{Email: "ada@example.com", Line1: "1 High St"},
		ShippingSameAsBilling: true,
	}, snapshot)
	api := &fakeSubscriptions{}

	require.NoError(t, AttachSubscriptions(context.Background(), api, &payload, snapshot))

	require.Len(t, api.requests, 1)
	assert.Equal(t, "month", api.requests[0].Terms.Frequency)
	assert.Equal(t, "1 High St", api.requests[0].ShippingAddress.Line1)
	assert.Equal(t, 2, api.requests[0].Quantity)
	assert.Empty(t, payload.Items[0].SubscriptionID)
	assert.Equal(t, "sub-S", payload.Items[1].SubscriptionID)
}

func TestAttachSubscriptions_Failure(t *testing.T) {
	snapshot := subscriptionSnapshot()
	payload := NewBuilder("+44").Build(entity.CheckoutForm{}, snapshot)
	api := &fakeSubscriptions{failOn: "S"}

	err := AttachSubscriptions(context.Background(), api, &payload, snapshot)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "product S")
	assert.Empty(t, payload.Items[1].SubscriptionID)
}
