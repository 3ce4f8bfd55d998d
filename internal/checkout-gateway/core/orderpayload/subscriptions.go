package orderpayload

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
)

// AttachSubscriptions creates a subscription for every subscription line and
// stores the returned id on the matching payload item. It stops at the first
// failure; the order must not be created in that case.
func AttachSubscriptions(
	ctx context.Context,
	api ports.SubscriptionAPI,
	payload *entity.OrderPayload,
	snapshot []entity.CartLine,
) error {
	for i, line := range snapshot {
		if !line.IsSubscription() {
			continue
		}
		req := entity.SubscriptionRequest{
			ProductID:        line.ProductID,
			ProductVariantID: line.VariantID,
			Quantity:         line.Quantity,
			CustomerEmail:    payload.CustomerEmail,
			ShippingAddress:  payload.ShippingAddress,
		}
		if line.Subscription != nil {
			req.Terms = *line.Subscription
		}

		id, err := api.CreateSubscription(ctx, req)
		if err != nil {
			return fmt.Errorf("create subscription for product %s: %w", line.ProductID, err)
		}
		if id == "" {
			return fmt.Errorf("create subscription for product %s: empty subscription id", line.ProductID)
		}
		payload.Items[i].SubscriptionID = id
	}
	return nil
}
