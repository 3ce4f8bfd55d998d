package pricing

import "github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"

// ResolveCheckoutItems returns the active purchase set. A staged buy-now line
// replaces the cart entirely; the cart slice is neither read nor modified in
// that case.
func ResolveCheckoutItems(cart []entity.CartLine, buyNow *entity.CartLine) []entity.CartLine {
	if buyNow != nil {
		return []entity.CartLine{*buyNow}
	}
	snapshot := make([]entity.CartLine, len(cart))
	copy(snapshot, cart)
	return snapshot
}
