package ports

import (
	"context"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
)

// CartStore is the shared cart of one session. Checkout reads it once when a
// submission starts and writes it only when the submission is finalized.
type CartStore interface {
	Read(ctx context.Context, sessionID string) ([]entity.CartLine, error)
	Clear(ctx context.Context, sessionID string) error
	Restore(ctx context.Context, sessionID string, lines []entity.CartLine) error
	// MarkPreserved flags the cart as restored after a buy-now purchase so
	// the cart view can show its previous contents again.
	MarkPreserved(ctx context.Context, sessionID string) error
}

// BuyNowStore persists the staged buy-now line of a session between requests.
type BuyNowStore interface {
	Stage(ctx context.Context, sessionID string, line entity.CartLine) error
	Staged(ctx context.Context, sessionID string) (*entity.CartLine, error)
	Unstage(ctx context.Context, sessionID string) error
}
