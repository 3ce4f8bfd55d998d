package ports

import (
	"context"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
)

type AddressLookup interface {
	Search(ctx context.Context, query string) ([]entity.AddressSuggestion, error)
	Details(ctx context.Context, id string) (*entity.AddressDetails, error)
}
