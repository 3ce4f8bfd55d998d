package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
)

var _ ports.Storefront = (*StorefrontClient)(nil)

// StorefrontClient talks to the storefront REST API for orders, payments,
// subscriptions and the newsletter.
type StorefrontClient struct {
	rest restClient
}

func NewStorefrontClient(baseURL string, client *http.Client) *StorefrontClient {
	return &StorefrontClient{rest: newRESTClient(baseURL, client)}
}

func (c *StorefrontClient) CreateOrder(ctx context.Context, payload entity.OrderPayload) (*entity.CreatedOrder, error) {
	var resp envelope[*entity.CreatedOrder]
	if err := c.rest.do(ctx, http.MethodPost, "/Orders", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.ID == "" {
		return nil, errors.New("POST /Orders: response has no order id")
	}
	return resp.Data, nil
}

func (c *StorefrontClient) CreateIntent(ctx context.Context, req entity.PaymentIntentRequest) (*entity.PaymentIntent, error) {
	var resp envelope[*entity.PaymentIntent]
	if err := c.rest.do(ctx, http.MethodPost, "/Payment/create-intent", req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, errors.New("POST /Payment/create-intent: empty response")
	}
	return resp.Data, nil
}

func (c *StorefrontClient) ConfirmPayment(ctx context.Context, paymentIntentID string) error {
	return c.rest.do(ctx, http.MethodPost, "/Payment/confirm/"+url.PathEscape(paymentIntentID), nil, nil)
}

func (c *StorefrontClient) CreateSubscription(ctx context.Context, req entity.SubscriptionRequest) (string, error) {
	var resp envelope[struct {
		ID string `json:"id"`
	}]
	if err := c.rest.do(ctx, http.MethodPost, "/Subscriptions", req, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

func (c *StorefrontClient) Subscribe(ctx context.Context, sub entity.NewsletterSubscription) error {
	return c.rest.do(ctx, http.MethodPost, "/Newsletter/subscribe", sub, nil)
}
