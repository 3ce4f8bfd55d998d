package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/ports"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/circuitbreaker"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

var _ ports.AddressLookup = (*AddressClient)(nil)

var ErrLookupUnavailable = errors.New("address lookup unavailable")

const sharedDetailsTimeout = 10 * time.Second

// AddressClient calls the storefront address lookup endpoints behind a
// circuit breaker. Concurrent detail fetches for one id share a request.
type AddressClient struct {
	rest    restClient
	country string
	breaker *gobreaker.CircuitBreaker[any]
	sfg     singleflight.Group
}

func NewAddressClient(baseURL, country string, client *http.Client) *AddressClient {
	return &AddressClient{
		rest:    newRESTClient(baseURL, client),
		country: country,
		breaker: circuitbreaker.New[any]("address-lookup", circuitbreaker.Settings{
			IsSuccessful: clientErrorIsHealthy,
		}),
	}
}

func (c *AddressClient) Search(ctx context.Context, query string) ([]entity.AddressSuggestion, error) {
	path := "/address-lookup/search?" + url.Values{
		"query":   {query},
		"country": {c.country},
	}.Encode()

	v, err := c.call(func() (any, error) {
		var resp envelope[[]entity.AddressSuggestion]
		if err := c.rest.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		if resp.Success != nil && !*resp.Success {
			return nil, fmt.Errorf("address search: %s", resp.Message)
		}
		return resp.Data, nil
	})
	if err != nil {
		metrics.AddressLookups.WithLabelValues("search", "error").Inc()
		return nil, err
	}
	metrics.AddressLookups.WithLabelValues("search", "remote").Inc()
	return v.([]entity.AddressSuggestion), nil
}

// Details shares one request between concurrent callers asking for the same
// id. The shared request is detached from any single caller's context; each
// caller stops waiting when its own context ends.
func (c *AddressClient) Details(ctx context.Context, id string) (*entity.AddressDetails, error) {
	ch := c.sfg.DoChan(id, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedDetailsTimeout)
		defer cancel()
		return c.call(func() (any, error) {
			var resp envelope[*entity.AddressDetails]
			if err := c.rest.do(shared, http.MethodGet, "/address-lookup/details/"+url.PathEscape(id), nil, &resp); err != nil {
				return nil, err
			}
			if (resp.Success != nil && !*resp.Success) || resp.Data == nil {
				return nil, fmt.Errorf("address details %s: %s", id, resp.Message)
			}
			return resp.Data, nil
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		metrics.AddressLookups.WithLabelValues("details", "error").Inc()
		return nil, res.Err
	}
	metrics.AddressLookups.WithLabelValues("details", "remote").Inc()
	details := *res.Val.(*entity.AddressDetails)
	return &details, nil
}

func (c *AddressClient) call(fn func() (any, error)) (any, error) {
	v, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	return v, err
}

// clientErrorIsHealthy keeps 4xx answers from tripping the breaker: the
// service is up, the request was bad.
func clientErrorIsHealthy(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
