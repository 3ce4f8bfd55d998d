package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b)))
	return rec
}

func orderPayload(method entity.DeliveryMethod) entity.OrderPayload {
	return entity.OrderPayload{
		CustomerEmail:  "ada@example.com",
		DeliveryMethod: method,
		Items: []entity.OrderItemPayload{
			{ProductID: "A", Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
		},
	}
}

func TestCreateOrder_PricesHomeDelivery(t *testing.T) {
	srv := NewServer(DefaultOptions())

	rec := post(t, srv.Routes(), "/Orders", orderPayload(entity.HomeDelivery))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data entity.CreatedOrder `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "21", resp.Data.SubtotalAmount.String())
	assert.Equal(t, "24.99", resp.Data.TotalAmount.String())

	o, err := srv.Order(resp.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, o.Status)
}

func TestCreateOrder_Rejects(t *testing.T) {
	srv := NewServer(DefaultOptions())

	rec := post(t, srv.Routes(), "/Orders", entity.OrderPayload{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p := orderPayload(entity.ClickAndCollect)
	p.Items[0].Quantity = 0
	rec = post(t, srv.Routes(), "/Orders", p)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentFlow_MarksOrderPaid(t *testing.T) {
	srv := NewServer(DefaultOptions())
	h := srv.Routes()
	o, err := srv.orders.create(orderPayload(entity.ClickAndCollect))
	require.NoError(t, err)

	rec := post(t, h, "/Payment/create-intent", entity.PaymentIntentRequest{Amount: o.TotalAmount, Currency: "gbp", OrderID: o.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data entity.PaymentIntent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data.ClientSecret, resp.Data.PaymentIntentID+"_secret_")

	rec = post(t, h, "/Payment/confirm/"+resp.Data.PaymentIntentID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := srv.Order(o.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, got.Status)
}

func TestCreateIntent_Limits(t *testing.T) {
	srv := NewServer(DefaultOptions())
	o, err := srv.orders.create(orderPayload(entity.ClickAndCollect))
	require.NoError(t, err)

	rec := post(t, srv.Routes(), "/Payment/create-intent", entity.PaymentIntentRequest{Amount: decimal.NewFromInt(501), OrderID: o.ID})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = post(t, srv.Routes(), "/Payment/create-intent", entity.PaymentIntentRequest{Amount: decimal.NewFromInt(5), OrderID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddressLookup(t *testing.T) {
	srv := NewServer(DefaultOptions())
	h := srv.Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/address-lookup/search?query=baker&country=GB", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Success bool                       `json:"success"`
		Data    []entity.AddressSuggestion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Len(t, search.Data, 1)
	assert.Equal(t, "GB-002", search.Data[0].ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/address-lookup/details/GB-002", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NW1 6XE")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/address-lookup/details/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
