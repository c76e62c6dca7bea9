package razorpay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/evcharge/internal/application"
)

type stubOrders struct {
	data map[string]interface{}
	err  error
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.data = data
	if s.err != nil {
		return nil, s.err
	}
	return map[string]interface{}{"id": "order_Abc", "amount": data["amount"], "status": "created"}, nil
}

func TestCreateOrderBuildsRazorpayPayload(t *testing.T) {
	stub := &stubOrders{}
	g := &Gateway{orders: stub}

	order, err := g.CreateOrder(context.Background(), application.OrderRequest{
		Amount:   1000,
		Currency: "INR",
		Receipt:  "receipt_order_1",
		Notes:    map[string]string{"chargingRecordId": "X"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_Abc", order["id"])

	assert.Equal(t, int64(1000), stub.data["amount"])
	assert.Equal(t, "INR", stub.data["currency"])
	assert.Equal(t, "receipt_order_1", stub.data["receipt"])
	assert.Equal(t, 1, stub.data["payment_capture"])
	assert.Equal(t, map[string]interface{}{"chargingRecordId": "X"}, stub.data["notes"])
}

func TestCreateOrderPropagatesErrors(t *testing.T) {
	g := &Gateway{orders: &stubOrders{err: errors.New("BAD_REQUEST_ERROR")}}
	_, err := g.CreateOrder(context.Background(), application.OrderRequest{Amount: 1})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Gateway{orders: &stubOrders{}}).CreateOrder(ctx, application.OrderRequest{Amount: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
