package razorpay

import (
	"context"

	rzp "github.com/razorpay/razorpay-go"

	"github.com/oksasatya/evcharge/internal/application"
)

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Gateway opens Razorpay orders. The SDK has no context support, so ctx is
// only checked before the call.
type Gateway struct {
	orders orderCreator
}

func NewGateway(keyID, keySecret string) *Gateway {
	client := rzp.NewClient(keyID, keySecret)
	return &Gateway{orders: client.Order}
}

func (g *Gateway) CreateOrder(ctx context.Context, req application.OrderRequest) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	return g.orders.Create(map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
		"notes":           notes,
	}, nil)
}

var _ application.PaymentGateway = (*Gateway)(nil)
