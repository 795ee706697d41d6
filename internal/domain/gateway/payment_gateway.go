package gateway

import "context"

// Order statuses reported by the payment gateway
const (
	OrderStatusCreated   = "created"
	OrderStatusAttempted = "attempted"
	OrderStatusPaid      = "paid"
)

// PaymentOrder is the gateway's view of an order. Receipt carries the
// appointment id the order was created for.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// IsPaid reports whether the gateway has captured the order.
func (o *PaymentOrder) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*PaymentOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*PaymentOrder, error)
}
