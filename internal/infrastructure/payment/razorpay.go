package payment

import (
	"context"
	"errors"
	"fmt"

	"medique-api/config"
	"medique-api/internal/domain/gateway"

	"github.com/razorpay/razorpay-go"
	"github.com/sirupsen/logrus"
)

// ErrMalformedOrder is returned when the gateway answers without an order id.
var ErrMalformedOrder = errors.New("malformed order response from payment gateway")

// orderAPI is the subset of the razorpay-go order resource used here.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders orderAPI
	log    *logrus.Logger
}

func NewRazorpayGateway(cfg config.RazorpayConfig, log *logrus.Logger) *RazorpayGateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return &RazorpayGateway{
		orders: client.Order,
		log:    log,
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*gateway.PaymentOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.orders.Create(data, nil)
	if err != nil {
		g.log.Warnf("Failed to create razorpay order for receipt %s: %+v", receipt, err)
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}

	return parseOrder(body)
}

func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*gateway.PaymentOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := g.orders.Fetch(orderID, nil, nil)
	if err != nil {
		g.log.Warnf("Failed to fetch razorpay order %s: %+v", orderID, err)
		return nil, fmt.Errorf("fetch razorpay order: %w", err)
	}

	return parseOrder(body)
}

// parseOrder reads the fields we need out of the decoded JSON body. Numbers
// arrive as float64.
func parseOrder(body map[string]interface{}) (*gateway.PaymentOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, ErrMalformedOrder
	}

	order := &gateway.PaymentOrder{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)

	switch v := body["amount"].(type) {
	case float64:
		order.Amount = int64(v)
	case int64:
		order.Amount = v
	case int:
		order.Amount = int64(v)
	}

	return order, nil
}
