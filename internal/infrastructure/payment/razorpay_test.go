package payment

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeOrderAPI struct {
	created map[string]interface{}
	body    map[string]interface{}
	err     error
}

func (f *fakeOrderAPI) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.created = data
	return f.body, f.err
}

func (f *fakeOrderAPI) Fetch(_ string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	return f.body, f.err
}

func newTestGateway(api orderAPI) *RazorpayGateway {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &RazorpayGateway{orders: api, log: log}
}

func TestCreateOrderSendsMinorUnits(t *testing.T) {
	api := &fakeOrderAPI{body: map[string]interface{}{
		"id":       "order_123",
		"amount":   float64(50000),
		"currency": "INR",
		"receipt":  "appt-1",
		"status":   "created",
	}}
	gw := newTestGateway(api)

	order, err := gw.CreateOrder(context.Background(), 50000, "INR", "appt-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if api.created["amount"] != int64(50000) {
		t.Errorf("amount sent = %v, want 50000", api.created["amount"])
	}
	if api.created["receipt"] != "appt-1" {
		t.Errorf("receipt sent = %v, want appt-1", api.created["receipt"])
	}
	if order.ID != "order_123" || order.Amount != 50000 || order.Status != "created" {
		t.Errorf("unexpected order: %+v", order)
	}
}

func TestFetchOrderParsesPaidStatus(t *testing.T) {
	gw := newTestGateway(&fakeOrderAPI{body: map[string]interface{}{
		"id":      "order_9",
		"amount":  float64(120000),
		"receipt": "appt-9",
		"status":  "paid",
	}})

	order, err := gw.FetchOrder(context.Background(), "order_9")
	if err != nil {
		t.Fatalf("FetchOrder: %v", err)
	}
	if !order.IsPaid() {
		t.Errorf("expected paid order, got status %q", order.Status)
	}
	if order.Receipt != "appt-9" {
		t.Errorf("receipt = %q, want appt-9", order.Receipt)
	}
}

func TestParseOrderRejectsMissingID(t *testing.T) {
	_, err := parseOrder(map[string]interface{}{"status": "created"})
	if !errors.Is(err, ErrMalformedOrder) {
		t.Fatalf("err = %v, want ErrMalformedOrder", err)
	}
}

func TestCreateOrderWrapsGatewayError(t *testing.T) {
	gwErr := errors.New("bad request")
	gw := newTestGateway(&fakeOrderAPI{err: gwErr})

	if _, err := gw.CreateOrder(context.Background(), 100, "INR", "r"); !errors.Is(err, gwErr) {
		t.Fatalf("err = %v, want wrapped gateway error", err)
	}
}

func TestCreateOrderHonoursCancelledContext(t *testing.T) {
	api := &fakeOrderAPI{}
	gw := newTestGateway(api)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gw.CreateOrder(ctx, 100, "INR", "r"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if api.created != nil {
		t.Error("gateway should not be called with a cancelled context")
	}
}
