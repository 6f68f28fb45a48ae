package razorpay

import (
	"context"
	"fmt"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"go.uber.org/fx"

	cfgpkg "github.com/trademint/backend/pkg/config"
)

// Order is the descriptor handed to the frontend checkout SDK.
type Order struct {
	ID       string
	Amount   int64
	Currency string
}

// Gateway abstracts the Razorpay REST client so services and handler tests
// can stub the network boundary.
type Gateway interface {
	// CreateOrder creates an order for amount in paise. Notes travel with the
	// order and are read back during verification.
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (*Order, error)
	// FetchOrderNotes returns the notes attached at order creation.
	FetchOrderNotes(ctx context.Context, orderID string) (map[string]interface{}, error)
	// FetchPayment returns raw payment details (method, contact, ...).
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
	// VerifyPaymentSignature checks the HMAC the checkout SDK returned.
	// Client-side success alone is never trusted.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	// KeyID is the public key the frontend needs to open checkout.
	KeyID() string
}

type client struct {
	rz        *rzp.Client
	keyID     string
	keySecret string
}

func NewGateway(cfg *cfgpkg.Config) (Gateway, error) {
	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are not configured")
	}
	c := rzp.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	return &client{rz: c, keyID: cfg.Razorpay.KeyID, keySecret: cfg.Razorpay.KeySecret}, nil
}

func (c *client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	res, err := c.rz.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	id, _ := res["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order create: missing order id in response")
	}
	return &Order{ID: id, Amount: amountPaise, Currency: currency}, nil
}

func (c *client) FetchOrderNotes(ctx context.Context, orderID string) (map[string]interface{}, error) {
	res, err := c.rz.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order fetch: %w", err)
	}
	notes, _ := res["notes"].(map[string]interface{})
	return notes, nil
}

func (c *client) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	res, err := c.rz.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch: %w", err)
	}
	return res, nil
}

func (c *client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, c.keySecret)
}

func (c *client) KeyID() string {
	return c.keyID
}

var Module = fx.Options(
	fx.Provide(NewGateway),
)
