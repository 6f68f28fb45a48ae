package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/internal/platform/razorpay"
	"github.com/trademint/backend/pkg/types"
)

type stubGateway struct {
	signatureOK bool
}

func (g *stubGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (*razorpay.Order, error) {
	return &razorpay.Order{ID: "order_stub", Amount: amountPaise, Currency: currency}, nil
}

func (g *stubGateway) FetchOrderNotes(ctx context.Context, orderID string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (g *stubGateway) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (g *stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return g.signatureOK
}

func (g *stubGateway) KeyID() string { return "rzp_test_stub" }

func TestVerify_InvalidSignatureRejectedBeforeAnyWrite(t *testing.T) {
	svc := NewService(nil, zap.NewNop().Sugar(), &stubGateway{signatureOK: false}, nil)

	user := &models.User{ID: "u1", Role: types.RoleClient}
	_, err := svc.Verify(context.Background(), user, &VerifyRequest{
		RazorpayOrderID:   "order_stub",
		RazorpayPaymentID: "pay_stub",
		RazorpaySignature: "bad",
		ServiceID:         "svc1",
	})

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMarkFailed_SentinelRejectionsKeepPaymentUntouched(t *testing.T) {
	// nil db: touching the payments table would panic, so these must return early
	svc := NewService(nil, zap.NewNop().Sugar(), &stubGateway{}, nil)

	for _, cause := range []error{ErrPaymentNotFound, ErrAlreadyProcessed, ErrServiceNotFound} {
		assert.NotPanics(t, func() {
			svc.markFailed(context.Background(), "order_stub", "u1", cause)
		}, "cause %v", cause)
	}
}

func TestCreateOrder_ClientRoleRequired(t *testing.T) {
	svc := NewService(nil, zap.NewNop().Sugar(), &stubGateway{signatureOK: true}, nil)

	for _, role := range []types.Role{types.RoleTrader, types.RoleAdmin} {
		_, err := svc.CreateOrder(context.Background(), &models.User{ID: "u1", Role: role},
			&CreateOrderRequest{ServiceID: "svc1"})
		assert.ErrorIs(t, err, ErrClientOnly, "role %s", role)
	}
}
