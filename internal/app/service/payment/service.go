package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/app/service/subscription"
	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/internal/platform/razorpay"
	"github.com/trademint/backend/pkg/logctx"
	"github.com/trademint/backend/pkg/metrics"
	"github.com/trademint/backend/pkg/tool"
	"github.com/trademint/backend/pkg/types"
)

var (
	ErrClientOnly        = errors.New("only clients can subscribe to services")
	ErrServiceNotFound   = errors.New("service not found")
	ErrServiceInactive   = errors.New("service is not active")
	ErrAlreadySubscribed = errors.New("you already have an active subscription for this service")
	ErrInvalidSignature  = errors.New("invalid payment signature, payment verification failed")
	ErrPaymentNotFound   = errors.New("payment record not found")
	ErrAlreadyProcessed  = errors.New("payment already processed")
)

type Service struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	gateway razorpay.Gateway
	subs    *subscription.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, gateway razorpay.Gateway, subs *subscription.Service) *Service {
	return &Service{db: db, log: log, gateway: gateway, subs: subs}
}

// CreateOrderRequest initiates a checkout for one tier of a service. Price
// and duration override the service defaults when a tier is chosen.
type CreateOrderRequest struct {
	ServiceID      string `json:"service_id" binding:"required"`
	CustomPrice    *int64 `json:"custom_price"`
	CustomDuration *int   `json:"custom_duration"`
}

// OrderDescriptor is what the frontend hands to the checkout SDK.
type OrderDescriptor struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// CreateOrder is step one of the payment flow: re-run the eligibility check
// authoritatively, create the gateway order, and record a CREATED payment
// row. The amount is converted to paise for the gateway.
func (s *Service) CreateOrder(ctx context.Context, user *models.User, req *CreateOrderRequest) (*OrderDescriptor, error) {
	if user.Role != types.RoleClient {
		return nil, ErrClientOnly
	}

	var svc models.Service
	if err := s.db.WithContext(ctx).Where("id = ?", req.ServiceID).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	conflict, err := s.subs.Eligibility(ctx, user.ID, svc.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, ErrAlreadySubscribed
	}

	price := svc.Price
	if req.CustomPrice != nil {
		price = *req.CustomPrice
	}
	duration := svc.DurationDays
	if req.CustomDuration != nil {
		duration = *req.CustomDuration
	}
	amountPaise := price * 100

	order, err := s.gateway.CreateOrder(ctx, amountPaise, "INR",
		fmt.Sprintf("service_%s_user_%s", svc.ID, user.ID),
		map[string]interface{}{
			"service_id":    svc.ID,
			"service_name":  svc.Name,
			"user_id":       user.ID,
			"user_email":    user.Email,
			"duration_days": strconv.Itoa(duration),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	payment := &models.Payment{
		ID:              tool.GenerateUUIDV7(),
		RazorpayOrderID: order.ID,
		UserID:          user.ID,
		ServiceID:       svc.ID,
		Amount:          price,
		Currency:        "INR",
		Status:          types.PaymentStatusCreated,
		Email:           user.Email,
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	metrics.PaymentOrdersCreated.Inc()
	logctx.FromCtx(ctx, s.log).Infow("payment order created",
		"payment_id", payment.ID, "order_id", order.ID, "user_id", user.ID, "service_id", svc.ID)

	return &OrderDescriptor{
		OrderID:  order.ID,
		Amount:   amountPaise,
		Currency: "INR",
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// VerifyRequest is the signed bundle the checkout SDK returns on success.
type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	ServiceID         string `json:"service_id" binding:"required"`
}

// VerifyResult reports the activated subscription.
type VerifyResult struct {
	Payment      *models.Payment      `json:"payment"`
	Subscription *models.Subscription `json:"subscription"`
	ServiceName  string               `json:"service_name"`
}

// Verify is step two: check the gateway signature server-side (client-side
// success alone is never trusted), then atomically capture the payment and
// activate the subscription. A CAPTURED payment is rejected so replays of the
// same bundle cannot double-bill.
func (s *Service) Verify(ctx context.Context, user *models.User, req *VerifyRequest) (*VerifyResult, error) {
	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		metrics.PaymentsVerified.WithLabelValues("invalid_signature").Inc()
		logctx.FromCtx(ctx, s.log).Errorw("invalid payment signature", "order_id", req.RazorpayOrderID)
		return nil, ErrInvalidSignature
	}

	var result VerifyResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("razorpay_order_id = ? AND user_id = ?", req.RazorpayOrderID, user.ID).
			First(&payment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment.Status == types.PaymentStatusCaptured {
			return ErrAlreadyProcessed
		}

		var svc models.Service
		if err := tx.Where("id = ?", req.ServiceID).First(&svc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("failed to load service: %w", err)
		}

		now := time.Now()
		payment.RazorpayPaymentID = &req.RazorpayPaymentID
		payment.RazorpaySignature = &req.RazorpaySignature
		payment.Status = types.PaymentStatusCaptured
		payment.PaidAt = &now

		// method/contact are display-only enrichment; fetch failures are
		// logged and do not fail the verification
		if details, err := s.gateway.FetchPayment(ctx, req.RazorpayPaymentID); err == nil {
			if method, ok := details["method"].(string); ok {
				payment.PaymentMethod = method
			}
			if contact, ok := details["contact"].(string); ok {
				payment.Contact = contact
			}
		} else {
			logctx.FromCtx(ctx, s.log).Warnw("could not fetch payment details", "err", err)
		}

		// the tier chosen at checkout travels in the order notes; fall back
		// to the service default duration when they cannot be read
		duration := svc.DurationDays
		if notes, err := s.gateway.FetchOrderNotes(ctx, req.RazorpayOrderID); err == nil {
			if raw, ok := notes["duration_days"].(string); ok {
				if d, err := strconv.Atoi(raw); err == nil && d > 0 {
					duration = d
				}
			}
		} else {
			logctx.FromCtx(ctx, s.log).Warnw("could not fetch order notes for custom duration", "err", err)
		}

		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("failed to capture payment: %w", err)
		}

		sub, err := s.subs.Create(ctx, tx, user.ID, svc.ID, &payment.ID, duration)
		if err != nil {
			return err
		}

		result = VerifyResult{Payment: &payment, Subscription: sub, ServiceName: svc.Name}
		return nil
	})
	if err != nil {
		metrics.PaymentsVerified.WithLabelValues("failed").Inc()
		s.markFailed(ctx, req.RazorpayOrderID, user.ID, err)
		return nil, err
	}

	metrics.PaymentsVerified.WithLabelValues("ok").Inc()
	logctx.FromCtx(ctx, s.log).Infow("payment verified, subscription activated",
		"payment_id", result.Payment.ID, "subscription_id", result.Subscription.ID)
	return &result, nil
}

// markFailed records the failure reason on the payment row, outside the
// rolled-back transaction. Sentinel rejections that precede any state change
// keep their CREATED status.
func (s *Service) markFailed(ctx context.Context, orderID, userID string, cause error) {
	if errors.Is(cause, ErrPaymentNotFound) || errors.Is(cause, ErrAlreadyProcessed) || errors.Is(cause, ErrServiceNotFound) {
		return
	}
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("razorpay_order_id = ? AND user_id = ? AND status = ?", orderID, userID, types.PaymentStatusCreated).
		Updates(map[string]interface{}{
			"status":            types.PaymentStatusFailed,
			"error_description": cause.Error(),
		}).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to mark payment failed", "order_id", orderID, "err", err)
	}
}

// ListForUser returns the caller's payments, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	var payments []*models.Payment
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// Get returns one of the caller's payments.
func (s *Service) Get(ctx context.Context, userID, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", paymentID, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}
