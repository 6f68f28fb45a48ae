package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/logctx"
	"github.com/trademint/backend/pkg/metrics"
	"github.com/trademint/backend/pkg/tool"
	"github.com/trademint/backend/pkg/types"
)

var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrServiceInactive    = errors.New("service is not currently active")
	ErrTraderNotApproved  = errors.New("service provider is not approved")
	ErrAlreadySubscribed  = errors.New("you already have an active subscription for this service")
	ErrNotFound           = errors.New("subscription not found")
	ErrNotActive          = errors.New("only active subscriptions can be cancelled")
	ErrNotServiceProvider = errors.New("service not found or you don't have access")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// ListForUser returns the caller's subscriptions, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, statusFilter types.SubscriptionStatus) ([]*models.Subscription, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc")
	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}
	var subs []*models.Subscription
	if err := q.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// ListAll returns every subscription on the platform, optionally filtered by
// stored status, newest first.
func (s *Service) ListAll(ctx context.Context, statusFilter types.SubscriptionStatus) ([]*models.Subscription, error) {
	q := s.db.WithContext(ctx).Order("created_at desc")
	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}
	var subs []*models.Subscription
	if err := q.Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// Eligibility runs the advisory duplicate-subscription check against a fresh
// read of the caller's subscriptions. Nil conflict means proceed to payment.
func (s *Service) Eligibility(ctx context.Context, userID, serviceID string) (*Conflict, error) {
	subs, err := s.ListForUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return CheckEligibility(subs, serviceID, time.Now()), nil
}

// Detail is a subscription enriched with service and trader context for
// dashboard display.
type Detail struct {
	*models.Subscription
	EffectiveStatus    types.SubscriptionStatus `json:"effective_status"`
	ServiceName        string                   `json:"service_name"`
	ServiceDescription string                   `json:"service_description,omitempty"`
	ServicePrice       int64                    `json:"service_price"`
	DurationDays       int                      `json:"duration_days"`
	TraderName         string                   `json:"trader_name"`
	TraderSebiReg      string                   `json:"trader_sebi_reg,omitempty"`
	DaysLeft           int                      `json:"days_left"`
	IsExpired          bool                     `json:"is_expired"`
}

// ListDetailsForUser returns enriched subscriptions. Expiry is computed
// lazily against the clock; a stored ACTIVE row past its end date reads as
// EXPIRED here without any background job.
func (s *Service) ListDetailsForUser(ctx context.Context, userID string, statusFilter types.SubscriptionStatus) ([]*Detail, error) {
	subs, err := s.ListForUser(ctx, userID, statusFilter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]*Detail, 0, len(subs))
	for _, sub := range subs {
		d := &Detail{
			Subscription:    sub,
			EffectiveStatus: sub.EffectiveStatus(now),
			IsExpired:       !sub.EndDate.After(now),
		}
		if sub.EndDate.After(now) {
			d.DaysLeft = int(sub.EndDate.Sub(now).Hours() / 24)
		}

		var svc models.Service
		if err := s.db.WithContext(ctx).Where("id = ?", sub.ServiceID).First(&svc).Error; err == nil {
			d.ServiceName = svc.Name
			d.ServiceDescription = svc.Description
			d.ServicePrice = svc.Price
			d.DurationDays = svc.DurationDays

			var trader models.Trader
			if err := s.db.WithContext(ctx).Where("id = ?", svc.TraderID).First(&trader).Error; err == nil {
				d.TraderName = trader.Name
				d.TraderSebiReg = trader.SebiReg
			}
		} else {
			d.ServiceName = "Unknown Service"
		}
		out = append(out, d)
	}
	return out, nil
}

// Get returns one of the caller's subscriptions.
func (s *Service) Get(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", subscriptionID, userID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// Create activates a subscription for durationDays starting now. The
// duplicate-active invariant is enforced here, the authoritative point; the
// eligibility endpoint is only the UX short-circuit. Runs inside tx when the
// caller is already in a transaction (payment verification), otherwise on
// the service's own handle.
func (s *Service) Create(ctx context.Context, tx *gorm.DB, userID, serviceID string, paymentID *string, durationDays int) (*models.Subscription, error) {
	if tx == nil {
		tx = s.db
	}

	var svc models.Service
	if err := tx.WithContext(ctx).Where("id = ?", serviceID).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	var trader models.Trader
	if err := tx.WithContext(ctx).Where("id = ?", svc.TraderID).First(&trader).Error; err != nil || !trader.Approved() {
		return nil, ErrTraderNotApproved
	}

	now := time.Now()
	var existing []*models.Subscription
	if err := tx.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing subscriptions: %w", err)
	}
	if CheckEligibility(existing, serviceID, now) != nil {
		return nil, ErrAlreadySubscribed
	}

	if durationDays <= 0 {
		durationDays = svc.DurationDays
	}
	sub := &models.Subscription{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		ServiceID: serviceID,
		PaymentID: paymentID,
		StartDate: now,
		EndDate:   now.Add(time.Duration(durationDays) * 24 * time.Hour),
		Status:    types.SubscriptionStatusActive,
	}
	if err := tx.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	metrics.SubscriptionsCreated.Inc()
	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"subscription_id", sub.ID, "user_id", userID, "service_id", serviceID, "end_date", sub.EndDate)
	return sub, nil
}

// Cancel moves one of the caller's ACTIVE subscriptions to CANCELLED.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID string) (*models.Subscription, error) {
	sub, err := s.Get(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.EffectiveStatus(time.Now()) != types.SubscriptionStatusActive {
		return nil, ErrNotActive
	}

	sub.Status = types.SubscriptionStatusCancelled
	if err := s.db.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription cancelled", "subscription_id", sub.ID, "user_id", userID)
	return sub, nil
}

// CountActiveForService returns the live subscriber count of a service owned
// by the calling trader.
func (s *Service) CountActiveForService(ctx context.Context, traderUserID, serviceID string) (int64, error) {
	var trader models.Trader
	if err := s.db.WithContext(ctx).Where("user_id = ?", traderUserID).First(&trader).Error; err != nil {
		return 0, ErrNotServiceProvider
	}
	var svc models.Service
	if err := s.db.WithContext(ctx).
		Where("id = ? AND trader_id = ?", serviceID, trader.ID).
		First(&svc).Error; err != nil {
		return 0, ErrNotServiceProvider
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("service_id = ? AND status = ? AND end_date > ?", serviceID, types.SubscriptionStatusActive, time.Now()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

// ExpireOverdue persists EXPIRED for ACTIVE rows past their end date. Reads
// never depend on this sweep; it keeps the stored state converging with what
// EffectiveStatus already reports.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date <= ?", types.SubscriptionStatusActive, time.Now()).
		Update("status", types.SubscriptionStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		metrics.SubscriptionsExpired.Add(float64(res.RowsAffected))
		logctx.FromCtx(ctx, s.log).Infow("expired overdue subscriptions", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
