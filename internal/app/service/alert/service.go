package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/logctx"
	"github.com/trademint/backend/pkg/tool"
	"github.com/trademint/backend/pkg/types"
)

var (
	ErrNotApprovedTrader    = errors.New("only approved traders can send alerts")
	ErrServiceNotOwned      = errors.New("service not found or you don't have access")
	ErrServiceInactive      = errors.New("alerts can only be sent for active services")
	ErrNoActiveSubscription = errors.New("an active subscription is required to view these alerts")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// SendRequest is a trader-authored alert for one of their services.
type SendRequest struct {
	ServiceID   string `json:"service_id" binding:"required"`
	Message     string `json:"message" binding:"required"`
	StockSymbol string `json:"stock_symbol"`
	Action      string `json:"action" binding:"omitempty,oneof=BUY SELL HOLD"`
	TargetPrice string `json:"target_price"`
	StopLoss    string `json:"stop_loss"`
}

// Send records an alert against one of the calling trader's active services.
// Only approved traders can send, and only for services they own.
func (s *Service) Send(ctx context.Context, traderUserID string, req *SendRequest) (*models.TradeAlert, error) {
	var trader models.Trader
	if err := s.db.WithContext(ctx).Where("user_id = ?", traderUserID).First(&trader).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotApprovedTrader
		}
		return nil, fmt.Errorf("failed to load trader: %w", err)
	}
	if !trader.Approved() {
		return nil, ErrNotApprovedTrader
	}

	var svc models.Service
	err := s.db.WithContext(ctx).
		Where("id = ? AND trader_id = ?", req.ServiceID, trader.ID).
		First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotOwned
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	alert := &models.TradeAlert{
		ID:          tool.GenerateUUIDV7(),
		ServiceID:   svc.ID,
		TraderID:    trader.ID,
		Message:     req.Message,
		SentAt:      time.Now(),
		StockSymbol: req.StockSymbol,
		Action:      types.AlertAction(req.Action),
		TargetPrice: req.TargetPrice,
		StopLoss:    req.StopLoss,
	}
	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to record alert: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("trade alert sent",
		"alert_id", alert.ID, "service_id", svc.ID, "trader_id", trader.ID)
	return alert, nil
}

// ListForTrader returns every alert the calling trader has sent, newest first.
func (s *Service) ListForTrader(ctx context.Context, traderUserID string) ([]*models.TradeAlert, error) {
	var trader models.Trader
	if err := s.db.WithContext(ctx).Where("user_id = ?", traderUserID).First(&trader).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*models.TradeAlert{}, nil
		}
		return nil, fmt.Errorf("failed to load trader: %w", err)
	}

	var alerts []*models.TradeAlert
	if err := s.db.WithContext(ctx).
		Where("trader_id = ?", trader.ID).
		Order("sent_at desc").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// ListForService returns a service's alerts to a subscribed client. An
// effectively active subscription on that service is required; lazy expiry
// applies, so a stored ACTIVE row past its end date does not grant access.
func (s *Service) ListForService(ctx context.Context, userID, serviceID string) ([]*models.TradeAlert, error) {
	if err := s.requireActiveSubscription(ctx, userID, serviceID); err != nil {
		return nil, err
	}

	var alerts []*models.TradeAlert
	if err := s.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("sent_at desc").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// FeedItem is an alert enriched with service context for the client feed.
type FeedItem struct {
	*models.TradeAlert
	ServiceName string `json:"service_name"`
	TraderName  string `json:"trader_name"`
}

// FeedForUser aggregates alerts across every service the client is
// effectively subscribed to, newest first.
func (s *Service) FeedForUser(ctx context.Context, userID string, limit int) ([]*FeedItem, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.SubscriptionStatusActive).
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	now := time.Now()
	serviceIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		if sub.ActiveAt(now) {
			serviceIDs = append(serviceIDs, sub.ServiceID)
		}
	}
	if len(serviceIDs) == 0 {
		return []*FeedItem{}, nil
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var alerts []*models.TradeAlert
	if err := s.db.WithContext(ctx).
		Where("service_id IN ?", serviceIDs).
		Order("sent_at desc").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	out := make([]*FeedItem, 0, len(alerts))
	for _, a := range alerts {
		item := &FeedItem{TradeAlert: a}
		var svc models.Service
		if err := s.db.WithContext(ctx).Where("id = ?", a.ServiceID).First(&svc).Error; err == nil {
			item.ServiceName = svc.Name
			var trader models.Trader
			if err := s.db.WithContext(ctx).Where("id = ?", svc.TraderID).First(&trader).Error; err == nil {
				item.TraderName = trader.Name
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) requireActiveSubscription(ctx context.Context, userID, serviceID string) error {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Find(&subs).Error; err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}
	now := time.Now()
	for _, sub := range subs {
		if sub.ActiveAt(now) {
			return nil
		}
	}
	return ErrNoActiveSubscription
}
