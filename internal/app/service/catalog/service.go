package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/logctx"
	"github.com/trademint/backend/pkg/types"
)

var ErrTraderNotFound = errors.New("trader not found or not approved")

// Service serves the public marketplace: approved traders and their active
// services, reconciled into logical offerings.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type serviceScan struct {
	ID              string
	TraderID        string
	Name            string
	Description     string
	Price           int64
	DurationDays    int
	PricingTiers    datatypes.JSON
	SubscriberCount int64
}

func (s *Service) activeServiceRows(ctx context.Context, traderID string) ([]serviceScan, error) {
	now := time.Now()
	q := s.db.WithContext(ctx).Model(&models.Service{}).
		Select("services.id, services.trader_id, services.name, services.description, services.price, services.duration_days, services.pricing_tiers, count(subs.id) as subscriber_count").
		Joins("JOIN traders ON traders.id = services.trader_id AND traders.approval_status = ?", types.ApprovalStatusApproved).
		Joins("LEFT JOIN subscriptions subs ON subs.service_id = services.id AND subs.status = ? AND subs.end_date > ?", types.SubscriptionStatusActive, now).
		Where("services.is_active = ?", true).
		Group("services.id").
		Order("services.created_at asc")
	if traderID != "" {
		q = q.Where("services.trader_id = ?", traderID)
	}

	var rows []serviceScan
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return rows, nil
}

// ListOfferings returns all marketplace offerings, one per distinct service
// name, tiers merged.
func (s *Service) ListOfferings(ctx context.Context) ([]*Offering, error) {
	rows, err := s.activeServiceRows(ctx, "")
	if err != nil {
		return nil, err
	}
	return Reconcile(logctx.FromCtx(ctx, s.log), toServiceRows(rows)), nil
}

// TraderOfferings returns one approved trader's offerings.
func (s *Service) TraderOfferings(ctx context.Context, traderID string) ([]*Offering, error) {
	if _, err := s.approvedTrader(ctx, traderID); err != nil {
		return nil, err
	}
	rows, err := s.activeServiceRows(ctx, traderID)
	if err != nil {
		return nil, err
	}
	return Reconcile(logctx.FromCtx(ctx, s.log), toServiceRows(rows)), nil
}

func toServiceRows(rows []serviceScan) []ServiceRow {
	return lo.Map(rows, func(r serviceScan, _ int) ServiceRow {
		return ServiceRow{
			ID:              r.ID,
			Name:            r.Name,
			Description:     r.Description,
			SubscriberCount: r.SubscriberCount,
			PricingTiers:    []byte(r.PricingTiers),
		}
	})
}

// TraderListing is a marketplace card for one approved trader.
type TraderListing struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	SebiReg          string      `json:"sebi_reg"`
	ImageURL         string      `json:"image_url,omitempty"`
	Bio              string      `json:"bio,omitempty"`
	TradesPerDay     int         `json:"trades_per_day"`
	TotalServices    int         `json:"total_services"`
	TotalSubscribers int64       `json:"total_subscribers"`
	Offerings        []*Offering `json:"offerings"`
}

// ListTraders returns all approved traders with their reconciled offerings
// and subscriber totals.
func (s *Service) ListTraders(ctx context.Context) ([]*TraderListing, error) {
	var traders []*models.Trader
	if err := s.db.WithContext(ctx).
		Where("approval_status = ?", types.ApprovalStatusApproved).
		Order("created_at asc").
		Find(&traders).Error; err != nil {
		return nil, fmt.Errorf("failed to list traders: %w", err)
	}

	out := make([]*TraderListing, 0, len(traders))
	for _, trader := range traders {
		rows, err := s.activeServiceRows(ctx, trader.ID)
		if err != nil {
			return nil, err
		}
		offerings := Reconcile(logctx.FromCtx(ctx, s.log), toServiceRows(rows))
		out = append(out, &TraderListing{
			ID:           trader.ID,
			Name:         trader.Name,
			SebiReg:      trader.SebiReg,
			ImageURL:     trader.ImageURL,
			Bio:          trader.Bio,
			TradesPerDay: trader.TradesPerDay,
			TotalServices: len(rows),
			TotalSubscribers: lo.SumBy(rows, func(r serviceScan) int64 {
				return r.SubscriberCount
			}),
			Offerings: offerings,
		})
	}
	return out, nil
}

// TraderDetail is the expanded marketplace view of one trader.
type TraderDetail struct {
	TraderListing
	RecentAlerts30d int64      `json:"recent_alerts_30d"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
}

// GetTraderDetail returns one approved trader with offerings and recent
// alert volume.
func (s *Service) GetTraderDetail(ctx context.Context, traderID string) (*TraderDetail, error) {
	trader, err := s.approvedTrader(ctx, traderID)
	if err != nil {
		return nil, err
	}

	rows, err := s.activeServiceRows(ctx, traderID)
	if err != nil {
		return nil, err
	}
	offerings := Reconcile(logctx.FromCtx(ctx, s.log), toServiceRows(rows))

	var recentAlerts int64
	thirtyDaysAgo := time.Now().Add(-30 * 24 * time.Hour)
	if err := s.db.WithContext(ctx).Model(&models.TradeAlert{}).
		Where("trader_id = ? AND sent_at >= ?", traderID, thirtyDaysAgo).
		Count(&recentAlerts).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent alerts: %w", err)
	}

	return &TraderDetail{
		TraderListing: TraderListing{
			ID:           trader.ID,
			Name:         trader.Name,
			SebiReg:      trader.SebiReg,
			ImageURL:     trader.ImageURL,
			Bio:          trader.Bio,
			TradesPerDay: trader.TradesPerDay,
			TotalServices: len(rows),
			TotalSubscribers: lo.SumBy(rows, func(r serviceScan) int64 {
				return r.SubscriberCount
			}),
			Offerings: offerings,
		},
		RecentAlerts30d: recentAlerts,
		ApprovedAt:      trader.ApprovedAt,
	}, nil
}

func (s *Service) approvedTrader(ctx context.Context, traderID string) (*models.Trader, error) {
	var trader models.Trader
	err := s.db.WithContext(ctx).
		Where("id = ? AND approval_status = ?", traderID, types.ApprovalStatusApproved).
		First(&trader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTraderNotFound
		}
		return nil, fmt.Errorf("failed to load trader: %w", err)
	}
	return &trader, nil
}
