package trader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/logctx"
	"github.com/trademint/backend/pkg/tool"
	"github.com/trademint/backend/pkg/types"
)

var (
	ErrInvalidPan       = errors.New("invalid PAN card format, expected ABCDE1234F")
	ErrAlreadyOnboarded = errors.New("user already onboarded as trader")
	ErrProfileNotFound  = errors.New("trader profile not found, please onboard first")
	ErrNotApproved      = errors.New("trader is not approved yet")
	ErrTraderNotFound   = errors.New("trader not found")
	ErrAlreadyApproved  = errors.New("trader is already approved")
	ErrNotYetApproved   = errors.New("trader is not approved")
	ErrServiceNotFound  = errors.New("service not found")
)

// ValidationError carries the joined conflict reasons from the uniqueness
// pre-check so the caller can surface them verbatim.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, ", ")
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Validate is phase one of onboarding: the uniqueness pre-check run BEFORE
// any login credential exists. PAN format is rejected first without touching
// the database. A conflict aborts the whole registration flow, so no orphan
// cleanup is ever needed on this path.
func (s *Service) Validate(ctx context.Context, sebiReg, panCard string) error {
	if !ValidPan(panCard) {
		return ErrInvalidPan
	}
	pan := NormalizePan(panCard)

	var reasons []string
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Trader{}).
		Where("sebi_reg = ?", sebiReg).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check SEBI registration: %w", err)
	}
	if count > 0 {
		reasons = append(reasons, "SEBI registration number already exists")
	}

	if err := s.db.WithContext(ctx).Model(&models.Trader{}).
		Where("pan_card = ?", pan).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check PAN card: %w", err)
	}
	if count > 0 {
		reasons = append(reasons, "PAN card number already exists")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// OnboardRequest is the phase-two profile submission.
type OnboardRequest struct {
	Name         string `json:"name" binding:"required"`
	SebiReg      string `json:"sebi_reg" binding:"required"`
	PanCard      string `json:"pan_card" binding:"required"`
	Bio          string `json:"bio"`
	ImageURL     string `json:"image_url"`
	TradesPerDay int    `json:"trades_per_day"`
}

// Onboard is phase two: create the trader profile under the freshly
// authenticated user. Uniqueness is re-checked here (the pre-check is
// advisory; a race between phases is possible and resolved by this check
// plus the unique indexes). The new profile starts PENDING.
func (s *Service) Onboard(ctx context.Context, user *models.User, req *OnboardRequest) (*models.Trader, error) {
	if user.Role != types.RoleTrader {
		return nil, errors.New("only users with trader role can onboard as traders")
	}

	var existing models.Trader
	err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyOnboarded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing trader: %w", err)
	}

	if err := s.Validate(ctx, req.SebiReg, req.PanCard); err != nil {
		return nil, err
	}

	trader := &models.Trader{
		ID:             tool.GenerateUUIDV7(),
		UserID:         user.ID,
		Name:           req.Name,
		SebiReg:        req.SebiReg,
		PanCard:        NormalizePan(req.PanCard),
		Bio:            req.Bio,
		ImageURL:       req.ImageURL,
		TradesPerDay:   req.TradesPerDay,
		ApprovalStatus: types.ApprovalStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(trader).Error; err != nil {
		return nil, fmt.Errorf("failed to create trader: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("trader onboarded, pending approval",
		"trader_id", trader.ID, "user_id", user.ID, "sebi_reg", trader.SebiReg)
	return trader, nil
}

// GetByUser returns the trader profile owned by a user.
func (s *Service) GetByUser(ctx context.Context, userID string) (*models.Trader, error) {
	var trader models.Trader
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&trader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to load trader: %w", err)
	}
	return &trader, nil
}

// ProfileUpdate carries the mutable marketplace fields.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	ImageURL     *string `json:"image_url"`
	TradesPerDay *int    `json:"trades_per_day"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, upd *ProfileUpdate) (*models.Trader, error) {
	trader, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		trader.Name = *upd.Name
	}
	if upd.Bio != nil {
		trader.Bio = *upd.Bio
	}
	if upd.ImageURL != nil {
		trader.ImageURL = *upd.ImageURL
	}
	if upd.TradesPerDay != nil {
		trader.TradesPerDay = *upd.TradesPerDay
	}
	if err := s.db.WithContext(ctx).Save(trader).Error; err != nil {
		return nil, fmt.Errorf("failed to update trader profile: %w", err)
	}
	return trader, nil
}

// CreateServiceRequest publishes one service row. Tiers are validated against
// the closed tier set here, the write boundary; reads tolerate legacy bad rows.
type CreateServiceRequest struct {
	Name         string        `json:"name" binding:"required"`
	Description  string        `json:"description"`
	Price        int64         `json:"price" binding:"required"`
	DurationDays int           `json:"duration_days" binding:"required"`
	PricingTiers types.TierMap `json:"pricing_tiers"`
}

func (s *Service) CreateService(ctx context.Context, userID string, req *CreateServiceRequest) (*models.Service, error) {
	trader, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !trader.Approved() {
		return nil, ErrNotApproved
	}
	if err := req.PricingTiers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing tiers: %w", err)
	}

	svc := &models.Service{
		ID:           tool.GenerateUUIDV7(),
		TraderID:     trader.ID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		IsActive:     true,
	}
	if len(req.PricingTiers) > 0 {
		blob, err := json.Marshal(req.PricingTiers)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pricing tiers: %w", err)
		}
		svc.PricingTiers = datatypes.JSON(blob)
	}

	if err := s.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("service created",
		"service_id", svc.ID, "trader_id", trader.ID, "name", svc.Name)
	return svc, nil
}

// ListServices returns all of the calling trader's own rows, active or not.
func (s *Service) ListServices(ctx context.Context, userID string) ([]*models.Service, error) {
	trader, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var services []*models.Service
	if err := s.db.WithContext(ctx).
		Where("trader_id = ?", trader.ID).
		Order("created_at asc").
		Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// --- admin operations ---

// ListPending returns traders awaiting review.
func (s *Service) ListPending(ctx context.Context) ([]*models.Trader, error) {
	var traders []*models.Trader
	if err := s.db.WithContext(ctx).
		Where("approval_status = ?", types.ApprovalStatusPending).
		Order("created_at asc").
		Find(&traders).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending traders: %w", err)
	}
	return traders, nil
}

// ListAll returns traders, optionally filtered by approval status.
func (s *Service) ListAll(ctx context.Context, status types.ApprovalStatus) ([]*models.Trader, error) {
	q := s.db.WithContext(ctx).Order("created_at asc")
	if status != "" {
		q = q.Where("approval_status = ?", status)
	}
	var traders []*models.Trader
	if err := q.Find(&traders).Error; err != nil {
		return nil, fmt.Errorf("failed to list traders: %w", err)
	}
	return traders, nil
}

func (s *Service) get(ctx context.Context, traderID string) (*models.Trader, error) {
	var trader models.Trader
	err := s.db.WithContext(ctx).Where("id = ?", traderID).First(&trader).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTraderNotFound
		}
		return nil, fmt.Errorf("failed to load trader: %w", err)
	}
	return &trader, nil
}

// Approve moves a pending trader to APPROVED.
func (s *Service) Approve(ctx context.Context, traderID, adminUserID string) (*models.Trader, error) {
	trader, err := s.get(ctx, traderID)
	if err != nil {
		return nil, err
	}
	if trader.Approved() {
		return nil, ErrAlreadyApproved
	}

	now := time.Now()
	trader.ApprovalStatus = types.ApprovalStatusApproved
	trader.RejectionReason = ""
	trader.ApprovedAt = &now
	trader.ApprovedBy = &adminUserID
	if err := s.db.WithContext(ctx).Save(trader).Error; err != nil {
		return nil, fmt.Errorf("failed to approve trader: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("trader approved", "trader_id", traderID, "admin", adminUserID)
	return trader, nil
}

// Reject marks a trader REJECTED with an optional reason.
func (s *Service) Reject(ctx context.Context, traderID, adminUserID, reason string) (*models.Trader, error) {
	trader, err := s.get(ctx, traderID)
	if err != nil {
		return nil, err
	}

	trader.ApprovalStatus = types.ApprovalStatusRejected
	trader.RejectionReason = reason
	trader.ApprovedAt = nil
	trader.ApprovedBy = nil
	if err := s.db.WithContext(ctx).Save(trader).Error; err != nil {
		return nil, fmt.Errorf("failed to reject trader: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("trader rejected", "trader_id", traderID, "admin", adminUserID, "reason", reason)
	return trader, nil
}

// ListAllServices returns every service row across all traders, optionally
// filtered by active flag.
func (s *Service) ListAllServices(ctx context.Context, isActive *bool) ([]*models.Service, error) {
	q := s.db.WithContext(ctx).Order("created_at asc")
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	var services []*models.Service
	if err := q.Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// DeactivateService pulls one service off the marketplace. Existing
// subscriptions are untouched; they run out on their own end dates.
func (s *Service) DeactivateService(ctx context.Context, serviceID, adminUserID string) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).Where("id = ?", serviceID).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}

	svc.IsActive = false
	if err := s.db.WithContext(ctx).Save(&svc).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate service: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("service deactivated", "service_id", serviceID, "admin", adminUserID)
	return &svc, nil
}

// Revoke pulls approval and deactivates every service the trader publishes.
func (s *Service) Revoke(ctx context.Context, traderID, adminUserID string) error {
	trader, err := s.get(ctx, traderID)
	if err != nil {
		return err
	}
	if !trader.Approved() {
		return ErrNotYetApproved
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trader.ApprovalStatus = types.ApprovalStatusPending
		trader.ApprovedAt = nil
		trader.ApprovedBy = nil
		if err := tx.Save(trader).Error; err != nil {
			return fmt.Errorf("failed to revoke approval: %w", err)
		}
		if err := tx.Model(&models.Service{}).
			Where("trader_id = ?", traderID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate services: %w", err)
		}
		logctx.FromCtx(ctx, s.log).Infow("trader approval revoked, services deactivated",
			"trader_id", traderID, "admin", adminUserID)
		return nil
	})
}
