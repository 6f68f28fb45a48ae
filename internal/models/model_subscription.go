package models

import (
	"time"

	"github.com/trademint/backend/pkg/types"
)

// Subscription links a client to a service for a paid window. At most one
// ACTIVE subscription may exist per (user_id, service_id) pair; the stored
// status is normalized lazily wherever it is read (see EffectiveStatus), the
// persisted flip to EXPIRED happens in the expiry sweep.
type Subscription struct {
	ID        string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string                   `gorm:"column:user_id;type:uuid;not null;index:idx_user_service,priority:1" json:"user_id"`
	ServiceID string                   `gorm:"column:service_id;type:uuid;not null;index:idx_user_service,priority:2" json:"service_id"`
	PaymentID *string                  `gorm:"column:payment_id;type:uuid;default:null" json:"payment_id,omitempty"`
	StartDate time.Time                `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   time.Time                `gorm:"column:end_date;not null" json:"end_date"`
	Status    types.SubscriptionStatus `gorm:"column:status;type:varchar(16);not null;default:'ACTIVE'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// EffectiveStatus computes the status as of now. A row still stored as ACTIVE
// whose end date has passed reads as EXPIRED without waiting for the sweep.
func (s *Subscription) EffectiveStatus(now time.Time) types.SubscriptionStatus {
	if s.Status == types.SubscriptionStatusActive && !s.EndDate.After(now) {
		return types.SubscriptionStatusExpired
	}
	return s.Status
}

// ActiveAt reports whether the subscription is currently in force.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s != nil && s.EffectiveStatus(now) == types.SubscriptionStatusActive
}
