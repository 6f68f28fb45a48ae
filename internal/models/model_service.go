package models

import (
	"time"

	"gorm.io/datatypes"
)

// Service is one purchasable offering row. The backend historically stores
// one row per duration tier, so several rows may share one name; they are
// reconciled into a single logical offering at read time (catalog.Reconcile),
// never merged in the database.
type Service struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	TraderID     string `gorm:"column:trader_id;type:uuid;not null;index" json:"trader_id"`
	Name         string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description  string `gorm:"column:description;type:text" json:"description"`
	Price        int64  `gorm:"column:price;type:bigint;not null" json:"price"`
	DurationDays int    `gorm:"column:duration_days;not null" json:"duration_days"`
	// PricingTiers is an optional jsonb map of tier name -> {price, days}.
	// Validated against the closed tier set on write; reads tolerate bad rows.
	PricingTiers datatypes.JSON `gorm:"column:pricing_tiers;type:jsonb;default:null" json:"pricing_tiers,omitempty"`
	IsActive     bool           `gorm:"column:is_active;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}
