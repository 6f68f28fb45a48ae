package models

import (
	"time"

	"github.com/trademint/backend/pkg/types"
)

// Trader is the regulatory profile attached to a user with the trader role.
// SebiReg and PanCard are globally unique; uniqueness is pre-checked before
// the login credential is created (two-phase onboarding).
type Trader struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID       string `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	Name         string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	SebiReg      string `gorm:"column:sebi_reg;type:varchar(64);not null;uniqueIndex" json:"sebi_reg"`
	PanCard      string `gorm:"column:pan_card;type:varchar(10);not null;uniqueIndex" json:"pan_card"`
	Bio          string `gorm:"column:bio;type:text" json:"bio"`
	ImageURL     string `gorm:"column:image_url;type:varchar(512)" json:"image_url"`
	TradesPerDay int    `gorm:"column:trades_per_day;default:0" json:"trades_per_day"`

	ApprovalStatus  types.ApprovalStatus `gorm:"column:approval_status;type:varchar(16);not null;default:'PENDING'" json:"approval_status"`
	RejectionReason string               `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time           `gorm:"column:approved_at;default:null" json:"approved_at"`
	ApprovedBy      *string              `gorm:"column:approved_by;type:uuid;default:null" json:"approved_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Trader) TableName() string {
	return "traders"
}

func (t *Trader) Approved() bool {
	return t != nil && t.ApprovalStatus == types.ApprovalStatusApproved
}
