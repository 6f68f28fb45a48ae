package models

import (
	"time"

	"github.com/trademint/backend/pkg/types"
)

// Payment is the audit record for one Razorpay order. Status moves
// CREATED -> CAPTURED on verified payment, or CREATED -> FAILED. A CAPTURED
// payment is never reprocessed.
type Payment struct {
	ID                string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	RazorpayOrderID   string  `gorm:"column:razorpay_order_id;type:varchar(64);not null;uniqueIndex" json:"razorpay_order_id"`
	RazorpayPaymentID *string `gorm:"column:razorpay_payment_id;type:varchar(64);default:null" json:"razorpay_payment_id"`
	RazorpaySignature *string `gorm:"column:razorpay_signature;type:varchar(255);default:null" json:"-"`

	UserID    string `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	ServiceID string `gorm:"column:service_id;type:uuid;not null" json:"service_id"`
	// Amount in whole INR; the gateway order carries paise.
	Amount   int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status   types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Email    string              `gorm:"column:email;type:varchar(255)" json:"email"`

	PaymentMethod    string     `gorm:"column:payment_method;type:varchar(32)" json:"payment_method,omitempty"`
	Contact          string     `gorm:"column:contact;type:varchar(32)" json:"contact,omitempty"`
	PaidAt           *time.Time `gorm:"column:paid_at;default:null" json:"paid_at"`
	ErrorDescription string     `gorm:"column:error_description;type:text" json:"error_description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
