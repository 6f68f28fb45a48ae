package models

import (
	"time"

	"github.com/trademint/backend/pkg/types"
)

// User is a login credential plus profile. Role is fixed at registration.
type User struct {
	ID       string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email    string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Password string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Role     types.Role `gorm:"column:role;type:varchar(16);not null" json:"role"`

	// Profile fields. PAN and phone are immutable once set.
	Name   string `gorm:"column:name;type:varchar(255)" json:"name"`
	Phone  string `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Pan    string `gorm:"column:pan;type:varchar(10)" json:"pan"`
	Dob    string `gorm:"column:dob;type:varchar(10)" json:"dob"`
	Gender string `gorm:"column:gender;type:varchar(16)" json:"gender"`

	TermsAccepted   bool       `gorm:"column:terms_accepted;default:false" json:"terms_accepted"`
	TermsAcceptedAt *time.Time `gorm:"column:terms_accepted_at;default:null" json:"terms_accepted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
