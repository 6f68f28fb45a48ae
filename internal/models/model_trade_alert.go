package models

import (
	"time"

	"github.com/trademint/backend/pkg/types"
)

// TradeAlert is one alert pushed by a trader to a service's subscribers.
// Delivery transport is external; the row is the audit trail and the source
// for client-facing alert feeds.
type TradeAlert struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ServiceID string    `gorm:"column:service_id;type:uuid;not null;index" json:"service_id"`
	TraderID  string    `gorm:"column:trader_id;type:uuid;not null;index" json:"trader_id"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	SentAt    time.Time `gorm:"column:sent_at;not null" json:"sent_at"`

	// Optional structured trade details kept for the audit trail.
	StockSymbol string            `gorm:"column:stock_symbol;type:varchar(32)" json:"stock_symbol,omitempty"`
	Action      types.AlertAction `gorm:"column:action;type:varchar(8)" json:"action,omitempty"`
	TargetPrice string            `gorm:"column:target_price;type:varchar(32)" json:"target_price,omitempty"`
	StopLoss    string            `gorm:"column:stop_loss;type:varchar(32)" json:"stop_loss,omitempty"`
}

func (TradeAlert) TableName() string {
	return "trade_alerts"
}
