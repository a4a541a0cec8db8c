package models

import (
	"fmt"
	"time"
)

// Status pembayaran pesanan bot
const (
	PaymentStatusPaidSimulated = "paid_simulated"
	PaymentStatusUnpaid        = "unpaid"
)

// BotOrder adalah pesanan yang sudah selesai diproses lewat chat.
type BotOrder struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderNumber   string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	ChatUserID    string         `gorm:"type:varchar(64);index;not null" json:"chat_user_id"`
	CustomerName  string         `gorm:"type:varchar(255)" json:"customer_name"`
	DiningOption  string         `gorm:"type:varchar(20);not null" json:"dining_option"`
	TakeoutType   string         `gorm:"type:varchar(20)" json:"takeout_type,omitempty"`
	PaymentMethod string         `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus string         `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TotalAmount   int64          `gorm:"not null;default:0" json:"total_amount"`
	Items         []BotOrderItem `gorm:"foreignKey:BotOrderID" json:"items"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

// Label menghasilkan label singkat untuk layar barista
func (o *BotOrder) Label() string {
	return fmt.Sprintf("%s (%s)", o.OrderNumber, o.CustomerName)
}
