package models

import (
	"time"
)

type BotOrderItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BotOrderID uint   `gorm:"not null;index" json:"bot_order_id"`
	MenuID     string `gorm:"type:varchar(32);not null" json:"menu_id"`
	// Nama dan harga disalin agar riwayat tidak berubah saat katalog diedit
	MenuName  string    `gorm:"type:varchar(255);not null" json:"menu_name"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Subtotal  int64     `gorm:"not null" json:"subtotal"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
