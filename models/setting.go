package models

import "time"

// SettingOrderInfo menyimpan teks informasi pemesanan yang ditampilkan bot.
const SettingOrderInfo = "info_pemesanan"

type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
