package models

import "time"

// Menu adalah satu item katalog kafe. ID berbentuk "<inisial kategori>_<6 hex>", contoh "E_1A2B3C".
type Menu struct {
	ID          string       `gorm:"primaryKey;type:varchar(32)" json:"id"`
	CategoryID  uint         `gorm:"not null" json:"category_id"`
	Category    MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Name        string       `gorm:"type:varchar(255); not null" json:"name"`
	Price       int64        `gorm:"not null;default:0" json:"price"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}
