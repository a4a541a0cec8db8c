package models

import "time"

type MenuCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(50);unique;not null" json:"key"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Emoji     string    `gorm:"type:varchar(16)" json:"emoji"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// DefaultCategories adalah kategori bawaan kafe, urut sesuai tampilan menu.
var DefaultCategories = []MenuCategory{
	{Key: "es_kopi", Name: "Es Kopi", Emoji: "☕", SortOrder: 1},
	{Key: "non_kopi", Name: "Non Kopi", Emoji: "🍵", SortOrder: 2},
	{Key: "espresso_based", Name: "Espresso Based", Emoji: "🫕", SortOrder: 3},
	{Key: "refreshment", Name: "Refreshment", Emoji: "🍸", SortOrder: 4},
	{Key: "others", Name: "Others", Emoji: "🥤", SortOrder: 5},
	{Key: "pastry", Name: "Pastry", Emoji: "🥐", SortOrder: 6},
}
