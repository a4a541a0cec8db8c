package models

import "time"

// RoleAdmin adalah satu-satunya role yang boleh mengubah katalog,
// RoleBarista hanya membaca layar pesanan.
const (
	RoleAdmin   = "admin"
	RoleBarista = "barista"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Email     string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255); not null" json:"-"`
	Role      string    `gorm:"type:varchar(255); not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
