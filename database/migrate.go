package database

import (
	"fmt"

	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
	"gorm.io/gorm"
)

// Models adalah seluruh tabel yang dikelola aplikasi
var Models = []interface{}{
	&models.User{},
	&models.MenuCategory{},
	&models.Menu{},
	&models.Setting{},
	&models.BotOrder{},
	&models.BotOrderItem{},
}

// AutoMigrate membuat atau memperbarui skema tabel
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}
	if utils.InfoLogger != nil {
		utils.InfoLogger.Println("AutoMigrate completed.")
	}
	return nil
}
