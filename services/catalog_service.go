package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/kafe-cerita-bot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMenuNotFound      = errors.New("menu item not found")
	ErrCategoryNotFound  = errors.New("menu category not found")
	ErrDuplicateMenuName = errors.New("menu item with the same name already exists in this category")
	ErrInvalidMenu       = errors.New("menu name must not be empty and price must be greater than zero")
	ErrEmptyInfoText     = errors.New("order info text must not be empty")
)

// DefaultInfoText dipakai bila info pemesanan belum pernah diisi
const DefaultInfoText = "Informasi pemesanan tidak tersedia."

// MenuInput adalah data item baru dari admin
type MenuInput struct {
	CategoryKey string `json:"category_key" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Price       int64  `json:"price" binding:"required"`
	Description string `json:"description"`
}

// MenuUpdate hanya mengubah field yang tidak nil
type MenuUpdate struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	Description *string `json:"description"`
}

// CatalogService mengelola menu kafe dan teks info pemesanan
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService membuat instance baru CatalogService
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// GenerateMenuID menghasilkan ID seperti "E_1A2B3C" dari huruf pertama kategori
func GenerateMenuID(categoryKey string) string {
	prefix := "ITEM"
	if categoryKey != "" {
		prefix = strings.ToUpper(categoryKey[:1])
	}
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s", prefix, strings.ToUpper(hex[:6]))
}

// SeedDefaults membuat kategori bawaan dan info pemesanan bila belum ada
func (s *CatalogService) SeedDefaults() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, category := range models.DefaultCategories {
			c := category
			if err := tx.Where(models.MenuCategory{Key: c.Key}).FirstOrCreate(&c).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.Key, err)
			}
		}

		setting := models.Setting{Key: models.SettingOrderInfo, Value: DefaultInfoText}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to seed order info: %w", err)
		}
		return nil
	})
}

// GetCategories mendapatkan semua kategori urut tampilan
func (s *CatalogService) GetCategories() ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	if err := s.db.Order("sort_order, id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

// GetCategoryByKey mendapatkan kategori berdasarkan key, contoh "es_kopi"
func (s *CatalogService) GetCategoryByKey(key string) (*models.MenuCategory, error) {
	var category models.MenuCategory
	err := s.db.Where("`key` = ?", strings.ToLower(strings.TrimSpace(key))).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetAllItems mendapatkan seluruh item dari semua kategori
func (s *CatalogService) GetAllItems() ([]models.Menu, error) {
	var items []models.Menu
	err := s.db.Preload("Category").
		Order("category_id, created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	return items, nil
}

// GetItemsByCategory mendapatkan item dalam satu kategori
func (s *CatalogService) GetItemsByCategory(key string) ([]models.Menu, error) {
	category, err := s.GetCategoryByKey(key)
	if err != nil {
		return nil, err
	}

	var items []models.Menu
	err = s.db.Preload("Category").
		Where("category_id = ?", category.ID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menu for %s: %w", key, err)
	}
	return items, nil
}

// GetItem mendapatkan item berdasarkan ID
func (s *CatalogService) GetItem(id string) (*models.Menu, error) {
	var item models.Menu
	err := s.db.Preload("Category").First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// nameTaken memeriksa nama item (tanpa beda huruf besar/kecil) dalam satu kategori
func nameTaken(tx *gorm.DB, categoryID uint, name, exceptID string) (bool, error) {
	var count int64
	query := tx.Model(&models.Menu{}).
		Where("category_id = ? AND LOWER(name) = ?", categoryID, strings.ToLower(name))
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddItem menambahkan item baru ke kategori
func (s *CatalogService) AddItem(input MenuInput) (*models.Menu, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Price <= 0 {
		return nil, ErrInvalidMenu
	}

	category, err := s.GetCategoryByKey(input.CategoryKey)
	if err != nil {
		return nil, err
	}

	item := models.Menu{
		ID:          GenerateMenuID(category.Key),
		CategoryID:  category.ID,
		Name:        name,
		Price:       input.Price,
		Description: strings.TrimSpace(input.Description),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, category.ID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateMenuName
		}
		return tx.Omit(clause.Associations).Create(&item).Error
	})
	if err != nil {
		return nil, err
	}

	item.Category = *category
	return &item, nil
}

// UpdateItem memperbarui item yang ada berdasarkan ID
func (s *CatalogService) UpdateItem(id string, update MenuUpdate) (*models.Menu, error) {
	var updated models.Menu
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.Menu
		err := tx.First(&item, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuNotFound
		}
		if err != nil {
			return err
		}

		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return ErrInvalidMenu
			}
			if !strings.EqualFold(name, item.Name) {
				taken, err := nameTaken(tx, item.CategoryID, name, item.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrDuplicateMenuName
				}
			}
			item.Name = name
		}
		if update.Price != nil {
			if *update.Price <= 0 {
				return ErrInvalidMenu
			}
			item.Price = *update.Price
		}
		if update.Description != nil {
			item.Description = strings.TrimSpace(*update.Description)
		}

		if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetItem(updated.ID)
}

// DeleteItem menghapus item berdasarkan ID
func (s *CatalogService) DeleteItem(id string) error {
	result := s.db.Delete(&models.Menu{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMenuNotFound
	}
	return nil
}

// GetInfoText mendapatkan teks info pemesanan
func (s *CatalogService) GetInfoText() (string, error) {
	var setting models.Setting
	err := s.db.First(&setting, "`key` = ?", models.SettingOrderInfo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultInfoText, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load order info: %w", err)
	}
	return setting.Value, nil
}

// UpdateInfoText memperbarui teks info pemesanan
func (s *CatalogService) UpdateInfoText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInfoText
	}
	setting := models.Setting{Key: models.SettingOrderInfo, Value: text}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
