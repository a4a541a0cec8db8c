package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yeremiapane/kafe-cerita-bot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// catalogFileItem mengikuti format menu_data.json
type catalogFileItem struct {
	ID        string `json:"id"`
	Nama      string `json:"nama"`
	Harga     int64  `json:"harga"`
	Deskripsi string `json:"deskripsi"`
}

// ImportResult merangkum hasil import katalog
type ImportResult struct {
	Categories int  `json:"categories"`
	Items      int  `json:"items"`
	InfoText   bool `json:"info_text"`
}

// ImportJSON memuat katalog berformat menu_data.json. Item dengan ID yang sama ditimpa,
// kategori yang belum dikenal dibuat di urutan terakhir.
func (s *CatalogService) ImportJSON(r io.Reader) (ImportResult, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return ImportResult{}, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	var result ImportResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range raw {
			if key == models.SettingOrderInfo {
				var info string
				if err := json.Unmarshal(value, &info); err != nil {
					return fmt.Errorf("invalid %s: %w", key, err)
				}
				if strings.TrimSpace(info) == "" {
					continue
				}
				setting := models.Setting{Key: models.SettingOrderInfo, Value: info}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "key"}},
					DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
				}).Create(&setting).Error
				if err != nil {
					return err
				}
				result.InfoText = true
				continue
			}

			var entries []catalogFileItem
			if err := json.Unmarshal(value, &entries); err != nil {
				return fmt.Errorf("invalid category %s: %w", key, err)
			}

			category, err := importCategory(tx, key)
			if err != nil {
				return err
			}
			result.Categories++

			for _, entry := range entries {
				name := strings.TrimSpace(entry.Nama)
				if name == "" || entry.Harga < 0 {
					return fmt.Errorf("%w: %q in %s", ErrInvalidMenu, entry.Nama, key)
				}
				id := entry.ID
				if id == "" {
					id = GenerateMenuID(category.Key)
				}
				item := models.Menu{
					ID:          id,
					CategoryID:  category.ID,
					Name:        name,
					Price:       entry.Harga,
					Description: entry.Deskripsi,
				}
				if err := tx.Omit(clause.Associations).Save(&item).Error; err != nil {
					return fmt.Errorf("failed to save %s: %w", id, err)
				}
				result.Items++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func importCategory(tx *gorm.DB, key string) (*models.MenuCategory, error) {
	key = strings.ToLower(strings.TrimSpace(key))

	var category models.MenuCategory
	err := tx.Where("`key` = ?", key).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var maxOrder int
	if err := tx.Model(&models.MenuCategory{}).Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder).Error; err != nil {
		return nil, err
	}
	category = models.MenuCategory{
		Key:       key,
		Name:      categoryTitle(key),
		SortOrder: maxOrder + 1,
	}
	if err := tx.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", key, err)
	}
	return &category, nil
}

// categoryTitle mengubah "non_kopi" menjadi "Non Kopi"
func categoryTitle(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ExportJSON menulis katalog dalam format menu_data.json
func (s *CatalogService) ExportJSON(w io.Writer) error {
	categories, err := s.GetCategories()
	if err != nil {
		return err
	}
	items, err := s.GetAllItems()
	if err != nil {
		return err
	}
	info, err := s.GetInfoText()
	if err != nil {
		return err
	}

	keys := make(map[uint]string, len(categories))
	out := make(map[string]interface{}, len(categories)+1)
	for _, category := range categories {
		keys[category.ID] = category.Key
		out[category.Key] = []catalogFileItem{}
	}
	for _, item := range items {
		key, ok := keys[item.CategoryID]
		if !ok {
			continue
		}
		out[key] = append(out[key].([]catalogFileItem), catalogFileItem{
			ID:        item.ID,
			Nama:      item.Name,
			Harga:     item.Price,
			Deskripsi: item.Description,
		})
	}
	out[models.SettingOrderInfo] = info

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}
