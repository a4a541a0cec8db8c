package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yeremiapane/kafe-cerita-bot/models"
	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

// Catalog adalah sumber menu untuk percakapan.
type Catalog interface {
	GetAllItems() ([]models.Menu, error)
	GetInfoText() (string, error)
	GetCategories() ([]models.MenuCategory, error)
}

// RenderMenu menyusun daftar menu per kategori beserta info pemesanan.
func RenderMenu(cafeName string, categories []models.MenuCategory, items []models.Menu, info string) string {
	sorted := make([]models.MenuCategory, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	byCategory := make(map[uint][]models.Menu)
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "☕ *Menu %s* ☕\n\n", cafeName)
	for _, category := range sorted {
		fmt.Fprintf(&b, "*%s* %s:\n", category.Name, category.Emoji)
		categoryItems := byCategory[category.ID]
		if len(categoryItems) == 0 {
			fmt.Fprintf(&b, "_Belum ada menu %s._\n", strings.ToLower(category.Name))
		}
		for _, item := range categoryItems {
			fmt.Fprintf(&b, "• %s: %s", item.Name, utils.FormatCurrencyIDR(item.Price))
			if item.Description != "" {
				fmt.Fprintf(&b, "\n  _%s_", item.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "*Info Pemesanan* ℹ️:\n%s", info)
	return b.String()
}
