package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/kafe-cerita-bot/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.MenuCategory{}, &models.Menu{}, &models.Setting{},
		&models.BotOrder{}, &models.BotOrderItem{},
	))
	return db
}

func setupCatalog(t *testing.T) *CatalogService {
	t.Helper()
	catalog := NewCatalogService(setupTestDB(t))
	require.NoError(t, catalog.SeedDefaults())
	return catalog
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	catalog := setupCatalog(t)
	require.NoError(t, catalog.SeedDefaults())

	categories, err := catalog.GetCategories()
	require.NoError(t, err)
	require.Len(t, categories, len(models.DefaultCategories))
	assert.Equal(t, "es_kopi", categories[0].Key)
	assert.Equal(t, "pastry", categories[len(categories)-1].Key)

	info, err := catalog.GetInfoText()
	require.NoError(t, err)
	assert.Equal(t, DefaultInfoText, info)
}

func TestGenerateMenuID(t *testing.T) {
	id := GenerateMenuID("es_kopi")
	assert.Regexp(t, regexp.MustCompile(`^E_[0-9A-F]{6}$`), id)
	assert.NotEqual(t, id, GenerateMenuID("es_kopi"))
}

func TestAddItem(t *testing.T) {
	catalog := setupCatalog(t)

	item, err := catalog.AddItem(MenuInput{CategoryKey: "es_kopi", Name: " Es Kopi Susu ", Price: 18000, Description: "Gula aren"})
	require.NoError(t, err)
	assert.Equal(t, "Es Kopi Susu", item.Name)
	assert.True(t, strings.HasPrefix(item.ID, "E_"))
	assert.Equal(t, "es_kopi", item.Category.Key)

	_, err = catalog.AddItem(MenuInput{CategoryKey: "es_kopi", Name: "es kopi susu", Price: 20000})
	assert.ErrorIs(t, err, ErrDuplicateMenuName)

	// nama sama di kategori lain diperbolehkan
	_, err = catalog.AddItem(MenuInput{CategoryKey: "non_kopi", Name: "Es Kopi Susu", Price: 20000})
	assert.NoError(t, err)

	_, err = catalog.AddItem(MenuInput{CategoryKey: "es_kopi", Name: "Gratis", Price: 0})
	assert.ErrorIs(t, err, ErrInvalidMenu)

	_, err = catalog.AddItem(MenuInput{CategoryKey: "es_kopi", Name: "  ", Price: 1000})
	assert.ErrorIs(t, err, ErrInvalidMenu)

	_, err = catalog.AddItem(MenuInput{CategoryKey: "makanan_berat", Name: "Nasi", Price: 1000})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	items, err := catalog.GetAllItems()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestUpdateItem(t *testing.T) {
	catalog := setupCatalog(t)
	latte, err := catalog.AddItem(MenuInput{CategoryKey: "espresso_based", Name: "Cafe Latte", Price: 25000})
	require.NoError(t, err)
	_, err = catalog.AddItem(MenuInput{CategoryKey: "espresso_based", Name: "Americano", Price: 20000})
	require.NoError(t, err)

	name := "Americano"
	_, err = catalog.UpdateItem(latte.ID, MenuUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrDuplicateMenuName)

	price := int64(27000)
	desc := "Double shot"
	updated, err := catalog.UpdateItem(latte.ID, MenuUpdate{Price: &price, Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Cafe Latte", updated.Name)
	assert.Equal(t, int64(27000), updated.Price)
	assert.Equal(t, "Double shot", updated.Description)

	// ganti huruf besar/kecil nama sendiri tidak dianggap duplikat
	lower := "cafe latte"
	updated, err = catalog.UpdateItem(latte.ID, MenuUpdate{Name: &lower})
	require.NoError(t, err)
	assert.Equal(t, "cafe latte", updated.Name)

	zero := int64(0)
	_, err = catalog.UpdateItem(latte.ID, MenuUpdate{Price: &zero})
	assert.ErrorIs(t, err, ErrInvalidMenu)

	_, err = catalog.UpdateItem("X_000000", MenuUpdate{Price: &price})
	assert.ErrorIs(t, err, ErrMenuNotFound)
}

func TestDeleteItem(t *testing.T) {
	catalog := setupCatalog(t)
	item, err := catalog.AddItem(MenuInput{CategoryKey: "pastry", Name: "Croissant", Price: 22000})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteItem(item.ID))
	assert.ErrorIs(t, catalog.DeleteItem(item.ID), ErrMenuNotFound)

	_, err = catalog.GetItem(item.ID)
	assert.ErrorIs(t, err, ErrMenuNotFound)
}

func TestInfoText(t *testing.T) {
	catalog := setupCatalog(t)

	assert.ErrorIs(t, catalog.UpdateInfoText("   "), ErrEmptyInfoText)
	require.NoError(t, catalog.UpdateInfoText("Buka 08.00 - 22.00"))
	require.NoError(t, catalog.UpdateInfoText("Buka 07.00 - 22.00"))

	info, err := catalog.GetInfoText()
	require.NoError(t, err)
	assert.Equal(t, "Buka 07.00 - 22.00", info)
}

const sampleMenuFile = `{
    "es_kopi": [
        {"id": "E_AAA111", "nama": "Es Kopi Susu", "harga": 18000, "deskripsi": "Gula aren"}
    ],
    "pastry": [
        {"id": "P_BBB222", "nama": "Croissant", "harga": 22000, "deskripsi": ""},
        {"nama": "Pain au Chocolat", "harga": 26000, "deskripsi": ""}
    ],
    "musiman": [
        {"id": "M_CCC333", "nama": "Es Cendol Kopi", "harga": 24000, "deskripsi": ""}
    ],
    "info_pemesanan": "Pesan lewat chat, ambil di bar."
}`

func TestImportAndExportJSON(t *testing.T) {
	catalog := setupCatalog(t)

	result, err := catalog.ImportJSON(strings.NewReader(sampleMenuFile))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Categories)
	assert.Equal(t, 4, result.Items)
	assert.True(t, result.InfoText)

	seasonal, err := catalog.GetItemsByCategory("musiman")
	require.NoError(t, err)
	require.Len(t, seasonal, 1)
	assert.Equal(t, "Musiman", seasonal[0].Category.Name)

	// import ulang menimpa item dengan ID yang sama
	_, err = catalog.ImportJSON(strings.NewReader(`{"es_kopi": [{"id": "E_AAA111", "nama": "Es Kopi Susu", "harga": 19000, "deskripsi": ""}]}`))
	require.NoError(t, err)
	item, err := catalog.GetItem("E_AAA111")
	require.NoError(t, err)
	assert.Equal(t, int64(19000), item.Price)

	var buf bytes.Buffer
	require.NoError(t, catalog.ExportJSON(&buf))

	var exported map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Contains(t, exported, "non_kopi")
	assert.Contains(t, exported, "musiman")
	assert.JSONEq(t, `"Pesan lewat chat, ambil di bar."`, string(exported["info_pemesanan"]))

	var pastry []catalogFileItem
	require.NoError(t, json.Unmarshal(exported["pastry"], &pastry))
	assert.Len(t, pastry, 2)
}

func TestImportJSON_RejectsInvalidItem(t *testing.T) {
	catalog := setupCatalog(t)

	_, err := catalog.ImportJSON(strings.NewReader(`{"es_kopi": [{"id": "E_1", "nama": "", "harga": 1000}]}`))
	assert.ErrorIs(t, err, ErrInvalidMenu)

	items, err := catalog.GetAllItems()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderLogService(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderLogService(db)

	order := &models.BotOrder{
		OrderNumber:   "KC240517-6789AB01",
		ChatUserID:    "123456789",
		CustomerName:  "Budi",
		DiningOption:  "dine_in",
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   36000,
		Items: []models.BotOrderItem{
			{MenuID: "E_AAA111", MenuName: "Es Kopi Susu", Quantity: 2, UnitPrice: 18000, Subtotal: 36000},
		},
	}
	require.NoError(t, orders.RecordOrder(context.Background(), order))
	assert.NotZero(t, order.ID)

	// nomor pesanan unik
	dup := *order
	dup.ID = 0
	dup.Items = nil
	assert.Error(t, orders.RecordOrder(context.Background(), &dup))

	found, err := orders.GetOrderByNumber("KC240517-6789AB01")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)

	list, err := orders.ListOrders(0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = orders.GetOrderByNumber("missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUserService(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	users := NewUserService(db)

	admin, created, err := users.EnsureAdmin("Admin@KafeCerita.id", "rahasia123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin@kafecerita.id", admin.Email)
	assert.NotEqual(t, "rahasia123", admin.Password)

	_, created, err = users.EnsureAdmin("admin@kafecerita.id", "lain")
	require.NoError(t, err)
	assert.False(t, created)

	found, err := users.Authenticate("admin@kafecerita.id", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	_, err = users.Authenticate("admin@kafecerita.id", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
