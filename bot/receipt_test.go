package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kafe-cerita-bot/models"
)

func TestRenderReceipt_EWalletDineIn(t *testing.T) {
	order := Order{OrderID: "KC240517-6789AB01", DiningOption: DiningDineIn, PaymentMethod: PaymentEWallet}
	require.NoError(t, order.AddLineItem(esKopiSusu, 2))
	at := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

	receipt := RenderReceipt(order, "Budi", "Kafe Cerita", at)

	assert.Contains(t, receipt, "--- Struk Pesanan Kafe Cerita ---")
	assert.Contains(t, receipt, "Nomor Pesanan: *KC240517-6789AB01*")
	assert.Contains(t, receipt, "Tanggal: 17-05-2024 09:30")
	assert.Contains(t, receipt, "- 2x Es Kopi Susu")
	assert.Contains(t, receipt, "Total Harga: *Rp 36.000*")
	assert.Contains(t, receipt, "Opsi Makan: Makan di Tempat")
	assert.Contains(t, receipt, "LUNAS (Simulasi)")
	assert.Contains(t, receipt, "sekitar 15 menit")
}

func TestRenderReceipt_CashPickup(t *testing.T) {
	order := Order{OrderID: "KC240517-6789AB01", DiningOption: DiningTakeaway, TakeoutType: TakeoutPickup, PaymentMethod: PaymentCash}
	require.NoError(t, order.AddLineItem(esKopiSusu, 1))

	receipt := RenderReceipt(order, "Budi", "Kafe Cerita", time.Now())

	assert.Contains(t, receipt, "Opsi Makan: Dibungkus (Ambil Sendiri)")
	assert.Contains(t, receipt, "Belum Dibayar")
	assert.Contains(t, receipt, "di kasir")
	assert.Contains(t, receipt, "sekitar 20 menit")
	assert.NotContains(t, receipt, "LUNAS")
}

func TestPreparationEstimate(t *testing.T) {
	assert.Equal(t, "sekitar 15 menit", PreparationEstimate(Order{DiningOption: DiningDineIn}))
	assert.Equal(t, "sekitar 20 menit", PreparationEstimate(Order{DiningOption: DiningTakeaway, TakeoutType: TakeoutPickup}))
	assert.Equal(t, "sesuai antrian", PreparationEstimate(Order{DiningOption: DiningTakeaway}))
}

func TestRenderMenu_GroupsByCategoryOrder(t *testing.T) {
	categories := []models.MenuCategory{
		{ID: 2, Name: "Pastry", Emoji: "🥐", SortOrder: 6},
		{ID: 1, Name: "Es Kopi", Emoji: "☕", SortOrder: 1},
	}
	items := []models.Menu{
		{ID: "P_1", CategoryID: 2, Name: "Croissant", Price: 22000, Description: "Mentega"},
	}

	menu := RenderMenu("Kafe Cerita", categories, items, "Pesan lewat chat.")

	assert.Contains(t, menu, "☕ *Menu Kafe Cerita* ☕")
	assert.Contains(t, menu, "_Belum ada menu es kopi._")
	assert.Contains(t, menu, "• Croissant: Rp 22.000\n  _Mentega_")
	assert.Less(t, strings.Index(menu, "*Es Kopi*"), strings.Index(menu, "*Pastry*"))
	assert.Contains(t, menu, "*Info Pemesanan* ℹ️:\nPesan lewat chat.")
}

