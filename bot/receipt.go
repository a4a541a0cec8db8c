package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/kafe-cerita-bot/utils"
)

// PreparationEstimate mengembalikan perkiraan waktu siap sesuai opsi makan.
func PreparationEstimate(order Order) string {
	switch {
	case order.DiningOption == DiningDineIn:
		return "sekitar 15 menit"
	case order.DiningOption == DiningTakeaway && order.TakeoutType == TakeoutPickup:
		return "sekitar 20 menit"
	}
	return "sesuai antrian"
}

func diningAnnotation(order Order) string {
	switch {
	case order.DiningOption == DiningDineIn:
		return "Makan di Tempat"
	case order.DiningOption == DiningTakeaway && order.TakeoutType == TakeoutPickup:
		return "Dibungkus (Ambil Sendiri)"
	}
	return ""
}

// RenderReceipt menyusun struk pesanan yang sudah memilih metode pembayaran.
func RenderReceipt(order Order, customerName, cafeName string, at time.Time) string {
	total := utils.FormatCurrencyIDR(order.TotalPrice)

	var b strings.Builder
	fmt.Fprintf(&b, "--- Struk Pesanan %s ---\n", cafeName)
	fmt.Fprintf(&b, "Nomor Pesanan: *%s*\n", order.OrderID)
	fmt.Fprintf(&b, "Tanggal: %s\n\n", at.Format("02-01-2006 15:04"))

	b.WriteString("Item Dipesan:\n")
	if len(order.LineItems) == 0 {
		b.WriteString("- Tidak ada item\n")
	}
	for _, li := range order.LineItems {
		fmt.Fprintf(&b, "- %dx %s\n", li.Quantity, li.Item.Name)
	}

	fmt.Fprintf(&b, "\nTotal Harga: *%s*\n", total)
	fmt.Fprintf(&b, "Metode Pembayaran: %s\n", order.PaymentMethod.Label())
	if annotation := diningAnnotation(order); annotation != "" {
		fmt.Fprintf(&b, "Opsi Makan: %s\n", annotation)
	}

	prep := PreparationEstimate(order)
	if order.PaymentMethod == PaymentEWallet {
		b.WriteString("\nStatus Pembayaran: *LUNAS (Simulasi)*\n")
		return fmt.Sprintf("Pembayaran via %s (simulasi) sebesar %s berhasil! 👍\n\n%s\nPesanan Anda akan siap dalam %s. Terima kasih sudah memesan, %s!",
			order.PaymentMethod.Label(), total, b.String(), prep, customerName)
	}

	b.WriteString("\nStatus Pembayaran: *Belum Dibayar*\n")
	return fmt.Sprintf("Baik, silakan lakukan pembayaran sebesar %s di kasir dengan menunjukkan Nomor Pesanan *%s*.\n\n%s\nPesanan akan disiapkan setelah pembayaran dan akan siap dalam %s. Terima kasih, %s!",
		total, order.OrderID, b.String(), prep, customerName)
}
