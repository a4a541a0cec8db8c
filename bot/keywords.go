package bot

import "github.com/yeremiapane/kafe-cerita-bot/nlp"

var (
	// referentialKeywords menandakan user merujuk item yang terakhir ditanyakan.
	referentialKeywords = []string{
		"itu", "item itu", "item tersebut", "yang tadi", "yang barusan", "ini",
		"pesan", "order", "mau itu", "beli itu",
	}

	finishKeywords = []string{"selesai", "tidak", "enggak", "nggak", "cukup", "lanjut", "bayar", "checkout"}
)

type choice[T any] struct {
	value   T
	phrases []string
}

// Urutan pilihan menentukan pemenang saat teks cocok dengan lebih dari satu pilihan.
var (
	diningChoices = []choice[DiningOption]{
		{DiningDineIn, []string{"makan di tempat", "di tempat", "dine in", "disini", "di sini"}},
		{DiningTakeaway, []string{"bungkus", "dibungkus", "take away", "takeaway", "bawa pulang"}},
	}

	takeoutChoices = []choice[TakeoutType]{
		{TakeoutPickup, []string{"ambil sendiri", "pickup", "self pickup", "diambil", "jemput"}},
		{TakeoutDelivery, []string{"delivery", "diantar", "kirim", "anter"}},
	}

	paymentChoices = []choice[PaymentMethod]{
		{PaymentEWallet, []string{"e-wallet", "wallet", "qris", "gopay", "ovo", "dana", "linkaja", "ewalet", "dompet digital"}},
		{PaymentCash, []string{"cash", "kasir", "tunai", "kontan", "bayar di kasir"}},
	}
)

func pick[T any](normalized string, choices []choice[T]) (T, bool) {
	for _, c := range choices {
		if nlp.ContainsAny(normalized, c.phrases) {
			return c.value, true
		}
	}
	var zero T
	return zero, false
}
