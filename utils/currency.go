package utils

import (
	"strconv"
	"strings"
)

// FormatCurrencyIDR memformat nominal Rupiah, contoh: 18000 -> "Rp 18.000"
func FormatCurrencyIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)

	// Tambahkan pemisah ribuan dari belakang
	var groups []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{digits[start:i]}, groups...)
	}

	return "Rp " + sign + strings.Join(groups, ".")
}
