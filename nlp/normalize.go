// Package nlp berisi pencocokan kata kunci sederhana untuk bot pemesanan:
// klasifikasi intent dan ekstraksi item menu maupun jumlah dari teks bebas.
package nlp

import (
	"regexp"
	"strings"
)

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Normalize mengubah teks ke huruf kecil, membuang tanda baca, dan memangkas spasi.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = nonWordPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ContainsAny melaporkan apakah teks ternormalisasi memuat salah satu frasa (substring).
func ContainsAny(normalized string, phrases []string) bool {
	for _, phrase := range phrases {
		p := Normalize(phrase)
		if p != "" && strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}
