package nlp

import (
	"regexp"
	"strings"
)

type Intent string

const (
	IntentNone           Intent = ""
	IntentViewMenu       Intent = "view_menu"
	IntentAskPrice       Intent = "ask_price"
	IntentRequestOrder   Intent = "request_order"
	IntentGreeting       Intent = "greeting"
	IntentThanks         Intent = "thanks"
	IntentAskBotIdentity Intent = "ask_bot_identity"
	IntentConfirmYes     Intent = "confirm_yes"
	IntentConfirmNo      Intent = "confirm_no"
)

// IntentClassifier memetakan teks bebas ke salah satu intent yang dikenal.
type IntentClassifier interface {
	Classify(text string) (Intent, int)
}

type IntentRule struct {
	Intent  Intent
	Phrases []string
}

// DefaultIntentRules; urutan deklarasi menentukan pemenang saat skor seri.
var DefaultIntentRules = []IntentRule{
	{IntentViewMenu, []string{
		"menu", "daftar makanan", "daftar minuman", "list makanan", "list minuman",
		"apa aja menunya", "ada apa aja", "lihat menu", "tampilkan menu", "menu dong",
		"menu hari ini", "menunya apa", "kasih lihat menu", "bisa lihat menu",
		"bisa liat menu", "liatin menu", "makanannya apa aja", "minumannya apa aja",
		"menunya ada apa aja sih", "apa aja yang ada di menu", "menu apa aja yang ada",
		"kasi liat menu", "kasi tau menu", "kasih menu dong", "show me the menu",
		"show menu", "tampilkan daftar menu", "lihat daftar menu", "menu apa aja",
	}},
	{IntentAskPrice, []string{
		"harga", "berapa", "rp", "biaya", "harganya", "berapaan", "price",
		"berapa duitnya", "harganya berapa", "berapa ya", "berapa sih", "berapa rupiah",
		"tarif", "fee", "brp ya", "pinten nggih", "piro", "how much", "berapa ya harganya",
		"berapa harganya", "berapa sih harganya",
	}},
	{IntentRequestOrder, []string{
		"pesan", "order", "pemesanan", "cara pesan", "gimana pesannya", "mau pesan", "mau order",
		"beli", "saya mau", "bisa pesan", "bisa order", "order dong", "pesenin", "bisa beli",
		"pesan sekarang", "booking", "mau beli", "aku mau", "pesan yuk", "bisa booking",
		"mau order dong", "mau pesan dong", "gue mau order", "gue mau pesan", "aku pesen dong",
	}},
	{IntentGreeting, []string{
		"halo", "hai", "hi", "selamat pagi", "selamat siang", "selamat sore", "selamat malam",
		"pagi", "siang", "sore", "malam", "hei", "heii", "heyyo", "met pagi", "met siang",
		"met sore", "met malam", "hello", "konnichiwa", "ohayou", "konbanwa", "hallo", "haloo",
		"hey", "halo halo", "hai hai", "hi hi",
	}},
	{IntentThanks, []string{
		"makasih", "terima kasih", "thanks", "thank you", "nuhun", "suwun", "matur nuwun", "nuwun",
		"trims", "makasih ya", "thank u", "tengkyu", "makasii", "makasih banyak", "thx",
		"arigatou", "tenkyu", "makasih loh", "makasi banget", "makaci", "makacih", "ty", "trims ya",
		"thx ya", "thx bgt", "thank you so much", "thanks a lot", "thank you very much",
		"terima kasih banyak", "makasih banget loh", "makacihh ya",
	}},
	{IntentAskBotIdentity, []string{
		"kamu siapa", "ini siapa", "ini bot apa", "apa yang bisa kamu lakukan",
		"lu siapa", "siapa kamu", "bot apa ini", "bisa ngapain", "apa tugas kamu",
		"bot bisa apa", "kenalin dong", "fungsi kamu apa",
	}},
	{IntentConfirmYes, []string{
		"ya", "iya", "betul", "benar", "ok", "oke", "baik", "sip", "setuju", "lanjut", "mau",
		"yup", "yoi", "yo", "oke banget", "ya dong", "okelah", "boleh", "lets go", "gas",
		"gasskeun", "yuk", "cus", "oke siap", "yess", "iya dong", "oke sip", "oke deh",
		"oke aja", "oke yuk", "oke gas", "oke gasskeun", "oke lets go", "oke yuk gas",
		"boleh dong", "sip gas", "yuhuu",
	}},
	{IntentConfirmNo, []string{
		"tidak", "bukan", "jangan", "ga", "gak", "nggak", "batal", "cancel", "gak jadi",
		"tidak jadi", "enggak", "skip", "ga usah", "nggak deh", "nanti aja",
		"ga dulu", "nanti aja deh", "gajadi deh", "ga dulu deh", "skip dulu",
		"ntar aja ya", "gajadi ya", "ga jadi deh", "skip aja deh", "besok aja deh",
		"ga usah deh", "cancel aja deh", "nanti dulu",
	}},
}

type compiledPhrase struct {
	text      string
	wholeWord *regexp.Regexp
}

type compiledRule struct {
	intent  Intent
	phrases []compiledPhrase
}

// KeywordClassifier menilai intent dengan skor kata kunci:
// kecocokan kata utuh bernilai 2, kecocokan substring bernilai 1.
type KeywordClassifier struct {
	rules []compiledRule
}

func NewKeywordClassifier() *KeywordClassifier {
	return NewKeywordClassifierWithRules(DefaultIntentRules)
}

func NewKeywordClassifierWithRules(rules []IntentRule) *KeywordClassifier {
	kc := &KeywordClassifier{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		cr := compiledRule{intent: rule.Intent}
		for _, phrase := range rule.Phrases {
			p := Normalize(phrase)
			if p == "" {
				continue
			}
			cr.phrases = append(cr.phrases, compiledPhrase{
				text:      p,
				wholeWord: regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`),
			})
		}
		kc.rules = append(kc.rules, cr)
	}
	return kc
}

// Classify mengembalikan intent dengan skor tertinggi. Skor seri dimenangkan
// intent yang terdaftar lebih dulu; skor di bawah 1 berarti tidak ada intent.
func (kc *KeywordClassifier) Classify(text string) (Intent, int) {
	processed := Normalize(text)
	if processed == "" {
		return IntentNone, 0
	}

	best := IntentNone
	highest := 0
	for _, rule := range kc.rules {
		score := 0
		for _, phrase := range rule.phrases {
			if phrase.wholeWord.MatchString(processed) {
				score += 2
			} else if strings.Contains(processed, phrase.text) {
				score++
			}
		}
		if score > highest {
			highest = score
			best = rule.intent
		}
	}

	if highest < 1 {
		return IntentNone, 0
	}
	return best, highest
}
