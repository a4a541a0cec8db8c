package nlp

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yeremiapane/kafe-cerita-bot/models"
)

// ItemSource menyediakan seluruh item katalog (semua kategori digabung).
type ItemSource interface {
	GetAllItems() ([]models.Menu, error)
}

// EntityExtractor mengambil item menu dan jumlah dari teks bebas.
type EntityExtractor interface {
	FindItem(text string) (*models.Menu, error)
	FindQuantity(text string) (int, bool)
}

// MaxQuantity adalah batas jumlah porsi untuk satu item dalam pesanan.
const MaxQuantity = 100

var (
	wholeNumberPattern = regexp.MustCompile(`\b\d+\b`)
	anyNumberPattern   = regexp.MustCompile(`\d+`)
)

// numberWords: satu..sepuluh
var numberWords = map[string]int{
	"satu": 1, "dua": 2, "tiga": 3, "empat": 4, "lima": 5,
	"enam": 6, "tujuh": 7, "delapan": 8, "sembilan": 9, "sepuluh": 10,
}

type KeywordExtractor struct {
	catalog ItemSource
}

func NewKeywordExtractor(catalog ItemSource) *KeywordExtractor {
	return &KeywordExtractor{catalog: catalog}
}

// FindItem mencari item dengan nama terpanjang yang muncul di teks.
// Nama yang merupakan bagian dari nama lain yang sudah cocok diabaikan,
// sehingga "Kopi" tidak ikut tertangkap di dalam "Es Kopi Susu".
func (ke *KeywordExtractor) FindItem(text string) (*models.Menu, error) {
	processed := Normalize(text)
	if processed == "" {
		return nil, nil
	}

	items, err := ke.catalog.GetAllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	candidates := make([]models.Menu, len(items))
	copy(candidates, items)
	sort.SliceStable(candidates, func(i, j int) bool {
		return utf8.RuneCountInString(candidates[i].Name) > utf8.RuneCountInString(candidates[j].Name)
	})

	var accepted []string
	var found []models.Menu
	for _, item := range candidates {
		name := Normalize(item.Name)
		if name == "" || !strings.Contains(processed, name) {
			continue
		}
		shadowed := false
		for _, longer := range accepted {
			if strings.Contains(longer, name) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			accepted = append(accepted, name)
			found = append(found, item)
		}
	}

	if len(found) > 0 {
		return &found[0], nil
	}
	return findByPartialName(processed, candidates), nil
}

// minPartialRunes adalah panjang minimum potongan teks untuk pencocokan sebagian nama.
const minPartialRunes = 4

// findByPartialName dipakai bila tidak ada nama lengkap yang muncul di teks.
// Potongan kata terpanjang dari teks dicocokkan ke nama item; bila beberapa item
// cocok, nama terpendek yang dipilih karena paling dekat dengan potongan tersebut.
func findByPartialName(processed string, candidates []models.Menu) *models.Menu {
	words := strings.Fields(processed)
	for size := len(words); size >= 1; size-- {
		for start := 0; start+size <= len(words); start++ {
			phrase := strings.Join(words[start:start+size], " ")
			if utf8.RuneCountInString(strings.ReplaceAll(phrase, " ", "")) < minPartialRunes {
				continue
			}
			var best *models.Menu
			for i := range candidates {
				name := " " + Normalize(candidates[i].Name) + " "
				if !strings.Contains(name, " "+phrase+" ") {
					continue
				}
				if best == nil || utf8.RuneCountInString(candidates[i].Name) < utf8.RuneCountInString(best.Name) {
					best = &candidates[i]
				}
			}
			if best != nil {
				return best
			}
		}
	}
	return nil
}

// FindQuantity mengambil angka pertama dari teks, atau kata bilangan satu..sepuluh.
func (ke *KeywordExtractor) FindQuantity(text string) (int, bool) {
	return FindQuantity(text)
}

func FindQuantity(text string) (int, bool) {
	processed := Normalize(text)
	if processed == "" {
		return 0, false
	}

	match := wholeNumberPattern.FindString(processed)
	if match == "" {
		match = anyNumberPattern.FindString(processed)
	}
	if match != "" {
		// angka di luar 1..MaxQuantity (termasuk yang terlalu besar untuk int) tidak valid
		n, err := strconv.Atoi(match)
		if err != nil || n <= 0 || n > MaxQuantity {
			return 0, false
		}
		return n, true
	}

	for _, word := range strings.Fields(processed) {
		if n, ok := numberWords[word]; ok {
			return n, true
		}
	}
	return 0, false
}
