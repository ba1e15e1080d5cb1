package projection

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dukerupert/liste/internal/model"
)

// Sort keys. The French aliases are the values the original client sent and
// are still accepted.
const (
	SortDate     = "date"
	SortLabel    = "label"
	SortAddedBy  = "added_by"
	SortStore    = "store"
	SortPrice    = "price"
	SortOccasion = "occasion"
)

var sortAliases = map[string]string{
	"nom":       SortLabel,
	"ajoutePar": SortAddedBy,
	"magasin":   SortStore,
	"prix":      SortPrice,
}

// DefaultLanguage drives string collation when the caller gives none.
var DefaultLanguage = language.French

// NormalizeShoppingSort maps key to a supported shopping sort key. Unknown
// keys fall back to SortDate.
func NormalizeShoppingSort(key string) string {
	if alias, ok := sortAliases[key]; ok {
		key = alias
	}
	switch key {
	case SortLabel, SortAddedBy, SortStore:
		return key
	default:
		return SortDate
	}
}

// NormalizeGiftSort maps key to a supported gift sort key. Unknown keys fall
// back to SortDate.
func NormalizeGiftSort(key string) string {
	if alias, ok := sortAliases[key]; ok {
		key = alias
	}
	switch key {
	case SortPrice, SortOccasion:
		return key
	default:
		return SortDate
	}
}

func newCollator(lang language.Tag) *collate.Collator {
	if lang == language.Und {
		lang = DefaultLanguage
	}
	return collate.New(lang)
}

// SortShopping returns a sorted copy of items. Date sorts newest first; the
// string keys sort ascending with lang collation. The sort is stable.
func SortShopping(items []model.ShoppingItem, key string, lang language.Tag) []model.ShoppingItem {
	out := slices.Clone(items)
	if out == nil {
		out = []model.ShoppingItem{}
	}

	switch NormalizeShoppingSort(key) {
	case SortLabel:
		col := newCollator(lang)
		slices.SortStableFunc(out, func(a, b model.ShoppingItem) int {
			return col.CompareString(a.Label, b.Label)
		})
	case SortAddedBy:
		col := newCollator(lang)
		slices.SortStableFunc(out, func(a, b model.ShoppingItem) int {
			return col.CompareString(a.AddedBy, b.AddedBy)
		})
	case SortStore:
		col := newCollator(lang)
		slices.SortStableFunc(out, func(a, b model.ShoppingItem) int {
			return col.CompareString(a.Store, b.Store)
		})
	default:
		slices.SortStableFunc(out, func(a, b model.ShoppingItem) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
	}
	return out
}

// SortGifts returns a sorted copy of gifts. Date sorts newest first, price
// highest first (see ParsePrice), occasion ascending with lang collation.
func SortGifts(gifts []model.GiftIdea, key string, lang language.Tag) []model.GiftIdea {
	out := slices.Clone(gifts)
	if out == nil {
		out = []model.GiftIdea{}
	}

	switch NormalizeGiftSort(key) {
	case SortPrice:
		slices.SortStableFunc(out, func(a, b model.GiftIdea) int {
			return cmp.Compare(ParsePrice(b.EstimatedPrice), ParsePrice(a.EstimatedPrice))
		})
	case SortOccasion:
		col := newCollator(lang)
		slices.SortStableFunc(out, func(a, b model.GiftIdea) int {
			return col.CompareString(a.Occasion, b.Occasion)
		})
	default:
		slices.SortStableFunc(out, func(a, b model.GiftIdea) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
	}
	return out
}

// ParsePrice reads the leading number of a free-text price such as "20",
// "12,50 €" or "15€". A comma is accepted as the decimal separator. Anything
// without a leading number, including "Non défini", is 0.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)

	end := 0
	seenDigit, seenSep := false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '.' || c == ',') && !seenSep:
			seenSep = true
		case (c == '-' || c == '+') && end == 0:
		default:
			break scan
		}
		end++
	}
	if !seenDigit {
		return 0
	}

	num := strings.TrimRight(strings.Replace(s[:end], ",", ".", 1), ".")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
