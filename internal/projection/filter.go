package projection

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/dukerupert/liste/internal/catalog"
	"github.com/dukerupert/liste/internal/model"
)

// FilterBySearch keeps the items whose label contains query, ignoring case.
// An empty query keeps everything. Input order is preserved.
func FilterBySearch[T any](items []T, query string, label func(T) string) []T {
	out := make([]T, 0, len(items))
	if query == "" {
		return append(out, items...)
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for _, item := range items {
		if strings.Contains(fold.String(label(item)), needle) {
			out = append(out, item)
		}
	}
	return out
}

func shoppingLabel(it model.ShoppingItem) string { return it.Label }
func giftLabel(g model.GiftIdea) string { return g.Label }

func FilterShopping(items []model.ShoppingItem, query string) []model.ShoppingItem {
	return FilterBySearch(items, query, shoppingLabel)
}

func FilterGifts(gifts []model.GiftIdea, query string) []model.GiftIdea {
	return FilterBySearch(gifts, query, giftLabel)
}

// FilterOccasion keeps the gifts tagged with occasion. Empty or
// catalog.AllOccasions keeps everything.
func FilterOccasion(gifts []model.GiftIdea, occasion string) []model.GiftIdea {
	out := make([]model.GiftIdea, 0, len(gifts))
	if occasion == "" || occasion == catalog.AllOccasions {
		return append(out, gifts...)
	}
	for _, g := range gifts {
		if g.Occasion == occasion {
			out = append(out, g)
		}
	}
	return out
}
