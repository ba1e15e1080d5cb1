package projection

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"

	"github.com/dukerupert/liste/internal/model"
)

const baseTitle = "Liste de courses"

// Config is the configuration a projection depends on.
type Config struct {
	Stores   []string
	Language language.Tag
}

// ShoppingQuery carries the caller's current controls and preferences.
type ShoppingQuery struct {
	Search    string
	Sort      string
	Collapsed []string
}

type StoreGroup struct {
	Store     string               `json:"store"`
	Collapsed bool                 `json:"collapsed"`
	Items     []model.ShoppingItem `json:"items"`
}

// ShoppingView is everything the shopping screen renders.
type ShoppingView struct {
	Sort         string               `json:"sort"`
	Pending      []StoreGroup         `json:"pending"`
	Done         []model.ShoppingItem `json:"done"`
	PendingCount int                  `json:"pending_count"`
	DoneCount    int                  `json:"done_count"`
	UrgentCount  int                  `json:"urgent_count"`
	Title        string               `json:"title"`
}

// BuildShoppingView runs the full pipeline over a shopping snapshot. Store
// groups left empty by the search are omitted. Title counts urgent pending
// items over the whole snapshot, regardless of the search.
func BuildShoppingView(items []model.ShoppingItem, q ShoppingQuery, cfg Config) ShoppingView {
	sortKey := NormalizeShoppingSort(q.Sort)
	sorted := SortShopping(FilterShopping(items, q.Search), sortKey, cfg.Language)
	parts := PartitionByCompletion(sorted)

	groups := NonEmpty(GroupByStore(parts.Pending, cfg.Stores))
	pending := make([]StoreGroup, 0, len(groups))
	for _, g := range groups {
		pending = append(pending, StoreGroup{
			Store:     g.Key,
			Collapsed: slices.Contains(q.Collapsed, g.Key),
			Items:     g.Items,
		})
	}

	return ShoppingView{
		Sort:         sortKey,
		Pending:      pending,
		Done:         parts.Done,
		PendingCount: len(parts.Pending),
		DoneCount:    len(parts.Done),
		UrgentCount:  CountUrgentPending(parts.Pending),
		Title:        Title(CountUrgentPending(PartitionByCompletion(items).Pending)),
	}
}

// Title is the document title for the given number of urgent pending items.
func Title(urgent int) string {
	switch {
	case urgent <= 0:
		return baseTitle
	case urgent == 1:
		return fmt.Sprintf("(1 urgent) %s", baseTitle)
	default:
		return fmt.Sprintf("(%d urgents) %s", urgent, baseTitle)
	}
}

type GiftQuery struct {
	Search   string
	Sort     string
	Occasion string
}

// GiftView is everything the gift screen renders: ideas grouped by recipient.
type GiftView struct {
	Sort           string                  `json:"sort"`
	Groups         []Group[model.GiftIdea] `json:"groups"`
	Count          int                     `json:"count"`
	PurchasedCount int                     `json:"purchased_count"`
}

func BuildGiftView(gifts []model.GiftIdea, q GiftQuery, cfg Config) GiftView {
	sortKey := NormalizeGiftSort(q.Sort)
	filtered := FilterOccasion(FilterGifts(gifts, q.Search), q.Occasion)
	sorted := SortGifts(filtered, sortKey, cfg.Language)

	return GiftView{
		Sort:           sortKey,
		Groups:         NonEmpty(GroupByRecipient(sorted)),
		Count:          len(sorted),
		PurchasedCount: len(PartitionByPurchase(sorted).Done),
	}
}
