package projection

import "github.com/dukerupert/liste/internal/model"

// Group is one keyed bucket of a grouping, items in input order.
type Group[T any] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
}

// GroupBy buckets items by key, groups in first-seen key order.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	groups := []Group[T]{}
	index := make(map[string]int)
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// GroupByStore buckets shopping items by store. One group is returned per
// configured store, in configuration order, even when empty. Items tagged with
// a store outside the configuration follow in first-seen order.
func GroupByStore(items []model.ShoppingItem, stores []string) []Group[model.ShoppingItem] {
	byStore := GroupBy(items, func(it model.ShoppingItem) string { return it.Store })

	found := make(map[string][]model.ShoppingItem, len(byStore))
	for _, g := range byStore {
		found[g.Key] = g.Items
	}

	groups := make([]Group[model.ShoppingItem], 0, len(stores)+len(byStore))
	configured := make(map[string]bool, len(stores))
	for _, store := range stores {
		if configured[store] {
			continue
		}
		configured[store] = true
		members := found[store]
		if members == nil {
			members = []model.ShoppingItem{}
		}
		groups = append(groups, Group[model.ShoppingItem]{Key: store, Items: members})
	}
	for _, g := range byStore {
		if !configured[g.Key] {
			groups = append(groups, g)
		}
	}
	return groups
}

// GroupByRecipient buckets gift ideas by recipient in first-seen order.
func GroupByRecipient(gifts []model.GiftIdea) []Group[model.GiftIdea] {
	return GroupBy(gifts, func(g model.GiftIdea) string { return g.Recipient })
}

// NonEmpty drops the groups without items.
func NonEmpty[T any](groups []Group[T]) []Group[T] {
	out := make([]Group[T], 0, len(groups))
	for _, g := range groups {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	return out
}
