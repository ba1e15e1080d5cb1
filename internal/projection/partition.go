package projection

import "github.com/dukerupert/liste/internal/model"

// Partition splits a list in two. Every input item lands in exactly one side
// and keeps its relative order.
type Partition[T any] struct {
	Done    []T `json:"done"`
	Pending []T `json:"pending"`
}

func PartitionBy[T any](items []T, done func(T) bool) Partition[T] {
	p := Partition[T]{Done: []T{}, Pending: []T{}}
	for _, item := range items {
		if done(item) {
			p.Done = append(p.Done, item)
		} else {
			p.Pending = append(p.Pending, item)
		}
	}
	return p
}

// PartitionByCompletion splits shopping items into complete and pending.
func PartitionByCompletion(items []model.ShoppingItem) Partition[model.ShoppingItem] {
	return PartitionBy(items, func(it model.ShoppingItem) bool { return it.Complete })
}

// PartitionByPurchase splits gift ideas into purchased and not yet purchased.
func PartitionByPurchase(gifts []model.GiftIdea) Partition[model.GiftIdea] {
	return PartitionBy(gifts, func(g model.GiftIdea) bool { return g.Purchased })
}

// CountUrgentPending counts the urgent items of a pending partition.
func CountUrgentPending(pending []model.ShoppingItem) int {
	n := 0
	for _, it := range pending {
		if it.Urgent {
			n++
		}
	}
	return n
}
