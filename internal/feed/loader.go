package feed

import "github.com/dukerupert/liste/internal/model"

type shoppingLister interface {
	List() ([]model.ShoppingItem, error)
}

type giftLister interface {
	List() ([]model.GiftIdea, error)
}

// StoreLoader adapts the two SQLite stores to Loader.
type StoreLoader struct {
	Shopping shoppingLister
	Gifts    giftLister
}

func (l StoreLoader) LoadShopping() ([]model.ShoppingItem, error) { return l.Shopping.List() }

func (l StoreLoader) LoadGifts() ([]model.GiftIdea, error) { return l.Gifts.List() }
