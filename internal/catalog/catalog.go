// Package catalog holds the closed enumerations the lists are tagged with:
// stores, product categories, gift occasions and known users. The sets come
// from configuration and never change while the process runs.
package catalog

import "slices"

// AllOccasions is the occasion filter value that matches every gift.
const AllOccasions = "TOUTES"

var (
	DefaultStores = []string{"Carrefour", "Intermarché", "Picard", "Satoriz", "Autres"}

	DefaultCategories = []string{
		"Boissons",
		"Entretien",
		"Épicerie",
		"Fruits et Légumes",
		"Hygiène",
		"Surgelés",
		"Viande et Poisson",
		"Autres",
	}

	DefaultOccasions = []string{"Anniversaire", "Noël", "Fête des mères", "Fête des pères", "Saint-Valentin", "Autre"}

	DefaultUsers = []string{"Greg", "Céline"}
)

// Catalog is the ordered set of enumerations. Order matters for Stores: the
// shopping view iterates store groups in this order.
type Catalog struct {
	Stores     []string `json:"stores"`
	Categories []string `json:"categories"`
	Occasions  []string `json:"occasions"`
	Users      []string `json:"users"`
}

// Default returns the catalog used when configuration supplies nothing.
func Default() Catalog {
	return Catalog{
		Stores:     slices.Clone(DefaultStores),
		Categories: slices.Clone(DefaultCategories),
		Occasions:  slices.Clone(DefaultOccasions),
		Users:      slices.Clone(DefaultUsers),
	}
}

func (c Catalog) HasStore(name string) bool { return slices.Contains(c.Stores, name) }
func (c Catalog) HasCategory(name string) bool { return slices.Contains(c.Categories, name) }
func (c Catalog) HasOccasion(name string) bool { return slices.Contains(c.Occasions, name) }
func (c Catalog) HasUser(name string) bool { return slices.Contains(c.Users, name) }

// DefaultStore is the store preselected for new items: the first configured one.
func (c Catalog) DefaultStore() string {
	if len(c.Stores) == 0 {
		return ""
	}
	return c.Stores[0]
}

// FallbackCategory is the last configured category, the catch-all bucket.
func (c Catalog) FallbackCategory() string {
	if len(c.Categories) == 0 {
		return ""
	}
	return c.Categories[len(c.Categories)-1]
}

// FallbackOccasion is the last configured occasion.
func (c Catalog) FallbackOccasion() string {
	if len(c.Occasions) == 0 {
		return ""
	}
	return c.Occasions[len(c.Occasions)-1]
}
