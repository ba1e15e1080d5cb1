package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if got := c.DefaultStore(); got != "Carrefour" {
		t.Errorf("DefaultStore() = %q, want %q", got, "Carrefour")
	}
	if got := c.FallbackCategory(); got != "Autres" {
		t.Errorf("FallbackCategory() = %q, want %q", got, "Autres")
	}
	if got := c.FallbackOccasion(); got != "Autre" {
		t.Errorf("FallbackOccasion() = %q, want %q", got, "Autre")
	}
	if !c.HasStore("Intermarché") {
		t.Error("expected Intermarché to be a known store")
	}
	if c.HasStore("intermarché") {
		t.Error("store lookup should be exact")
	}
	if !c.HasUser("Céline") {
		t.Error("expected Céline to be a known user")
	}
}

func TestDefaultIsCopy(t *testing.T) {
	c := Default()
	c.Stores[0] = "Lidl"

	if DefaultStores[0] != "Carrefour" {
		t.Errorf("mutating a catalog changed the defaults: %q", DefaultStores[0])
	}
}

func TestEmptyCatalogFallbacks(t *testing.T) {
	var c Catalog
	if c.DefaultStore() != "" || c.FallbackCategory() != "" || c.FallbackOccasion() != "" {
		t.Error("expected empty fallbacks for an empty catalog")
	}
}
