package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/liste/internal/model"
)

func setupShoppingStore(t *testing.T) *ShoppingStore {
	t.Helper()
	s := NewShoppingStore(setupTestDB(t))
	s.now = fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	return s
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestShoppingCreate(t *testing.T) {
	s := setupShoppingStore(t)

	item, err := s.Create("Lait", "Greg", "Carrefour", "Produits laitiers", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ID == "" {
		t.Error("expected non-empty ID")
	}
	if item.Label != "Lait" || item.AddedBy != "Greg" || item.Store != "Carrefour" {
		t.Errorf("unexpected item: %+v", item)
	}
	if !item.Urgent {
		t.Error("expected urgent")
	}
	if item.Complete || item.CompletedBy != "" || item.CompletedAt != 0 {
		t.Errorf("new item should be pending: %+v", item)
	}
	if item.CreatedAt == 0 {
		t.Error("expected created_at to be set")
	}
	if item.Notified {
		t.Error("new item should not be notified")
	}
}

func TestShoppingListArrivalOrder(t *testing.T) {
	s := setupShoppingStore(t)

	for _, label := range []string{"Pain", "Beurre", "Oeufs"} {
		if _, err := s.Create(label, "Céline", "Autres", "Autres", false); err != nil {
			t.Fatalf("create %s: %v", label, err)
		}
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Pain", "Beurre", "Oeufs"}
	if len(items) != len(want) {
		t.Fatalf("len = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Label != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Label, w)
		}
	}
}

func TestShoppingListEmpty(t *testing.T) {
	s := setupShoppingStore(t)

	items, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", items)
	}
}

func TestShoppingGetByIDNotFound(t *testing.T) {
	s := setupShoppingStore(t)

	item, err := s.GetByID("missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil, got %+v", item)
	}
}

func TestShoppingUpdatePartial(t *testing.T) {
	s := setupShoppingStore(t)

	item, _ := s.Create("Lait", "Greg", "Carrefour", "Produits laitiers", false)

	updated, err := s.Update(item.ID, model.ShoppingPatch{Store: strPtr("Picard"), Urgent: boolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Store != "Picard" || !updated.Urgent {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Label != "Lait" || updated.Category != "Produits laitiers" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.CreatedAt != item.CreatedAt {
		t.Errorf("created_at changed: %d -> %d", item.CreatedAt, updated.CreatedAt)
	}
}

func TestShoppingUpdateEmptyPatch(t *testing.T) {
	s := setupShoppingStore(t)

	item, _ := s.Create("Lait", "Greg", "Carrefour", "Autres", false)
	_, err := s.Update(item.ID, model.ShoppingPatch{})
	if !errors.Is(err, ErrInvalidPatch) {
		t.Errorf("err = %v, want ErrInvalidPatch", err)
	}
}

func TestShoppingUpdateMissing(t *testing.T) {
	s := setupShoppingStore(t)

	got, err := s.Update("missing", model.ShoppingPatch{Label: strPtr("x")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %+v", got)
	}
}

func TestShoppingSetComplete(t *testing.T) {
	s := setupShoppingStore(t)

	item, _ := s.Create("Lait", "Greg", "Carrefour", "Autres", false)

	done, err := s.SetComplete(item.ID, true, "Céline")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Complete || done.CompletedBy != "Céline" || done.CompletedAt == 0 {
		t.Errorf("unexpected completed item: %+v", done)
	}

	pending, err := s.SetComplete(item.ID, false, "Céline")
	if err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if pending.Complete || pending.CompletedBy != "" || pending.CompletedAt != 0 {
		t.Errorf("completion fields not cleared: %+v", pending)
	}
}

func TestShoppingToggle(t *testing.T) {
	s := setupShoppingStore(t)

	item, _ := s.Create("Lait", "Greg", "Carrefour", "Autres", false)

	first, err := s.Toggle(item.ID, "Greg")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !first.Complete || first.CompletedBy != "Greg" || first.CompletedAt == 0 {
		t.Errorf("first toggle: %+v", first)
	}

	second, err := s.Toggle(item.ID, "Céline")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if second.Complete || second.CompletedBy != "" || second.CompletedAt != 0 {
		t.Errorf("second toggle: %+v", second)
	}
}

func TestShoppingMarkNotified(t *testing.T) {
	s := setupShoppingStore(t)

	item, _ := s.Create("Lait", "Greg", "Carrefour", "Autres", false)
	if err := s.MarkNotified(item.ID); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	got, _ := s.GetByID(item.ID)
	if !got.Notified {
		t.Error("expected notified")
	}
}

func TestShoppingDelete(t *testing.T) {
	s := setupShoppingStore(t)

	item, _ := s.Create("Lait", "Greg", "Carrefour", "Autres", false)

	ok, err := s.Delete(item.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("expected delete to report existing item")
	}

	ok, err = s.Delete(item.ID)
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	if ok {
		t.Error("expected second delete to report missing item")
	}
}

func TestShoppingDeleteAll(t *testing.T) {
	s := setupShoppingStore(t)

	s.Create("Lait", "Greg", "Carrefour", "Autres", false)
	s.Create("Pain", "Greg", "Carrefour", "Autres", true)

	n, err := s.DeleteAll()
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	items, _ := s.List()
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d", len(items))
	}

	// Arrival order restarts cleanly after a clear.
	s.Create("Beurre", "Céline", "Picard", "Autres", false)
	items, _ = s.List()
	if len(items) != 1 || items[0].Label != "Beurre" {
		t.Errorf("unexpected items after clear: %+v", items)
	}
}

func TestShoppingDeleteThrough(t *testing.T) {
	s := setupShoppingStore(t)

	if seq, err := s.LastSeq(); err != nil || seq != 0 {
		t.Fatalf("empty last seq = %d, err = %v", seq, err)
	}
	s.Create("Lait", "Greg", "Carrefour", "Autres", false)
	s.Create("Pain", "Greg", "Carrefour", "Autres", false)
	through, err := s.LastSeq()
	if err != nil {
		t.Fatalf("last seq: %v", err)
	}
	s.Create("Beurre", "Céline", "Carrefour", "Autres", false)

	n, err := s.DeleteThrough(through)
	if err != nil {
		t.Fatalf("delete through: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	items, _ := s.List()
	if len(items) != 1 || items[0].Label != "Beurre" {
		t.Errorf("unexpected items: %+v", items)
	}
}
