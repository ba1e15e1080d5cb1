package store

import "testing"

func TestCreateSubscription(t *testing.T) {
	ps := NewPushStore(setupTestDB(t))

	sub, err := ps.CreateSubscription("Greg", "https://push.example.com/sub1", "p256dh_key1", "auth_key1", "Chrome Desktop")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if sub.User != "Greg" {
		t.Errorf("user = %q, want Greg", sub.User)
	}
	if sub.DeviceName != "Chrome Desktop" {
		t.Errorf("device_name = %q, want %q", sub.DeviceName, "Chrome Desktop")
	}
}

func TestCreateSubscriptionUpsert(t *testing.T) {
	ps := NewPushStore(setupTestDB(t))

	sub1, _ := ps.CreateSubscription("Greg", "https://push.example.com/sub1", "key1", "auth1", "Device A")
	sub2, err := ps.CreateSubscription("Céline", "https://push.example.com/sub1", "key2", "auth2", "Device B")
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}

	// Same endpoint, same row; the device now belongs to the last name used.
	if sub2.ID != sub1.ID {
		t.Errorf("expected same ID on upsert, got %d != %d", sub2.ID, sub1.ID)
	}
	if sub2.P256dhKey != "key2" {
		t.Errorf("p256dh = %q, want %q", sub2.P256dhKey, "key2")
	}
	if sub2.User != "Céline" {
		t.Errorf("user = %q, want Céline", sub2.User)
	}
}

func TestListExcept(t *testing.T) {
	ps := NewPushStore(setupTestDB(t))

	ps.CreateSubscription("Greg", "https://push.example.com/1", "k1", "a1", "Phone")
	ps.CreateSubscription("Céline", "https://push.example.com/2", "k2", "a2", "Phone")
	ps.CreateSubscription("Céline", "https://push.example.com/3", "k3", "a3", "Laptop")

	subs, err := ps.ListExcept("Greg")
	if err != nil {
		t.Fatalf("list except: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}
	for _, s := range subs {
		if s.User == "Greg" {
			t.Errorf("author's own device included: %+v", s)
		}
	}

	mine, _ := ps.ListByUser("Greg")
	if len(mine) != 1 {
		t.Errorf("ListByUser len = %d, want 1", len(mine))
	}
}

func TestDeleteSubscription(t *testing.T) {
	ps := NewPushStore(setupTestDB(t))

	sub, _ := ps.CreateSubscription("Greg", "https://push.example.com/1", "k1", "a1", "D1")

	// Another user cannot remove it.
	if err := ps.DeleteSubscription(sub.ID, "Céline"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := ps.GetByID(sub.ID); got == nil {
		t.Fatal("subscription removed by another user")
	}

	if err := ps.DeleteSubscription(sub.ID, "Greg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := ps.GetByID(sub.ID); got != nil {
		t.Errorf("expected deleted, got %+v", got)
	}
}

func TestDeleteByEndpoint(t *testing.T) {
	ps := NewPushStore(setupTestDB(t))

	ps.CreateSubscription("Greg", "https://push.example.com/expired", "k1", "a1", "D1")

	if err := ps.DeleteByEndpoint("https://push.example.com/expired"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	subs, _ := ps.ListByUser("Greg")
	if len(subs) != 0 {
		t.Errorf("expected 0 subs, got %d", len(subs))
	}
}
