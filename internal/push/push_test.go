package push

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/liste/internal/model"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	if pub == "" {
		t.Error("expected non-empty public key")
	}
	if priv == "" {
		t.Error("expected non-empty private key")
	}

	// Public key should be base64url-encoded, 65 bytes uncompressed P-256 point
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	// Private key should be base64url-encoded, 32 bytes P-256 scalar
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	// Generate again, should be different
	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestNewItemPayload(t *testing.T) {
	p := NewItemPayload(model.ShoppingItem{ID: "abc", Label: "Lait", AddedBy: "Greg"})
	if p.Title != "Nouvel article ajouté par Greg" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Body != "Lait" {
		t.Errorf("body = %q, want Lait", p.Body)
	}
	if p.Tag != "item-abc" {
		t.Errorf("tag = %q, want item-abc", p.Tag)
	}

	urgent := NewItemPayload(model.ShoppingItem{ID: "x", Label: "Pain", AddedBy: "Céline", Urgent: true})
	if urgent.Body != "🔴 Pain" {
		t.Errorf("urgent body = %q", urgent.Body)
	}
}

func TestServiceSendStatus(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}
	subPub, subAuth := subscriberKeys(t)

	tests := []struct {
		name    string
		status  int
		wantErr error
		anyErr  bool
	}{
		{"created", http.StatusCreated, nil, false},
		{"gone", http.StatusGone, ErrExpired, true},
		{"server error", http.StatusInternalServerError, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			svc := NewService(pub, priv, "mailto:test@example.com")
			err := svc.Send(&model.PushSubscription{Endpoint: srv.URL, P256dhKey: subPub, AuthKey: subAuth}, Payload{Title: "t"})
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if (err != nil) != tt.anyErr {
				t.Errorf("err = %v, want error: %v", err, tt.anyErr)
			}
		})
	}
}

// subscriberKeys returns a browser-side P-256 public key and auth secret.
func subscriberKeys(t *testing.T) (string, string) {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate subscriber key: %v", err)
	}
	auth := make([]byte, 16)
	rand.Read(auth)
	return base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()), base64.RawURLEncoding.EncodeToString(auth)
}
