package handler

import (
	"net/http"
	"testing"

	"github.com/dukerupert/liste/internal/catalog"
	"github.com/dukerupert/liste/internal/model"
)

func (e *testEnv) createGift(t *testing.T, body, user string) model.GiftIdea {
	t.Helper()
	rec := e.do(t, "POST", "/api/gifts", body, user)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decode[model.GiftIdea](t, rec)
}

func TestGiftCreateDefaults(t *testing.T) {
	env := setup(t)

	g := env.createGift(t, `{"label":" Livre ","recipient":" Maman "}`, "Greg")
	if g.Label != "Livre" || g.Recipient != "Maman" {
		t.Errorf("fields not trimmed: %+v", g)
	}
	if g.EstimatedPrice != model.DefaultGiftPrice {
		t.Errorf("price = %q, want %q", g.EstimatedPrice, model.DefaultGiftPrice)
	}
	if g.Occasion != "Autre" {
		t.Errorf("occasion = %q, want fallback Autre", g.Occasion)
	}
	if g.AddedBy != "Greg" {
		t.Errorf("added_by = %q", g.AddedBy)
	}
	if got := env.relay.last(); got.collection != model.CollectionGifts {
		t.Errorf("relay = %+v, want gifts", got)
	}
}

func TestGiftCreateValidation(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `not json`},
		{"missing label", `{"recipient":"Maman"}`},
		{"missing recipient", `{"label":"Livre"}`},
		{"unknown occasion", `{"label":"Livre","recipient":"Maman","occasion":"Pâques"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, "POST", "/api/gifts", tt.body, "Greg"); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGiftNumericPrice(t *testing.T) {
	env := setup(t)

	g := env.createGift(t, `{"label":"Livre","recipient":"Maman","estimated_price":20}`, "Greg")
	if g.EstimatedPrice != "20" {
		t.Errorf("price = %q, want 20", g.EstimatedPrice)
	}

	rec := env.do(t, "PATCH", "/api/gifts/"+g.ID, `{"estimated_price":12.5}`, "Greg")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[model.GiftIdea](t, rec); got.EstimatedPrice != "12.5" {
		t.Errorf("price = %q, want 12.5", got.EstimatedPrice)
	}

	if rec := env.do(t, "POST", "/api/gifts", `{"label":"Livre","recipient":"Maman","estimated_price":true}`, "Greg"); rec.Code != http.StatusBadRequest {
		t.Errorf("boolean price status = %d, want 400", rec.Code)
	}
}

func TestGiftUpdateToggleDelete(t *testing.T) {
	env := setup(t)
	g := env.createGift(t, `{"label":"Livre","recipient":"Maman","occasion":"Noël","estimated_price":"20"}`, "Greg")

	rec := env.do(t, "PATCH", "/api/gifts/"+g.ID, `{"estimated_price":"25"}`, "Céline")
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if got := decode[model.GiftIdea](t, rec); got.EstimatedPrice != "25" || got.Label != "Livre" {
		t.Errorf("unexpected gift: %+v", got)
	}
	if rec := env.do(t, "PATCH", "/api/gifts/"+g.ID, `{"recipient":""}`, "Céline"); rec.Code != http.StatusBadRequest {
		t.Errorf("blank recipient status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, "PATCH", "/api/gifts/"+g.ID, `{}`, "Céline"); rec.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", rec.Code)
	}

	got := decode[model.GiftIdea](t, env.do(t, "POST", "/api/gifts/"+g.ID+"/toggle", "", "Céline"))
	if !got.Purchased || got.PurchasedBy != "Céline" || got.PurchasedAt == 0 {
		t.Errorf("toggle on: %+v", got)
	}
	got = decode[model.GiftIdea](t, env.do(t, "POST", "/api/gifts/"+g.ID+"/toggle", `{"purchased":false}`, "Greg"))
	if got.Purchased || got.PurchasedBy != "" {
		t.Errorf("set pending: %+v", got)
	}

	if rec := env.do(t, "DELETE", "/api/gifts/"+g.ID, "", "Greg"); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := env.do(t, "POST", "/api/gifts/"+g.ID+"/toggle", "", "Greg"); rec.Code != http.StatusNotFound {
		t.Errorf("toggle deleted status = %d, want 404", rec.Code)
	}
}

func TestGiftDeleteAll(t *testing.T) {
	env := setup(t)
	env.archives.enabled = true
	env.createGift(t, `{"label":"Livre","recipient":"Maman"}`, "Greg")

	rec := env.do(t, "DELETE", "/api/gifts", "", "Greg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if c := env.archives.colls[0]; len(c) != 1 || c[0] != model.CollectionGifts {
		t.Errorf("archived collections = %v", c)
	}
	gifts, _ := env.gifts.List()
	if len(gifts) != 0 {
		t.Errorf("gifts left: %d", len(gifts))
	}
}

func TestGiftView(t *testing.T) {
	env := setup(t)
	env.createGift(t, `{"label":"Livre","recipient":"Maman","occasion":"Noël","estimated_price":"20"}`, "Greg")
	env.createGift(t, `{"label":"Montre","recipient":"Papa","occasion":"Anniversaire","estimated_price":"150"}`, "Greg")
	env.createGift(t, `{"label":"Écharpe","recipient":"Maman","occasion":"Noël"}`, "Céline")

	view := decode[giftViewResponse](t, env.do(t, "GET", "/api/gifts/view?sort=prix", "", "Greg"))
	if view.Count != 3 || len(view.Groups) != 2 {
		t.Fatalf("count=%d groups=%d", view.Count, len(view.Groups))
	}
	if view.Groups[0].Key != "Papa" {
		t.Errorf("first group = %q, want Papa (most expensive first)", view.Groups[0].Key)
	}
	if view.Occasions[0] != catalog.AllOccasions {
		t.Errorf("occasions = %v", view.Occasions)
	}

	view = decode[giftViewResponse](t, env.do(t, "GET", "/api/gifts/view?occasion=No%C3%ABl&q=livre", "", "Greg"))
	if view.Count != 1 || view.Groups[0].Key != "Maman" {
		t.Errorf("filtered view = %+v", view.GiftView)
	}

	view = decode[giftViewResponse](t, env.do(t, "GET", "/api/gifts/view?occasion=TOUTES", "", "Greg"))
	if view.Count != 3 {
		t.Errorf("TOUTES count = %d, want 3", view.Count)
	}
}
