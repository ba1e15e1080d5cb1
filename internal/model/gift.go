package model

import (
	"encoding/json"
	"fmt"
)

// DefaultGiftPrice is stored when a gift idea is created without a price.
const DefaultGiftPrice = "Non défini"

// GiftIdea is one entry of the shared gift-idea list. EstimatedPrice is free
// text as typed by the user.
type GiftIdea struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Recipient      string `json:"recipient"`
	Occasion       string `json:"occasion"`
	EstimatedPrice string `json:"estimated_price"`
	AddedBy        string `json:"added_by"`
	CreatedAt      int64  `json:"created_at"`
	Purchased      bool   `json:"purchased"`
	PurchasedBy    string `json:"purchased_by,omitempty"`
	PurchasedAt    int64  `json:"purchased_at,omitempty"`
}

type GiftPatch struct {
	Label          *string `json:"label"`
	Recipient      *string `json:"recipient"`
	Occasion       *string `json:"occasion"`
	EstimatedPrice *PriceText `json:"estimated_price"`
}

func (p GiftPatch) Empty() bool {
	return p.Label == nil && p.Recipient == nil && p.Occasion == nil && p.EstimatedPrice == nil
}

// PriceText is a price as the client sent it. JSON numbers are accepted and
// kept in their literal form, so 20 and "20" store the same text.
type PriceText string

func (p *PriceText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("estimated price must be a string or a number: %w", err)
	}
	*p = PriceText(n.String())
	return nil
}
