package model

// Collection names. They double as websocket entity names and snapshot keys.
const (
	CollectionShopping = "shopping"
	CollectionGifts    = "gifts"
)

// ShoppingItem is one entry of the shared shopping list. Timestamps are epoch
// milliseconds.
type ShoppingItem struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	AddedBy     string `json:"added_by"`
	Store       string `json:"store"`
	Category    string `json:"category"`
	Urgent      bool   `json:"urgent"`
	Complete    bool   `json:"complete"`
	CompletedBy string `json:"completed_by,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	Notified    bool   `json:"notified"`
}

// ShoppingPatch is a partial-field update. Nil fields are left untouched.
type ShoppingPatch struct {
	Label    *string `json:"label"`
	Store    *string `json:"store"`
	Category *string `json:"category"`
	Urgent   *bool   `json:"urgent"`
}

// Empty reports whether the patch changes nothing.
func (p ShoppingPatch) Empty() bool {
	return p.Label == nil && p.Store == nil && p.Category == nil && p.Urgent == nil
}
