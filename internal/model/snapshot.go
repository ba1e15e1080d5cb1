package model

// Snapshot is the full content of one collection at a point in time. Exactly
// one of Shopping or Gifts is populated, according to Collection.
type Snapshot struct {
	Collection string         `json:"collection"`
	Version    uint64         `json:"version"`
	Shopping   []ShoppingItem `json:"shopping,omitempty"`
	Gifts      []GiftIdea     `json:"gifts,omitempty"`
}

// Len returns the number of entities in the snapshot.
func (s Snapshot) Len() int {
	if s.Collection == CollectionGifts {
		return len(s.Gifts)
	}
	return len(s.Shopping)
}
