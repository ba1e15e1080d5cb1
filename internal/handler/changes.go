package handler

import (
	"context"
	"log/slog"

	"github.com/dukerupert/liste/internal/model"
)

// Feed is the snapshot feed the handlers read from and refresh.
type Feed interface {
	Current(ctx context.Context, collection string) (model.Snapshot, error)
	Refresh(ctx context.Context, collection string) (model.Snapshot, error)
}

// Relay tells other instances that a collection changed.
type Relay interface {
	Publish(ctx context.Context, collection string, version uint64) error
}

// Changes republishes a collection after a local write.
type Changes struct {
	feed   Feed
	relay  Relay
	logger *slog.Logger
}

func NewChanges(feed Feed, relay Relay, logger *slog.Logger) *Changes {
	return &Changes{feed: feed, relay: relay, logger: logger}
}

// Changed reloads the collection, which pushes the new snapshot to local
// subscribers, then notifies other instances. Failures are logged only: the
// write itself already succeeded.
func (c *Changes) Changed(ctx context.Context, collection string) {
	snap, err := c.feed.Refresh(ctx, collection)
	if err != nil {
		c.logger.Error("refresh snapshot", "collection", collection, "error", err)
		return
	}
	if c.relay == nil {
		return
	}
	if err := c.relay.Publish(ctx, collection, snap.Version); err != nil {
		c.logger.Warn("relay change notice", "collection", collection, "error", err)
	}
}

type snapshotResponse struct {
	Collection string `json:"collection"`
	Version    uint64 `json:"version"`
	Items      any    `json:"items"`
}

func newSnapshotResponse(snap model.Snapshot) snapshotResponse {
	resp := snapshotResponse{Collection: snap.Collection, Version: snap.Version}
	switch snap.Collection {
	case model.CollectionGifts:
		items := snap.Gifts
		if items == nil {
			items = []model.GiftIdea{}
		}
		resp.Items = items
	default:
		items := snap.Shopping
		if items == nil {
			items = []model.ShoppingItem{}
		}
		resp.Items = items
	}
	return resp
}
