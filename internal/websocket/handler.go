package websocket

import (
	"context"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/liste/internal/identity"
	"github.com/dukerupert/liste/internal/model"
)

// SnapshotSource yields the current snapshot of a collection.
type SnapshotSource interface {
	Current(ctx context.Context, collection string) (model.Snapshot, error)
}

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients. Each new client first receives the current
// snapshot of both collections.
func HandleWebSocket(hub *Hub, source SnapshotSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		user := identity.User(ctx)
		initial := func() []Message {
			var msgs []Message
			for _, collection := range []string{model.CollectionShopping, model.CollectionGifts} {
				snap, err := source.Current(ctx, collection)
				if err != nil {
					logger.Error("initial snapshot", "collection", collection, "error", err)
					continue
				}
				msgs = append(msgs, SnapshotMessage(snap))
			}
			return msgs
		}

		logger.Debug("websocket connected", "user", user)
		NewClient(hub, conn, user).Run(ctx, initial)
		logger.Debug("websocket disconnected", "user", user)
	}
}
