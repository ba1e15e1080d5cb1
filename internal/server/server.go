// Package server builds the route table and wires stores, the snapshot feed,
// websocket delivery, push notifications and archives together.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/dukerupert/liste/internal/backup"
	"github.com/dukerupert/liste/internal/config"
	"github.com/dukerupert/liste/internal/feed"
	"github.com/dukerupert/liste/internal/handler"
	"github.com/dukerupert/liste/internal/middleware"
	"github.com/dukerupert/liste/internal/model"
	"github.com/dukerupert/liste/internal/projection"
	"github.com/dukerupert/liste/internal/push"
	"github.com/dukerupert/liste/internal/relay"
	"github.com/dukerupert/liste/internal/store"
	ws "github.com/dukerupert/liste/internal/websocket"
)

type Server struct {
	hub           *ws.Hub
	feed          *feed.Feed
	relay         relay.Relay
	changes       *handler.Changes
	shoppingH     *handler.ShoppingHandler
	giftH         *handler.GiftHandler
	preferenceH   *handler.PreferenceHandler
	pushH         *handler.PushHandler
	archiveH      *handler.ArchiveHandler
	rateLimiter   *middleware.RateLimiter
	rateLimit     int
	backupManager *backup.Manager
	notifier      *push.Notifier
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, rl relay.Relay, logger *slog.Logger) *Server {
	if rl == nil {
		rl = relay.Noop{}
	}

	shoppingStore := store.NewShoppingStore(db)
	giftStore := store.NewGiftStore(db)
	prefStore := store.NewPreferenceStore(db)
	pushStore := store.NewPushStore(db)
	archiveStore := store.NewArchiveStore(db)

	loader := feed.StoreLoader{Shopping: shoppingStore, Gifts: giftStore}
	snapshots := feed.New(loader, logger)

	hub := ws.NewHub(logger.With("component", "websocket"))
	snapshots.OnPublish(hub.Publish)

	changes := handler.NewChanges(snapshots, rl, logger.With("component", "changes"))

	// Archive manager
	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Bucket:    cfg.Backup.Bucket,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		},
		Passphrase: cfg.Backup.Passphrase,
		Prefix:     "archives",
		Interval:   cfg.Backup.Interval,
	}, loader, archiveStore, logger)

	// Push notification service + notifier
	var notifier *push.Notifier
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Server.BaseURL)
		notifier = push.NewNotifier(pushSvc, pushStore, shoppingStore, push.NotifierConfig{}, logger)
		notifier.OnNotified = func() {
			changes.Changed(context.Background(), model.CollectionShopping)
		}
		snapshots.OnPublish(notifier.HandleSnapshot)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	view := projection.Config{
		Stores:   cfg.Catalog.Stores,
		Language: language.Make(cfg.Server.Locale),
	}

	return &Server{
		hub:     hub,
		feed:    snapshots,
		relay:   rl,
		changes: changes,
		shoppingH: handler.NewShoppingHandler(shoppingStore, prefStore, snapshots, changes, handler.ShoppingOptions{
			Catalog:        cfg.Catalog,
			View:           view,
			Archiver:       backupMgr,
			ArchiveOnClear: cfg.Backup.OnClear,
		}, logger.With("component", "shopping")),
		giftH: handler.NewGiftHandler(giftStore, snapshots, changes, handler.GiftOptions{
			Catalog:        cfg.Catalog,
			View:           view,
			Archiver:       backupMgr,
			ArchiveOnClear: cfg.Backup.OnClear,
		}, logger.With("component", "gifts")),
		preferenceH:   handler.NewPreferenceHandler(prefStore, cfg.Catalog, logger.With("component", "preferences")),
		pushH:         pushH,
		archiveH:      handler.NewArchiveHandler(backupMgr, logger.With("component", "archive")),
		rateLimiter:   middleware.NewRateLimiter(),
		rateLimit:     cfg.Server.RateLimit,
		backupManager: backupMgr,
		notifier:      notifier,
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the archive manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// Notifier returns the push notifier, or nil when push is not configured.
func (s *Server) Notifier() *push.Notifier {
	return s.notifier
}

// Prime loads both collections into the feed so the first readers and
// websocket clients find a published snapshot.
func (s *Server) Prime(ctx context.Context) error {
	for _, collection := range []string{model.CollectionShopping, model.CollectionGifts} {
		if _, err := s.feed.Refresh(ctx, collection); err != nil {
			return fmt.Errorf("prime %s: %w", collection, err)
		}
	}
	return nil
}

// Feed returns the snapshot feed.
func (s *Server) Feed() *feed.Feed {
	return s.feed
}

// ListenRelay refreshes local snapshots when another instance reports a
// change. Refreshing here never publishes back to the relay. It blocks until
// ctx is done.
func (s *Server) ListenRelay(ctx context.Context) error {
	return s.relay.Run(ctx, func(n relay.Notice) {
		if _, err := s.feed.Refresh(ctx, n.Collection); err != nil {
			s.logger.Error("refresh from relay", "collection", n.Collection, "instance", n.Instance, "error", err)
		}
	})
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no display name required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.feed, s.logger.With("component", "websocket")))
	outerMux.HandleFunc("GET /api/catalog", s.preferenceH.Catalog)
	outerMux.HandleFunc("GET /api/me", s.preferenceH.Me)
	outerMux.HandleFunc("PUT /api/me", s.preferenceH.SetMe)
	outerMux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	outerMux.HandleFunc("GET /api/shopping/view", s.shoppingH.View)
	outerMux.HandleFunc("GET /api/shopping/share", s.shoppingH.Share)
	outerMux.HandleFunc("GET /api/gifts", s.giftH.List)
	outerMux.HandleFunc("GET /api/gifts/view", s.giftH.View)
	if s.pushH != nil {
		outerMux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// Writes and per-user routes, wrapped with RequireUser and rate limiting
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	rl := middleware.RateLimit(s.rateLimiter, middleware.ByUserOrIP, s.rateLimit, time.Minute)
	outerMux.Handle("/api/", middleware.RequireUser(rl(protectedMux)))

	// Apply identity and request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(middleware.Identify(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Shopping API routes
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Create)
	mux.HandleFunc("DELETE /api/shopping", s.shoppingH.DeleteAll)
	mux.HandleFunc("PATCH /api/shopping/{id}", s.shoppingH.Update)
	mux.HandleFunc("DELETE /api/shopping/{id}", s.shoppingH.Delete)
	mux.HandleFunc("POST /api/shopping/{id}/toggle", s.shoppingH.Toggle)

	// Gift API routes
	mux.HandleFunc("POST /api/gifts", s.giftH.Create)
	mux.HandleFunc("DELETE /api/gifts", s.giftH.DeleteAll)
	mux.HandleFunc("PATCH /api/gifts/{id}", s.giftH.Update)
	mux.HandleFunc("DELETE /api/gifts/{id}", s.giftH.Delete)
	mux.HandleFunc("POST /api/gifts/{id}/toggle", s.giftH.Toggle)

	// Preferences
	mux.HandleFunc("GET /api/preferences", s.preferenceH.Get)
	mux.HandleFunc("PUT /api/preferences", s.preferenceH.Update)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	}

	// Archives
	mux.HandleFunc("POST /api/archive", s.archiveH.Create)
	mux.HandleFunc("GET /api/archive/status", s.archiveH.Status)
	mux.HandleFunc("GET /api/archives", s.archiveH.List)
	mux.HandleFunc("GET /api/archives/{id}", s.archiveH.Get)
}
