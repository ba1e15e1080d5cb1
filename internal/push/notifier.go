package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond"

	"github.com/dukerupert/liste/internal/model"
)

// Sender delivers one payload to one device.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// Subscriptions is the part of the push store the notifier needs.
type Subscriptions interface {
	ListExcept(user string) ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

// Items is the part of the shopping store the notifier needs.
type Items interface {
	List() ([]model.ShoppingItem, error)
	MarkNotified(id string) error
}

// NotifierConfig sizes the delivery pool and the retry sweep.
type NotifierConfig struct {
	MaxWorkers    int
	MaxCapacity   int
	SweepInterval time.Duration
}

// Notifier announces each new shopping item once to every device not
// registered under the item's author, then flags the item as notified.
type Notifier struct {
	sender Sender
	subs   Subscriptions
	items  Items
	logger *slog.Logger
	pool   *pond.WorkerPool

	// OnNotified runs after an item is flagged, so the feed can republish.
	OnNotified func()

	mu       sync.Mutex
	inflight map[string]struct{}
	stopped  bool
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewNotifier(sender Sender, subs Subscriptions, items Items, cfg NotifierConfig, logger *slog.Logger) *Notifier {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.MaxCapacity <= 0 {
		cfg.MaxCapacity = 100
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Notifier{
		sender:   sender,
		subs:     subs,
		items:    items,
		logger:   logger.With("component", "push"),
		pool:     pond.New(cfg.MaxWorkers, cfg.MaxCapacity, pond.Strategy(pond.Balanced())),
		inflight: make(map[string]struct{}),
		interval: cfg.SweepInterval,
	}
}

// NewItemPayload builds the notification for a new item.
func NewItemPayload(item model.ShoppingItem) Payload {
	body := item.Label
	if item.Urgent {
		body = "🔴 " + body
	}
	return Payload{
		Title: fmt.Sprintf("Nouvel article ajouté par %s", item.AddedBy),
		Body:  body,
		URL:   "/",
		Tag:   "item-" + item.ID,
	}
}

// HandleSnapshot queues every pending, not yet notified shopping item. It
// never blocks, so it can run as a feed publish hook.
func (n *Notifier) HandleSnapshot(snap model.Snapshot) {
	if snap.Collection != model.CollectionShopping {
		return
	}
	n.enqueue(snap.Shopping)
}

func (n *Notifier) enqueue(items []model.ShoppingItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}

	for _, item := range items {
		if item.Notified || item.Complete {
			continue
		}
		if _, busy := n.inflight[item.ID]; busy {
			continue
		}
		n.inflight[item.ID] = struct{}{}
		if !n.pool.TrySubmit(func() { n.notify(item) }) {
			delete(n.inflight, item.ID)
			n.logger.Warn("push queue full, item left for next sweep", "item_id", item.ID)
		}
	}
}

func (n *Notifier) notify(item model.ShoppingItem) {
	defer func() {
		n.mu.Lock()
		delete(n.inflight, item.ID)
		n.mu.Unlock()
	}()

	subs, err := n.subs.ListExcept(item.AddedBy)
	if err != nil {
		n.logger.Error("list push subscriptions", "item_id", item.ID, "error", err)
		return
	}

	payload := NewItemPayload(item)
	sent := 0
	for i := range subs {
		sub := &subs[i]
		err := n.sender.Send(sub, payload)
		switch {
		case errors.Is(err, ErrExpired):
			n.logger.Info("removing expired push subscription", "user", sub.User, "device", sub.DeviceName)
			if err := n.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				n.logger.Error("delete expired subscription", "error", err)
			}
		case err != nil:
			n.logger.Warn("push send failed", "user", sub.User, "device", sub.DeviceName, "error", err)
		default:
			sent++
		}
	}

	if err := n.items.MarkNotified(item.ID); err != nil {
		n.logger.Error("mark item notified", "item_id", item.ID, "error", err)
		return
	}
	n.logger.Debug("item announced", "item_id", item.ID, "devices", sent)

	if n.OnNotified != nil {
		n.OnNotified()
	}
}

// Start begins the sweep loop that retries items missed by HandleSnapshot,
// such as those written before a restart.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	ctx, n.cancel = context.WithCancel(ctx)
	n.done = make(chan struct{})
	n.mu.Unlock()

	go func() {
		defer close(n.done)
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		n.sweep()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.sweep()
			}
		}
	}()
}

func (n *Notifier) sweep() {
	items, err := n.items.List()
	if err != nil {
		n.logger.Error("sweep shopping items", "error", err)
		return
	}
	n.enqueue(items)
}

// Stop ends the sweep loop and waits for queued deliveries.
func (n *Notifier) Stop() {
	n.mu.Lock()
	cancel := n.cancel
	done := n.done
	n.stopped = true
	n.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	n.pool.StopAndWait()
}
