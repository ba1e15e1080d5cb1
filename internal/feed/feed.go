// Package feed keeps the latest full snapshot of each collection and pushes
// it to subscribers whenever a write reloads it. A snapshot always replaces
// the previous one wholesale; subscribers never see diffs.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/liste/internal/model"
)

// Loader reads a collection back from storage in arrival order.
type Loader interface {
	LoadShopping() ([]model.ShoppingItem, error)
	LoadGifts() ([]model.GiftIdea, error)
}

// Feed is safe for concurrent use.
type Feed struct {
	loader Loader
	logger *slog.Logger

	// refreshMu serializes Refresh from load through hooks, so snapshots
	// are published in the order they were read.
	refreshMu sync.Mutex

	mu      sync.Mutex
	current map[string]model.Snapshot
	subs    map[string]map[int]chan model.Snapshot
	nextID  int
	hooks   []func(model.Snapshot)
}

func New(loader Loader, logger *slog.Logger) *Feed {
	return &Feed{
		loader:  loader,
		logger:  logger.With("component", "feed"),
		current: make(map[string]model.Snapshot),
		subs:    make(map[string]map[int]chan model.Snapshot),
	}
}

func validCollection(collection string) error {
	if collection != model.CollectionShopping && collection != model.CollectionGifts {
		return fmt.Errorf("unknown collection %q", collection)
	}
	return nil
}

// OnPublish registers fn to run, synchronously, for every published snapshot.
// It must not block and must not call Refresh.
func (f *Feed) OnPublish(fn func(model.Snapshot)) {
	f.mu.Lock()
	f.hooks = append(f.hooks, fn)
	f.mu.Unlock()
}

// Current returns the last published snapshot, loading it on first use.
func (f *Feed) Current(ctx context.Context, collection string) (model.Snapshot, error) {
	if err := validCollection(collection); err != nil {
		return model.Snapshot{}, err
	}
	f.mu.Lock()
	snap, ok := f.current[collection]
	f.mu.Unlock()
	if ok {
		return snap, nil
	}
	return f.Refresh(ctx, collection)
}

// Refresh reloads the collection from storage and publishes the result.
// Hooks must not call Refresh.
func (f *Feed) Refresh(ctx context.Context, collection string) (model.Snapshot, error) {
	if err := validCollection(collection); err != nil {
		return model.Snapshot{}, err
	}

	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, err
	}

	snap := model.Snapshot{Collection: collection}
	var err error
	switch collection {
	case model.CollectionShopping:
		snap.Shopping, err = f.loader.LoadShopping()
	case model.CollectionGifts:
		snap.Gifts, err = f.loader.LoadGifts()
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load %s: %w", collection, err)
	}

	f.mu.Lock()
	snap.Version = f.current[collection].Version + 1
	f.current[collection] = snap
	for _, ch := range f.subs[collection] {
		offer(ch, snap)
	}
	hooks := f.hooks
	f.mu.Unlock()

	for _, fn := range hooks {
		fn(snap)
	}

	f.logger.Debug("snapshot published", "collection", collection, "version", snap.Version, "len", snap.Len())
	return snap, nil
}

// Subscribe returns a channel that first yields the current snapshot and then
// every later one. A subscriber that falls behind only ever sees the newest
// snapshot. cancel closes the channel.
func (f *Feed) Subscribe(ctx context.Context, collection string) (<-chan model.Snapshot, func(), error) {
	snap, err := f.Current(ctx, collection)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan model.Snapshot, 1)

	f.mu.Lock()
	if latest, ok := f.current[collection]; ok && latest.Version > snap.Version {
		snap = latest
	}
	ch <- snap
	id := f.nextID
	f.nextID++
	if f.subs[collection] == nil {
		f.subs[collection] = make(map[int]chan model.Snapshot)
	}
	f.subs[collection][id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[collection], id)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

// offer replaces any undelivered snapshot with snap. Callers hold f.mu, which
// makes the drain-then-send pair atomic with respect to other publishers.
func offer(ch chan model.Snapshot, snap model.Snapshot) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
