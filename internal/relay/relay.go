// Package relay forwards "collection changed" notices between service
// instances sharing one database, so each instance can refresh its feed.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
)

// Notice announces that a collection was written by Instance.
type Notice struct {
	Instance   string `json:"instance"`
	Collection string `json:"collection"`
	Version    uint64 `json:"version"`
}

// Relay publishes local changes and delivers remote ones.
type Relay interface {
	Publish(ctx context.Context, collection string, version uint64) error
	// Run blocks delivering notices from other instances to fn until ctx is
	// done.
	Run(ctx context.Context, fn func(Notice)) error
	Close() error
}

func encode(n Notice) ([]byte, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notice: %w", err)
	}
	return b, nil
}

func decode(payload string) (Notice, error) {
	var n Notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Notice{}, fmt.Errorf("unmarshal notice: %w", err)
	}
	return n, nil
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, uint64) error { return nil }

func (Noop) Run(ctx context.Context, _ func(Notice)) error {
	<-ctx.Done()
	return nil
}

func (Noop) Close() error { return nil }
