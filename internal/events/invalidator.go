// Package events reacts to index lifecycle events.
package events

import (
	"context"
	"fmt"

	"github.com/weiawesome/openjob/internal/cache"
	pkglog "github.com/weiawesome/openjob/pkg/log"
	"github.com/weiawesome/openjob/pkg/pubsub"
)

// CacheInvalidator flushes cached search results whenever the index behind
// the alias changes, on this instance or on any other one sharing the bus.
type CacheInvalidator struct {
	sub     pubsub.Subscriber
	cache   cache.SearchCache
	channel string
	index   string
	doneCh  chan struct{}
}

// NewCacheInvalidator creates an invalidator for the cached results of index.
func NewCacheInvalidator(sub pubsub.Subscriber, searchCache cache.SearchCache, channel, index string) *CacheInvalidator {
	return &CacheInvalidator{
		sub:     sub,
		cache:   searchCache,
		channel: channel,
		index:   index,
		doneCh:  make(chan struct{}),
	}
}

// Start subscribes to the channel and handles events in a background
// goroutine until ctx is cancelled.
func (i *CacheInvalidator) Start(ctx context.Context) error {
	events, err := i.sub.Subscribe(ctx, i.channel)
	if err != nil {
		close(i.doneCh)
		return fmt.Errorf("failed to subscribe to %s: %w", i.channel, err)
	}
	go i.run(ctx, events)
	return nil
}

// Done returns a channel that is closed when the invalidator has stopped.
func (i *CacheInvalidator) Done() <-chan struct{} {
	return i.doneCh
}

func (i *CacheInvalidator) run(ctx context.Context, events <-chan *pubsub.Event) {
	defer close(i.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			i.handle(ctx, event)
		}
	}
}

func (i *CacheInvalidator) handle(ctx context.Context, event *pubsub.Event) {
	l := pkglog.L()
	if event.Index != i.index {
		return
	}

	n, err := i.cache.Flush(ctx, i.index)
	if err != nil {
		l.Warn().Err(err).Str("event", event.Type).Msg("failed to flush search cache")
		return
	}
	l.Info().
		Str("event", event.Type).
		Str(pkglog.FieldIndex, i.index).
		Int64(pkglog.FieldCount, n).
		Msg("search cache flushed")
}
