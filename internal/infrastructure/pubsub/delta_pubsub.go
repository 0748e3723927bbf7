package pubsub

import (
	"context"
	"fmt"
	"sync"

	"shopmirror/internal/domain"

	"github.com/rs/zerolog"
)

// ChangeChannel represents one subscription to applied local writes.
type ChangeChannel struct {
	ID     string
	Filter *ChangeFilter
	Events chan *domain.ChangeEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// ChangeFilter narrows a subscription to certain entities or one shop.
type ChangeFilter struct {
	Entities []string
	Shop     string
}

// DeltaPubSub broadcasts every applied sync upsert and webhook delta to
// in-process subscribers.
type DeltaPubSub struct {
	mu       sync.RWMutex
	channels map[string]*ChangeChannel
	logger   zerolog.Logger
	nextID   int64
}

// NewDeltaPubSub creates a new delta pub/sub system
func NewDeltaPubSub(logger zerolog.Logger) *DeltaPubSub {
	return &DeltaPubSub{
		channels: make(map[string]*ChangeChannel),
		logger:   logger,
	}
}

// Subscribe creates a new subscription channel
func (ps *DeltaPubSub) Subscribe(ctx context.Context, filter *ChangeFilter) *ChangeChannel {
	subCtx, cancel := context.WithCancel(ctx)

	ps.mu.Lock()
	ps.nextID++
	channel := &ChangeChannel{
		ID:     fmt.Sprintf("channel-%d", ps.nextID),
		Filter: filter,
		Events: make(chan *domain.ChangeEvent, 16),
		ctx:    subCtx,
		cancel: cancel,
	}
	ps.channels[channel.ID] = channel
	ps.mu.Unlock()

	ps.logger.Debug().
		Str("channelId", channel.ID).
		Msg("Delta subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(channel.ID)
	}()

	return channel
}

// Unsubscribe removes a subscription channel
func (ps *DeltaPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	channel.cancel()
	delete(ps.channels, channelID)
}

// Publish broadcasts a change event to all matching subscribers. Delivery is
// non-blocking; a full buffer drops the event for that subscriber.
func (ps *DeltaPubSub) Publish(event *domain.ChangeEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, channel := range ps.channels {
		if !matchesFilter(event, channel.Filter) {
			continue
		}
		select {
		case channel.Events <- event:
		case <-channel.ctx.Done():
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Msg("Channel buffer full, dropping event")
		}
	}
}

func matchesFilter(event *domain.ChangeEvent, filter *ChangeFilter) bool {
	if filter == nil {
		return true
	}

	if len(filter.Entities) > 0 {
		matched := false
		for _, entity := range filter.Entities {
			if event.Entity == entity {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if filter.Shop != "" && event.ShopDomain != filter.Shop {
		return false
	}

	return true
}
