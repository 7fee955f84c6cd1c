// Package livequery delivers full-state snapshots of a query to subscribers
// whenever a write touches the query's topic.
package livequery

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Loader produces the current state of a subscribed query.
type Loader func(ctx context.Context) (any, error)

// Snapshot is one delivery to a subscriber.
type Snapshot struct {
	Topic   string    `json:"topic"`
	Version uint64    `json:"version"`
	Data    any       `json:"data,omitempty"`
	Err     error     `json:"-"`
	At      time.Time `json:"at"`
}

// Broker maintains the set of active subscriptions keyed by topic.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	closed bool

	logger zerolog.Logger
}

// NewBroker creates a new Broker.
func NewBroker(logger zerolog.Logger) *Broker {
	return &Broker{
		topics: make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscription is a cancellable handle yielding snapshots of one query.
type Subscription struct {
	broker *Broker
	topic  string
	load   Loader

	// dirty holds at most one pending refresh, so bursts of writes coalesce.
	dirty chan struct{}
	out   chan Snapshot

	ctx     context.Context
	cancel  context.CancelFunc
	version uint64
	done    chan struct{}
}

// Subscribe registers a subscription on topic. The first snapshot is loaded
// immediately; later ones follow every Publish on the topic. Delivery stops
// when ctx is cancelled or Close is called.
func (b *Broker) Subscribe(ctx context.Context, topic string, load Loader) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		broker: b,
		topic:  topic,
		load:   load,
		dirty:  make(chan struct{}, 1),
		out:    make(chan Snapshot, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		close(sub.out)
		close(sub.done)
		return sub
	}
	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = make(map[*Subscription]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug().Str("topic", topic).Msg("Live query subscribed")

	sub.dirty <- struct{}{}
	go sub.run()
	return sub
}

// Publish marks every subscription on topic as stale. It never blocks.
func (b *Broker) Publish(topics ...string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, topic := range topics {
		subs, ok := b.topics[topic]
		if !ok {
			continue
		}
		for sub := range subs {
			select {
			case sub.dirty <- struct{}{}:
			default:
				// a refresh is already pending
			}
		}
		b.logger.Debug().Str("topic", topic).Int("subscribers", len(subs)).Msg("Live query published")
	}
}

// SubscriberCount returns the number of active subscriptions on topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close cancels every subscription and rejects new ones.
func (b *Broker) Close() {
	b.mu.Lock()
	b.closed = true
	var subs []*Subscription
	for _, set := range b.topics {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.topics[sub.topic]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.topics, sub.topic)
		}
	}
}

// C returns the channel of snapshots. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Snapshot {
	return s.out
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Close stops delivery and waits for the subscription goroutine to exit.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run() {
	defer func() {
		s.broker.remove(s)
		close(s.out)
		close(s.done)
		s.broker.logger.Debug().Str("topic", s.topic).Msg("Live query closed")
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.dirty:
		}

		data, err := s.load(s.ctx)
		if s.ctx.Err() != nil {
			return
		}
		s.version++
		snap := Snapshot{Topic: s.topic, Version: s.version, Data: data, Err: err, At: time.Now()}

		// Replace an unread snapshot with the newer one.
		select {
		case <-s.out:
		default:
		}
		select {
		case s.out <- snap:
		case <-s.ctx.Done():
			return
		}
	}
}
