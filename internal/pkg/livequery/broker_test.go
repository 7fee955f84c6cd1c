package livequery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	defer b.Close()

	sub := b.Subscribe(context.Background(), "resources", func(ctx context.Context) (any, error) {
		return []string{"a", "b"}, nil
	})
	defer sub.Close()

	snap := receive(t, sub)
	if snap.Version != 1 {
		t.Fatalf("version = %d, want 1", snap.Version)
	}
	if got := snap.Data.([]string); len(got) != 2 {
		t.Fatalf("data = %v", got)
	}
	if snap.Topic != "resources" {
		t.Fatalf("topic = %q", snap.Topic)
	}
}

func TestPublishTriggersFreshSnapshot(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	defer b.Close()

	var state atomic.Int64
	sub := b.Subscribe(context.Background(), "exchange/1/messages", func(ctx context.Context) (any, error) {
		return state.Load(), nil
	})
	defer sub.Close()

	if first := receive(t, sub); first.Data.(int64) != 0 {
		t.Fatalf("initial state = %v", first.Data)
	}

	state.Store(3)
	b.Publish("exchange/1/messages")

	snap := receive(t, sub)
	if snap.Data.(int64) != 3 {
		t.Fatalf("state after publish = %v, want 3", snap.Data)
	}
	if snap.Version < 2 {
		t.Fatalf("version = %d, want >= 2", snap.Version)
	}
}

func TestPublishOtherTopicIsIgnored(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	defer b.Close()

	var loads atomic.Int32
	sub := b.Subscribe(context.Background(), "a", func(ctx context.Context) (any, error) {
		loads.Add(1)
		return nil, nil
	})
	defer sub.Close()
	receive(t, sub)

	b.Publish("b")

	select {
	case snap := <-sub.C():
		t.Fatalf("unexpected snapshot %+v", snap)
	case <-time.After(100 * time.Millisecond):
	}
	if loads.Load() != 1 {
		t.Fatalf("loader ran %d times, want 1", loads.Load())
	}
}

func TestSlowSubscriberSeesLatestState(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	defer b.Close()

	var state atomic.Int64
	sub := b.Subscribe(context.Background(), "posts", func(ctx context.Context) (any, error) {
		return state.Load(), nil
	})
	defer sub.Close()
	receive(t, sub)

	for i := 1; i <= 50; i++ {
		state.Store(int64(i))
		b.Publish("posts")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.C():
			if snap.Data.(int64) == 50 {
				return
			}
		case <-deadline:
			t.Fatalf("never observed the latest state")
		}
	}
}

func TestLoaderErrorIsDelivered(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	defer b.Close()

	boom := errors.New("boom")
	sub := b.Subscribe(context.Background(), "x", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	defer sub.Close()

	if snap := receive(t, sub); !errors.Is(snap.Err, boom) {
		t.Fatalf("err = %v, want boom", snap.Err)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := NewBroker(zerolog.Nop())
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx, "user/1/notifications", func(ctx context.Context) (any, error) {
		return 1, nil
	})
	receive(t, sub)

	cancel()
	select {
	case _, ok := <-sub.C():
		if ok {
			// a snapshot may already be in flight; the channel must close next
			if _, ok := <-sub.C(); ok {
				t.Fatalf("expected channel to close after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription did not close after cancel")
	}

	deadline := time.Now().Add(time.Second)
	for b.SubscriberCount("user/1/notifications") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscription was not removed from the broker")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseEndsAllSubscriptions(t *testing.T) {
	b := NewBroker(zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		sub := b.Subscribe(context.Background(), "community/posts", func(ctx context.Context) (any, error) {
			return nil, nil
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range sub.C() {
			}
		}()
	}

	b.Close()
	wg.Wait()

	late := b.Subscribe(context.Background(), "community/posts", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	if _, ok := <-late.C(); ok {
		t.Fatalf("subscriptions after Close must be closed immediately")
	}
}
