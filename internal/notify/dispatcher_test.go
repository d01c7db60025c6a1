package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

type countingNotifier struct {
	mu    sync.Mutex
	seen  []string
	delay time.Duration
	err   error
}

func (c *countingNotifier) Notify(ctx context.Context, ev domain.Transition) error {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.seen = append(c.seen, ev.ID)
	return nil
}

func (c *countingNotifier) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.seen))
	copy(out, c.seen)
	return out
}

func event(id string) domain.Transition {
	return domain.Transition{ID: id, URL: "https://a", From: domain.StatusUp, To: domain.StatusDown, OccurredAt: time.Now().UTC()}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	sink := &countingNotifier{}
	d := NewDispatcher(zap.NewNop(), sink, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		d.Enqueue(event(fmt.Sprintf("ev-%d", i)))
	}

	deadline := time.After(2 * time.Second)
	for len(sink.ids()) < 5 {
		select {
		case <-deadline:
			t.Fatalf("timed out, delivered %v", sink.ids())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	got := sink.ids()
	for i, id := range got {
		if want := fmt.Sprintf("ev-%d", i); id != want {
			t.Fatalf("want %s at %d, got %v", want, i, got)
		}
	}
}

func TestDispatcher_EnqueueNeverBlocksAndEvictsOldest(t *testing.T) {
	d := NewDispatcher(zap.NewNop(), Nop{}, 2)

	// no Run loop consuming: the queue fills and older events get evicted
	for i := 0; i < 10; i++ {
		d.Enqueue(event(fmt.Sprintf("ev-%d", i)))
	}

	if len(d.queue) != 2 {
		t.Fatalf("want 2 queued, got %d", len(d.queue))
	}
	first := <-d.queue
	second := <-d.queue
	if first.ID != "ev-8" || second.ID != "ev-9" {
		t.Fatalf("want newest two kept, got %s, %s", first.ID, second.ID)
	}
}

func TestDispatcher_SlowDeliveryDoesNotBlockEnqueue(t *testing.T) {
	sink := &countingNotifier{delay: time.Second}
	d := NewDispatcher(zap.NewNop(), sink, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	start := time.Now()
	for i := 0; i < 20; i++ {
		d.Enqueue(event(fmt.Sprintf("ev-%d", i)))
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("enqueue stalled behind slow delivery, took %v", elapsed)
	}
}

func TestDispatcher_DrainsQueueOnShutdown(t *testing.T) {
	sink := &countingNotifier{}
	d := NewDispatcher(zap.NewNop(), sink, 8)

	for i := 0; i < 3; i++ {
		d.Enqueue(event(fmt.Sprintf("ev-%d", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	if got := len(sink.ids()); got != 3 {
		t.Fatalf("want 3 drained deliveries, got %d", got)
	}
}

func TestDispatcher_KeepsRunningAfterFailedDelivery(t *testing.T) {
	sink := &countingNotifier{err: errors.New("hook down")}
	d := NewDispatcher(zap.NewNop(), sink, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.Enqueue(event("ev-0"))
	time.Sleep(50 * time.Millisecond)

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	d.Enqueue(event("ev-1"))

	deadline := time.After(2 * time.Second)
	for len(sink.ids()) < 1 {
		select {
		case <-deadline:
			t.Fatal("delivery never resumed after a failure")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if got := sink.ids(); len(got) != 1 || got[0] != "ev-1" {
		t.Fatalf("want only ev-1 delivered, got %v", got)
	}
}
