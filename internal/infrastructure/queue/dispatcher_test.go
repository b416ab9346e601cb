package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

type recordingNotifier struct {
	mu   sync.Mutex
	ids  []string
	fail bool
}

func (n *recordingNotifier) NotifyContact(_ context.Context, c *domain.Contact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, c.ID)
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.ids)
}

func TestDispatcher_DeliversEverythingBeforeStopReturns(t *testing.T) {
	n := &recordingNotifier{}
	d := NewDispatcher(3, 16, n, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 10; i++ {
		if !d.Enqueue(&domain.Contact{ID: string(rune('a' + i))}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	d.Stop()

	if got := n.count(); got != 10 {
		t.Fatalf("expected 10 notifications, got %d", got)
	}
}

func TestDispatcher_FullQueueRejectsWithoutBlocking(t *testing.T) {
	d := NewDispatcher(1, 1, &recordingNotifier{}, zerolog.Nop())

	if !d.Enqueue(&domain.Contact{ID: "1"}) {
		t.Fatal("first job must fit in the buffer")
	}
	if d.Enqueue(&domain.Contact{ID: "2"}) {
		t.Fatal("second job must be rejected while no worker drains the queue")
	}
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(1, 4, &recordingNotifier{}, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	if d.Enqueue(&domain.Contact{ID: "late"}) {
		t.Fatal("a stopped dispatcher must reject jobs")
	}
}

func TestDispatcher_NotifierFailureKeepsWorkerAlive(t *testing.T) {
	n := &recordingNotifier{fail: true}
	d := NewDispatcher(1, 4, n, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(&domain.Contact{ID: "1"})
	d.Enqueue(&domain.Contact{ID: "2"})
	d.Stop()

	if got := n.count(); got != 2 {
		t.Fatalf("worker must keep processing after a failure, got %d attempts", got)
	}
}

func TestNewDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher(0, 0, &recordingNotifier{}, zerolog.Nop())
	if d.workers != defaultWorkers {
		t.Errorf("expected %d workers, got %d", defaultWorkers, d.workers)
	}
	if cap(d.jobs) != channelBuffer {
		t.Errorf("expected buffer %d, got %d", channelBuffer, cap(d.jobs))
	}
}
