package reconciler

import (
	"testing"
	"time"

	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

func TestStatusChangeSinkDeliversToSubscribers(t *testing.T) {
	sink := NewStatusChangeSink()
	ch, unsubscribe := sink.Subscribe(1)
	defer unsubscribe()

	changes := rolluptypes.StatusChanges{Commit: []rolluptypes.BatchStatusChange{{Number: 1}}}
	sink.emit(changes)

	select {
	case got := <-ch:
		if len(got.Commit) != 1 || got.Commit[0].Number != 1 {
			t.Fatalf("got %+v, want the emitted changes", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the emitted changes")
	}
}

func TestStatusChangeSinkDropsWhenSubscriberBufferIsFull(t *testing.T) {
	sink := NewStatusChangeSink()
	ch, unsubscribe := sink.Subscribe(1)
	defer unsubscribe()

	// Fill the buffer, then emit again: the second send must be dropped,
	// never block the caller.
	sink.emit(rolluptypes.StatusChanges{Commit: []rolluptypes.BatchStatusChange{{Number: 1}}})
	done := make(chan struct{})
	go func() {
		sink.emit(rolluptypes.StatusChanges{Commit: []rolluptypes.BatchStatusChange{{Number: 2}}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit must never block on a full subscriber buffer")
	}

	got := <-ch
	if got.Commit[0].Number != 1 {
		t.Fatalf("got batch %d, want the first emitted change (1) to have been delivered, the second dropped", got.Commit[0].Number)
	}
}

func TestStatusChangeSinkUnsubscribeClosesChannel(t *testing.T) {
	sink := NewStatusChangeSink()
	ch, unsubscribe := sink.Subscribe(1)
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("the channel must be closed after unsubscribe")
	}
}
