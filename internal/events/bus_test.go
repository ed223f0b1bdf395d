package events

import (
	"context"
	"testing"
	"time"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	sent := []Event{
		{Type: TypePhase, Phase: "gate_checking"},
		{Type: TypeConfirm, ConfirmID: "c1", Prompt: "Shoot?"},
		{Type: TypePhase, Phase: "gate_aborted", Reason: "preserve-last-arrow"},
	}
	go func() {
		for _, ev := range sent {
			if err := bus.Publish(ctx, ev); err != nil {
				t.Errorf("Publish() error: %v", err)
			}
		}
	}()

	for i, want := range sent {
		select {
		case got := <-events:
			if got != want {
				t.Errorf("event %d = %+v, want %+v", i, got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d not delivered", i)
		}
	}
}

func TestBusSubscriptionEndsOnClose(t *testing.T) {
	bus := NewBus()

	events, err := bus.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	select {
	case _, ok := <-events:
		if ok {
			t.Error("received an event after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end after Close")
	}
}
