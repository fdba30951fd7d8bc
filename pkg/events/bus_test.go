package events

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var first, second []DrawerUpdate
	bus.Subscribe(func(_ context.Context, e DrawerUpdate) { first = append(first, e) })
	bus.Subscribe(func(_ context.Context, e DrawerUpdate) { second = append(second, e) })

	event := DrawerUpdate{Type: "Cash Sale", Amount: decimal.NewFromInt(50), Description: "sale"}
	bus.Publish(context.Background(), event)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one delivery per subscriber, got %d and %d", len(first), len(second))
	}
	if !first[0].Amount.Equal(event.Amount) {
		t.Fatalf("unexpected amount %s", first[0].Amount)
	}
}

func TestBusSurvivesPanickingSubscriber(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(func(context.Context, DrawerUpdate) { panic("bad subscriber") })

	delivered := false
	bus.Subscribe(func(context.Context, DrawerUpdate) { delivered = true })

	bus.Publish(context.Background(), DrawerUpdate{Type: "Close"})

	if !delivered {
		t.Fatal("later subscribers should still receive the event")
	}
}

func TestBusWithoutSubscribers(t *testing.T) {
	bus := NewBus(nil)
	bus.Publish(context.Background(), DrawerUpdate{Type: "Open"})
}
