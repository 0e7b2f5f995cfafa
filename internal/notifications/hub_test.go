package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.PublishCartUpdate(userID, 3, 135.5)

	select {
	case event := <-ch:
		if event.Type != EventTypeCartUpdated {
			t.Fatalf("expected event type %s, got %s", EventTypeCartUpdated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}

// TestHubPublishOtherUser проверяет изоляцию подписок между пользователями.
func TestHubPublishOtherUser(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	hub.PublishPlanUpdate(uuid.New(), 0, "slot")

	select {
	case event := <-ch:
		t.Fatalf("expected no event, got %v", event)
	case <-time.After(50 * time.Millisecond):
	}
}
