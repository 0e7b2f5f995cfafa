package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий, которые слушает UI вместо опроса корзины по таймеру.
const (
	EventTypeCartUpdated = "cart_updated"
	EventTypePlanUpdated = "plan_updated"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[userID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам пользователя.
// Медленный подписчик событие теряет, публикация не блокируется.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[userID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishCartUpdate шлет событие об изменении общей корзины.
func (h *Hub) PublishCartUpdate(userID uuid.UUID, itemsCount int, total float64) {
	h.Publish(userID, Event{
		Type: EventTypeCartUpdated,
		Data: map[string]interface{}{
			"items_count": itemsCount,
			"total":       total,
		},
	})
}

// PublishPlanUpdate шлет событие об изменении недельного плана.
func (h *Hub) PublishPlanUpdate(userID uuid.UUID, dayIndex int, planID string) {
	h.Publish(userID, Event{
		Type: EventTypePlanUpdated,
		Data: map[string]interface{}{
			"day_index": dayIndex,
			"plan_id":   planID,
		},
	})
}
