package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/notifications"
	"example.com/lezzet-planner/backend/internal/pricing"
	"example.com/lezzet-planner/backend/internal/repository"
)

// SnapshotStore — durable key-value хранилище JSON-снапшотов корзины.
type SnapshotStore interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (json.RawMessage, error)
	Set(ctx context.Context, userID uuid.UUID, key string, value json.RawMessage) error
}

// Service владеет общей корзиной — источником истины для оформления заказа.
// Мутации не возвращают ошибок: сбои персиста и чтения логируются, память
// остается операционной истиной сессии.
type Service struct {
	mu     sync.Mutex
	store  SnapshotStore
	hub    *notifications.Hub
	logger *slog.Logger
	carts  map[uuid.UUID][]models.LineItem
	loaded map[uuid.UUID]bool
}

// NewService создает сервис общей корзины.
func NewService(store SnapshotStore, hub *notifications.Hub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		hub:    hub,
		logger: logger,
		carts:  make(map[uuid.UUID][]models.LineItem),
		loaded: make(map[uuid.UUID]bool),
	}
}

// AddItem кладет позицию в корзину с правилами слияния:
//   - та же позиция (совпал ID) — инкремент количества;
//   - прямой повтор продукта из того же ресторана без привязки к плану —
//     инкремент количества существующей строки;
//   - позиции со ссылкой на слот плана никогда не сливаются между собой,
//     даже для одного продукта: корзина показывает, из какого слота строка.
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, item models.LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.UnitPrice = pricing.NormalizeFloat(item.UnitPrice)

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.loadLocked(ctx, userID)

	merged := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}

		if item.PlanProvenance == nil && items[i].PlanProvenance == nil &&
			items[i].ProductID == item.ProductID && items[i].RestaurantID == item.RestaurantID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}

	if !merged {
		items = append(items, item)
	}

	s.commitLocked(userID, items)
}

// RemoveItem уменьшает количество позиции, при нуле удаляет строку.
// Возвращает false, если позиции нет — для best-effort зеркалирования.
func (s *Service) RemoveItem(ctx context.Context, userID uuid.UUID, lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.loadLocked(ctx, userID)

	for i := range items {
		if items[i].ID != lineID {
			continue
		}

		items[i].Quantity--
		if items[i].Quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		}

		s.commitLocked(userID, items)
		return true
	}

	return false
}

// Items возвращает копию позиций корзины.
func (s *Service) Items(ctx context.Context, userID uuid.UUID) []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.loadLocked(ctx, userID)
	out := make([]models.LineItem, len(items))
	copy(out, items)

	return out
}

// ItemsCount возвращает сумму количеств по всем позициям.
func (s *Service) ItemsCount(ctx context.Context, userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, item := range s.loadLocked(ctx, userID) {
		count += item.Quantity
	}

	return count
}

// Total возвращает сумму корзины.
func (s *Service) Total(ctx context.Context, userID uuid.UUID) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.loadLocked(ctx, userID) {
		total += item.UnitPrice * float64(item.Quantity)
	}

	return total
}

// Clear опустошает корзину (после оформления заказа).
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(ctx, userID)
	s.commitLocked(userID, make([]models.LineItem, 0))
}

// loadLocked поднимает снапшот из хранилища при первом обращении.
// Нечитаемый или отсутствующий снапшот дает пустую корзину.
func (s *Service) loadLocked(ctx context.Context, userID uuid.UUID) []models.LineItem {
	if s.loaded[userID] {
		return s.carts[userID]
	}

	s.loaded[userID] = true
	s.carts[userID] = make([]models.LineItem, 0)

	raw, err := s.store.Get(ctx, userID, repository.DocumentKeyGlobalCart)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("load cart snapshot",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
		return s.carts[userID]
	}

	var snapshot models.CartSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.logger.Warn("stored cart snapshot is unreadable",
			slog.String("user_id", userID.String()))
		return s.carts[userID]
	}

	s.carts[userID] = snapshot.Items
	return s.carts[userID]
}

// commitLocked фиксирует состояние в памяти, шлет событие подписчикам и
// пишет снапшот вслед, не дожидаясь подтверждения.
func (s *Service) commitLocked(userID uuid.UUID, items []models.LineItem) {
	s.carts[userID] = items

	if s.hub != nil {
		var count int
		var total float64
		for _, item := range items {
			count += item.Quantity
			total += item.UnitPrice * float64(item.Quantity)
		}
		s.hub.PublishCartUpdate(userID, count, total)
	}

	snapshot := models.CartSnapshot{Items: items, UpdatedAt: time.Now().UTC()}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("marshal cart snapshot", slog.String("error", err.Error()))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.Set(ctx, userID, repository.DocumentKeyGlobalCart, raw); err != nil {
			s.logger.Error("persist cart snapshot",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
	}()
}
