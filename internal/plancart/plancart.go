package plancart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/pricing"
)

// ProductResolver отдает ресторан и позицию меню по идентификаторам.
type ProductResolver interface {
	ResolveMenuItem(ctx context.Context, restaurantID, productID string) (models.Restaurant, models.MenuItem, error)
}

type slotKey struct {
	day    int
	planID string
}

// Buffer — промежуточная корзина слота плана: позиции, которые пользователь
// набирает в открытом меню ресторана для одного слота (день, план).
// Живет только в памяти и полностью опустошается при подтверждении или отмене.
type Buffer struct {
	mu       sync.Mutex
	resolver ProductResolver
	logger   *slog.Logger
	staged   map[uuid.UUID]map[slotKey][]models.LineItem
}

// NewBuffer создает промежуточную корзину поверх каталога ресторанов.
func NewBuffer(resolver ProductResolver, logger *slog.Logger) *Buffer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Buffer{
		resolver: resolver,
		logger:   logger,
		staged:   make(map[uuid.UUID]map[slotKey][]models.LineItem),
	}
}

// AddItem разрешает продукт через каталог, нормализует цену и кладет позицию
// в буфер слота. Неразрешившийся продукт или пустой план — не ошибка, а
// защита пользовательского сценария: пишем в лог и молча выходим.
func (b *Buffer) AddItem(ctx context.Context, userID uuid.UUID, dayIndex int, planID, restaurantID, productID string) {
	if planID == "" || dayIndex < 0 {
		b.logger.Warn("plan cart add without selected plan",
			slog.String("user_id", userID.String()),
			slog.Int("day_index", dayIndex))
		return
	}

	restaurant, item, err := b.resolver.ResolveMenuItem(ctx, restaurantID, productID)
	if err != nil {
		b.logger.Warn("plan cart could not resolve product",
			slog.String("restaurant_id", restaurantID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		return
	}

	line := models.LineItem{
		// ID уникален на событие добавления и несет ключ слота, поэтому
		// позиции одного продукта из разных слотов никогда не сливаются.
		ID:             fmt.Sprintf("d%d-%s-%s", dayIndex, planID, uuid.NewString()),
		ProductID:      item.ID,
		ProductName:    item.Name,
		UnitPrice:      pricing.Normalize(item.Price),
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Quantity:       1,
		PlanProvenance: &models.PlanProvenance{DayIndex: dayIndex, PlanID: planID},
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	slots, ok := b.staged[userID]
	if !ok {
		slots = make(map[slotKey][]models.LineItem)
		b.staged[userID] = slots
	}

	key := slotKey{day: dayIndex, planID: planID}
	slots[key] = append(slots[key], line)
}

// Count возвращает число позиций в буфере слота.
func (b *Buffer) Count(userID uuid.UUID, dayIndex int, planID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.staged[userID][slotKey{day: dayIndex, planID: planID}])
}

// Total возвращает сумму буфера слота.
func (b *Buffer) Total(userID uuid.UUID, dayIndex int, planID string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total float64
	for _, line := range b.staged[userID][slotKey{day: dayIndex, planID: planID}] {
		total += line.UnitPrice * float64(line.Quantity)
	}

	return total
}

// Drain возвращает все позиции слота и очищает буфер.
// Единственный потребитель — процесс реконсиляции.
func (b *Buffer) Drain(userID uuid.UUID, dayIndex int, planID string) []models.LineItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := slotKey{day: dayIndex, planID: planID}
	slots, ok := b.staged[userID]
	if !ok {
		return nil
	}

	lines := slots[key]
	delete(slots, key)
	if len(slots) == 0 {
		delete(b.staged, userID)
	}

	return lines
}

// Discard очищает буфер слота без возврата позиций (отмена).
func (b *Buffer) Discard(userID uuid.UUID, dayIndex int, planID string) {
	_ = b.Drain(userID, dayIndex, planID)
}
