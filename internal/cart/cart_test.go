package cart

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/repository"
)

type memStore struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]json.RawMessage)}
}

func (m *memStore) Get(_ context.Context, userID uuid.UUID, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.docs[userID.String()+"/"+key]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return value, nil
}

func (m *memStore) Set(_ context.Context, userID uuid.UUID, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[userID.String()+"/"+key] = value
	return nil
}

func (m *memStore) waitForItems(t *testing.T, userID uuid.UUID, want int) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		raw, ok := m.docs[userID.String()+"/"+repository.DocumentKeyGlobalCart]
		m.mu.Unlock()

		if ok {
			var snapshot models.CartSnapshot
			if err := json.Unmarshal(raw, &snapshot); err == nil && len(snapshot.Items) == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("expected snapshot with %d items to be persisted", want)
}

func directItem(id, productID string, price float64) models.LineItem {
	return models.LineItem{
		ID:             id,
		ProductID:      productID,
		ProductName:    "Adana Dürüm",
		UnitPrice:      price,
		RestaurantID:   "r1",
		RestaurantName: "Kebapçı Halil",
		Quantity:       1,
	}
}

// TestAddItemMergesDirectDuplicates проверяет слияние прямых повторов.
func TestAddItemMergesDirectDuplicates(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	userID := uuid.New()
	ctx := context.Background()

	svc.AddItem(ctx, userID, directItem("x", "i1", 10))
	svc.AddItem(ctx, userID, directItem("x", "i1", 10))

	items := svc.Items(ctx, userID)
	if len(items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}

	// Повтор того же продукта под другим id без привязки к плану тоже сливается.
	svc.AddItem(ctx, userID, directItem("y", "i1", 10))

	items = svc.Items(ctx, userID)
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("expected single line with quantity 3, got %+v", items)
	}
}

// TestAddItemKeepsPlanLinesSeparate проверяет, что позиции разных слотов не сливаются.
func TestAddItemKeepsPlanLinesSeparate(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	userID := uuid.New()
	ctx := context.Background()

	first := directItem("d0-p1-a", "i1", 45)
	first.PlanProvenance = &models.PlanProvenance{DayIndex: 0, PlanID: "p1"}

	second := directItem("d1-p1-b", "i1", 45)
	second.PlanProvenance = &models.PlanProvenance{DayIndex: 1, PlanID: "p1"}

	svc.AddItem(ctx, userID, first)
	svc.AddItem(ctx, userID, second)

	items := svc.Items(ctx, userID)
	if len(items) != 2 {
		t.Fatalf("expected 2 separate lines, got %d", len(items))
	}

	// Прямое добавление того же продукта не сливается со строками плана.
	svc.AddItem(ctx, userID, directItem("z", "i1", 45))

	if got := len(svc.Items(ctx, userID)); got != 3 {
		t.Fatalf("expected 3 lines, got %d", got)
	}
}

// TestTotalsNeverNegative проверяет неотрицательность счетчиков при любых удалениях.
func TestTotalsNeverNegative(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	userID := uuid.New()
	ctx := context.Background()

	svc.AddItem(ctx, userID, directItem("x", "i1", 10))
	svc.AddItem(ctx, userID, directItem("x", "i1", 10))

	for i := 0; i < 5; i++ {
		svc.RemoveItem(ctx, userID, "x")

		if total := svc.Total(ctx, userID); total < 0 {
			t.Fatalf("total went negative: %v", total)
		}
		if count := svc.ItemsCount(ctx, userID); count < 0 {
			t.Fatalf("count went negative: %d", count)
		}
	}

	if got := len(svc.Items(ctx, userID)); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}

	if svc.RemoveItem(ctx, userID, "x") {
		t.Fatal("expected removal of missing line to report false")
	}
}

// TestCartPersistsAcrossServices проверяет загрузку снапшота новым сервисом.
func TestCartPersistsAcrossServices(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()
	ctx := context.Background()

	first := NewService(store, nil, nil)
	first.AddItem(ctx, userID, directItem("x", "i1", 45))
	store.waitForItems(t, userID, 1)

	second := NewService(store, nil, nil)
	if got := second.Total(ctx, userID); got != 45.0 {
		t.Fatalf("expected reloaded total 45.00, got %v", got)
	}
}

// TestClear проверяет опустошение корзины.
func TestClear(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	userID := uuid.New()
	ctx := context.Background()

	svc.AddItem(ctx, userID, directItem("x", "i1", 10))
	svc.Clear(ctx, userID)

	if got := svc.ItemsCount(ctx, userID); got != 0 {
		t.Fatalf("expected empty cart, got %d", got)
	}
}

// TestAddItemNormalizesInput проверяет коррекцию количества и цены.
func TestAddItemNormalizesInput(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	userID := uuid.New()
	ctx := context.Background()

	item := directItem("x", "i1", -5)
	item.Quantity = 0
	svc.AddItem(ctx, userID, item)

	items := svc.Items(ctx, userID)
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantity != 1 || items[0].UnitPrice != 0 {
		t.Fatalf("expected quantity 1 and price 0, got %+v", items[0])
	}
}
