package planner

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

func (m *memStore) key(userID uuid.UUID, key string) string {
	return userID.String() + "/" + key
}

func (m *memStore) Get(_ context.Context, userID uuid.UUID, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.docs[m.key(userID, key)]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return value, nil
}

func (m *memStore) Set(_ context.Context, userID uuid.UUID, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[m.key(userID, key)] = value
	return nil
}

func (m *memStore) wait(t *testing.T, userID uuid.UUID, key string) json.RawMessage {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		value, ok := m.docs[m.key(userID, key)]
		m.mu.Unlock()
		if ok {
			return value
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("expected snapshot to be persisted")
	return nil
}

func newTestService(store SnapshotStore) *Service {
	svc := NewService(store, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // понедельник
	}
	return svc
}

// TestGetGeneratesSevenDays проверяет генерацию документа с сегодняшнего дня.
func TestGetGeneratesSevenDays(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	userID := uuid.New()

	plan, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(plan.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(plan.Days))
	}

	if plan.Days[0].Name != "Pazartesi" || plan.Days[0].Date != "10.03.2025" {
		t.Fatalf("unexpected first day: %+v", plan.Days[0])
	}
	if plan.Days[6].Name != "Pazar" {
		t.Fatalf("expected last day Pazar, got %s", plan.Days[6].Name)
	}

	for i, day := range plan.Days {
		if day.ID != i {
			t.Fatalf("expected day id %d, got %d", i, day.ID)
		}
		if day.Completed {
			t.Fatalf("expected day %d to start incomplete", i)
		}
		if len(day.Slots) != 1 {
			t.Fatalf("expected exactly one default slot, got %d", len(day.Slots))
		}
	}

	store.wait(t, userID, repository.DocumentKeyWeeklyPlan)
}

// TestGetLoadsPersistedPlan проверяет загрузку сохраненного документа.
func TestGetLoadsPersistedPlan(t *testing.T) {
	store := newMemStore()
	userID := uuid.New()

	first := newTestService(store)
	plan, err := first.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	store.wait(t, userID, repository.DocumentKeyWeeklyPlan)

	second := newTestService(store)
	reloaded, err := second.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if reloaded.Days[0].Slots[0].ID != plan.Days[0].Slots[0].ID {
		t.Fatal("expected reloaded plan to keep slot ids")
	}
}

// TestAppendAndRemoveSelection проверяет иммутабельное добавление и удаление.
func TestAppendAndRemoveSelection(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	userID := uuid.New()

	plan, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	slotID := plan.Days[0].Slots[0].ID

	selections := []models.Selection{
		{ID: "sel-1", ProductName: "Adana Dürüm", UnitPrice: 45},
		{ID: "sel-2", ProductName: "Ayran", UnitPrice: 12.5},
	}

	updated, err := svc.AppendSelections(context.Background(), userID, 0, slotID, selections)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := len(updated.Days[0].Slots[0].Selections); got != 2 {
		t.Fatalf("expected 2 selections, got %d", got)
	}

	// Исходное значение не должно мутировать.
	if len(plan.Days[0].Slots[0].Selections) != 0 {
		t.Fatal("expected original plan value to stay untouched")
	}

	after, err := svc.RemoveSelection(context.Background(), userID, slotID, "sel-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	remaining := after.Days[0].Slots[0].Selections
	if len(remaining) != 1 || remaining[0].ID != "sel-2" {
		t.Fatalf("unexpected selections after removal: %+v", remaining)
	}

	if _, err := svc.RemoveSelection(context.Background(), userID, slotID, "sel-1"); err != repository.ErrNotFound {
		t.Fatalf("expected ErrNotFound for repeated removal, got %v", err)
	}
}

// TestAppendSelectionsUnknownSlot проверяет ошибку для несуществующего слота.
func TestAppendSelectionsUnknownSlot(t *testing.T) {
	svc := newTestService(newMemStore())
	userID := uuid.New()

	_, err := svc.AppendSelections(context.Background(), userID, 0, "missing", []models.Selection{{ID: "sel"}})
	if err != repository.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = svc.AppendSelections(context.Background(), userID, 9, "missing", []models.Selection{{ID: "sel"}})
	if err != repository.ErrNotFound {
		t.Fatalf("expected ErrNotFound for day out of range, got %v", err)
	}
}

// TestCompleteDayOneWay проверяет односторонний флаг завершения дня.
func TestCompleteDayOneWay(t *testing.T) {
	svc := newTestService(newMemStore())
	userID := uuid.New()

	updated, err := svc.CompleteDay(context.Background(), userID, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Days[1].Completed {
		t.Fatal("expected day 1 to be completed")
	}

	again, err := svc.CompleteDay(context.Background(), userID, 1)
	if err != nil {
		t.Fatalf("expected repeated completion to be a no-op, got %v", err)
	}
	if !again.Days[1].Completed {
		t.Fatal("expected day 1 to stay completed")
	}
}

// TestAppendSlot проверяет добавление дополнительного слота в день.
func TestAppendSlot(t *testing.T) {
	svc := newTestService(newMemStore())
	userID := uuid.New()

	updated, err := svc.AppendSlot(context.Background(), userID, 0, "Öğle Yemeği", "12:30")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	slots := updated.Days[0].Slots
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[1].Name != "Öğle Yemeği" || slots[1].Time != "12:30" {
		t.Fatalf("unexpected appended slot: %+v", slots[1])
	}
}
