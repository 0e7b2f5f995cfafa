package reconcile

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"

	"example.com/lezzet-planner/backend/internal/cart"
	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/plancart"
	"example.com/lezzet-planner/backend/internal/planner"
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

type fakeResolver struct{}

func (fakeResolver) ResolveMenuItem(_ context.Context, restaurantID, productID string) (models.Restaurant, models.MenuItem, error) {
	if restaurantID != "r1" {
		return models.Restaurant{}, models.MenuItem{}, repository.ErrNotFound
	}

	items := map[string]models.MenuItem{
		"i1": {ID: "i1", Name: "Adana Dürüm", Price: "₺45,00"},
		"i2": {ID: "i2", Name: "Ayran", Price: "₺12,50"},
	}

	item, ok := items[productID]
	if !ok {
		return models.Restaurant{}, models.MenuItem{}, repository.ErrNotFound
	}

	return models.Restaurant{ID: "r1", Name: "Kebapçı Halil"}, item, nil
}

type fixture struct {
	staging *plancart.Buffer
	plans   *planner.Service
	cart    *cart.Service
	rec     *Reconciler
}

func newFixture() fixture {
	staging := plancart.NewBuffer(fakeResolver{}, nil)
	plans := planner.NewService(newMemStore(), nil, nil)
	cartService := cart.NewService(newMemStore(), nil, nil)

	return fixture{
		staging: staging,
		plans:   plans,
		cart:    cartService,
		rec:     New(staging, plans, cartService, nil),
	}
}

// TestReconcileCompleteness проверяет, что N набранных позиций дают ровно
// N выборок в слоте плана и пустой буфер.
func TestReconcileCompleteness(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	plan, err := f.plans.Get(ctx, userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	slotID := plan.Days[0].Slots[0].ID

	f.staging.AddItem(ctx, userID, 0, slotID, "r1", "i1")
	f.staging.AddItem(ctx, userID, 0, slotID, "r1", "i2")

	if err := f.rec.Reconcile(ctx, userID, 0, slotID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, err := f.plans.Get(ctx, userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := len(updated.Days[0].Slots[0].Selections); got != 2 {
		t.Fatalf("expected 2 selections, got %d", got)
	}

	if got := f.staging.Count(userID, 0, slotID); got != 0 {
		t.Fatalf("expected drained buffer, got %d", got)
	}

	if got := f.cart.ItemsCount(ctx, userID); got != 2 {
		t.Fatalf("expected 2 cart items, got %d", got)
	}
}

// TestReconcileScenario повторяет сквозной сценарий: добавление позиции
// с ценой "₺45,00", подтверждение, проверка обоих хранилищ.
func TestReconcileScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	plan, _ := f.plans.Get(ctx, userID)
	slotID := plan.Days[0].Slots[0].ID

	f.staging.AddItem(ctx, userID, 0, slotID, "r1", "i1")

	if err := f.rec.Reconcile(ctx, userID, 0, slotID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, _ := f.plans.Get(ctx, userID)
	selections := updated.Days[0].Slots[0].Selections
	if len(selections) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(selections))
	}
	if selections[0].UnitPrice != 45.0 {
		t.Fatalf("expected selection price 45.00, got %v", selections[0].UnitPrice)
	}

	if got := f.cart.Total(ctx, userID); got != 45.0 {
		t.Fatalf("expected cart total 45.00, got %v", got)
	}

	items := f.cart.Items(ctx, userID)
	if items[0].PlanProvenance == nil || items[0].PlanProvenance.PlanID != slotID {
		t.Fatalf("expected plan provenance on cart line, got %+v", items[0])
	}
}

// TestReconcileEmptyBuffer проверяет no-op для пустого буфера.
func TestReconcileEmptyBuffer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	if err := f.rec.Reconcile(ctx, userID, 0, "whatever"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	if got := f.cart.ItemsCount(ctx, userID); got != 0 {
		t.Fatalf("expected empty cart, got %d", got)
	}
}

// TestRemoveSelectionMirrors проверяет зеркальное удаление из плана и корзины.
func TestRemoveSelectionMirrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	plan, _ := f.plans.Get(ctx, userID)
	slotID := plan.Days[0].Slots[0].ID

	f.staging.AddItem(ctx, userID, 0, slotID, "r1", "i1")
	if err := f.rec.Reconcile(ctx, userID, 0, slotID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, _ := f.plans.Get(ctx, userID)
	selectionID := updated.Days[0].Slots[0].Selections[0].ID

	if err := f.rec.RemoveSelection(ctx, userID, slotID, selectionID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	after, _ := f.plans.Get(ctx, userID)
	if got := len(after.Days[0].Slots[0].Selections); got != 0 {
		t.Fatalf("expected selection removed from plan, got %d", got)
	}

	for _, item := range f.cart.Items(ctx, userID) {
		if item.ID == selectionID {
			t.Fatal("expected cart line to be removed")
		}
	}
}

// TestRemoveSelectionCartMissing проверяет, что отсутствие строки в корзине
// не мешает удалению из плана.
func TestRemoveSelectionCartMissing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	plan, _ := f.plans.Get(ctx, userID)
	slotID := plan.Days[0].Slots[0].ID

	f.staging.AddItem(ctx, userID, 0, slotID, "r1", "i1")
	if err := f.rec.Reconcile(ctx, userID, 0, slotID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, _ := f.plans.Get(ctx, userID)
	selectionID := updated.Days[0].Slots[0].Selections[0].ID

	// Строку из корзины убрали напрямую еще до зеркального удаления.
	f.cart.RemoveItem(ctx, userID, selectionID)

	if err := f.rec.RemoveSelection(ctx, userID, slotID, selectionID); err != nil {
		t.Fatalf("expected best-effort removal to succeed, got %v", err)
	}

	after, _ := f.plans.Get(ctx, userID)
	if got := len(after.Days[0].Slots[0].Selections); got != 0 {
		t.Fatalf("expected selection removed from plan, got %d", got)
	}
}

// TestDiscard проверяет отмену набора без фиксации.
func TestDiscard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	userID := uuid.New()

	plan, _ := f.plans.Get(ctx, userID)
	slotID := plan.Days[0].Slots[0].ID

	f.staging.AddItem(ctx, userID, 0, slotID, "r1", "i1")
	f.rec.Discard(userID, 0, slotID)

	if err := f.rec.Reconcile(ctx, userID, 0, slotID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	updated, _ := f.plans.Get(ctx, userID)
	if got := len(updated.Days[0].Slots[0].Selections); got != 0 {
		t.Fatalf("expected no selections after discard, got %d", got)
	}

	if got := f.cart.ItemsCount(ctx, userID); got != 0 {
		t.Fatalf("expected empty cart after discard, got %d", got)
	}
}
