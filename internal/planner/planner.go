package planner

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
	"example.com/lezzet-planner/backend/internal/repository"
)

const (
	dateLayout      = "02.01.2006"
	defaultSlotName = "Akşam Yemeği"
	defaultSlotTime = "19:00"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

// SnapshotStore — durable key-value хранилище JSON-снапшотов документа.
type SnapshotStore interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (json.RawMessage, error)
	Set(ctx context.Context, userID uuid.UUID, key string, value json.RawMessage) error
}

// Service владеет недельным планом пользователя. Состояние в памяти —
// операционная истина сессии; снапшот пишется в хранилище вслед за
// мутацией и не дожидается подтверждения.
type Service struct {
	mu     sync.Mutex
	store  SnapshotStore
	hub    *notifications.Hub
	logger *slog.Logger
	now    func() time.Time
	plans  map[uuid.UUID]models.WeeklyPlan
}

// NewService создает сервис недельного плана.
func NewService(store SnapshotStore, hub *notifications.Hub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		hub:    hub,
		logger: logger,
		now:    time.Now,
		plans:  make(map[uuid.UUID]models.WeeklyPlan),
	}
}

// Get возвращает план пользователя: из памяти, иначе из хранилища,
// иначе генерирует новый на 7 дней вперед и персистирует его.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (models.WeeklyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx, userID)
}

// Reset генерирует план заново, затирая предыдущий документ.
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) (models.WeeklyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := s.generate()
	s.plans[userID] = plan
	s.persist(userID, plan)

	return plan, nil
}

// AppendSelections добавляет выборки в слот плана. Документ обновляется
// иммутабельно: собирается новая копия, чтобы снапшот был консистентным.
func (s *Service) AppendSelections(ctx context.Context, userID uuid.UUID, dayIndex int, planID string, selections []models.Selection) (models.WeeklyPlan, error) {
	if len(selections) == 0 {
		return s.Get(ctx, userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.loadLocked(ctx, userID)
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	if dayIndex < 0 || dayIndex >= len(plan.Days) {
		return models.WeeklyPlan{}, repository.ErrNotFound
	}

	updated := clonePlan(plan)
	slot := findSlot(&updated, dayIndex, planID)
	if slot == nil {
		return models.WeeklyPlan{}, repository.ErrNotFound
	}

	slot.Selections = append(slot.Selections, selections...)

	s.plans[userID] = updated
	s.persist(userID, updated)
	if s.hub != nil {
		s.hub.PublishPlanUpdate(userID, dayIndex, planID)
	}

	return updated, nil
}

// RemoveSelection удаляет выборку из слота плана по идентификатору.
func (s *Service) RemoveSelection(ctx context.Context, userID uuid.UUID, planID, selectionID string) (models.WeeklyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.loadLocked(ctx, userID)
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	updated := clonePlan(plan)

	for dayIdx := range updated.Days {
		for slotIdx := range updated.Days[dayIdx].Slots {
			slot := &updated.Days[dayIdx].Slots[slotIdx]
			if slot.ID != planID {
				continue
			}

			for selIdx, sel := range slot.Selections {
				if sel.ID != selectionID {
					continue
				}

				slot.Selections = append(slot.Selections[:selIdx], slot.Selections[selIdx+1:]...)

				s.plans[userID] = updated
				s.persist(userID, updated)
				if s.hub != nil {
					s.hub.PublishPlanUpdate(userID, dayIdx, planID)
				}

				return updated, nil
			}
		}
	}

	return models.WeeklyPlan{}, repository.ErrNotFound
}

// CompleteDay переводит день в завершенные. Флаг односторонний:
// обратного перехода нет, повторный вызов — no-op.
func (s *Service) CompleteDay(ctx context.Context, userID uuid.UUID, dayIndex int) (models.WeeklyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.loadLocked(ctx, userID)
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	if dayIndex < 0 || dayIndex >= len(plan.Days) {
		return models.WeeklyPlan{}, repository.ErrNotFound
	}

	if plan.Days[dayIndex].Completed {
		return plan, nil
	}

	updated := clonePlan(plan)
	updated.Days[dayIndex].Completed = true

	s.plans[userID] = updated
	s.persist(userID, updated)

	return updated, nil
}

// AppendSlot добавляет новый временной слот в день. Слоты не удаляются.
func (s *Service) AppendSlot(ctx context.Context, userID uuid.UUID, dayIndex int, name, slotTime string) (models.WeeklyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.loadLocked(ctx, userID)
	if err != nil {
		return models.WeeklyPlan{}, err
	}

	if dayIndex < 0 || dayIndex >= len(plan.Days) {
		return models.WeeklyPlan{}, repository.ErrNotFound
	}

	updated := clonePlan(plan)
	updated.Days[dayIndex].Slots = append(updated.Days[dayIndex].Slots, models.PlanSlot{
		ID:         uuid.NewString(),
		Name:       name,
		Time:       slotTime,
		Selections: make([]models.Selection, 0),
	})

	s.plans[userID] = updated
	s.persist(userID, updated)

	return updated, nil
}

func (s *Service) loadLocked(ctx context.Context, userID uuid.UUID) (models.WeeklyPlan, error) {
	if plan, ok := s.plans[userID]; ok {
		return plan, nil
	}

	raw, err := s.store.Get(ctx, userID, repository.DocumentKeyWeeklyPlan)
	if err == nil {
		var plan models.WeeklyPlan
		if unmarshalErr := json.Unmarshal(raw, &plan); unmarshalErr == nil && len(plan.Days) == 7 {
			s.plans[userID] = plan
			return plan, nil
		}
		s.logger.Warn("stored weekly plan is unreadable, regenerating",
			slog.String("user_id", userID.String()))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.WeeklyPlan{}, err
	}

	plan := s.generate()
	s.plans[userID] = plan
	s.persist(userID, plan)

	return plan, nil
}

// generate строит документ: 7 дней начиная с сегодняшнего, в каждом дне
// ровно один слот по умолчанию.
func (s *Service) generate() models.WeeklyPlan {
	now := s.now()
	days := make([]models.DayPlan, 0, 7)

	for i := 0; i < 7; i++ {
		date := now.AddDate(0, 0, i)
		days = append(days, models.DayPlan{
			ID:        i,
			Name:      weekdayNames[date.Weekday()],
			Date:      date.Format(dateLayout),
			Completed: false,
			Slots: []models.PlanSlot{{
				ID:         uuid.NewString(),
				Name:       defaultSlotName,
				Time:       defaultSlotTime,
				Selections: make([]models.Selection, 0),
			}},
		})
	}

	return models.WeeklyPlan{Days: days, GeneratedAt: now.UTC()}
}

// persist пишет снапшот вслед за мутацией, не блокируя вызывающего.
// Сбой записи оставляет память операционной истиной сессии.
func (s *Service) persist(userID uuid.UUID, plan models.WeeklyPlan) {
	raw, err := json.Marshal(plan)
	if err != nil {
		s.logger.Error("marshal weekly plan", slog.String("error", err.Error()))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.store.Set(ctx, userID, repository.DocumentKeyWeeklyPlan, raw); err != nil {
			s.logger.Error("persist weekly plan",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

func findSlot(plan *models.WeeklyPlan, dayIndex int, planID string) *models.PlanSlot {
	for i := range plan.Days[dayIndex].Slots {
		if plan.Days[dayIndex].Slots[i].ID == planID {
			return &plan.Days[dayIndex].Slots[i]
		}
	}

	return nil
}

func clonePlan(plan models.WeeklyPlan) models.WeeklyPlan {
	cloned := plan
	cloned.Days = make([]models.DayPlan, len(plan.Days))

	for i, day := range plan.Days {
		clonedDay := day
		clonedDay.Slots = make([]models.PlanSlot, len(day.Slots))

		for j, slot := range day.Slots {
			clonedSlot := slot
			clonedSlot.Selections = make([]models.Selection, len(slot.Selections))
			copy(clonedSlot.Selections, slot.Selections)
			clonedDay.Slots[j] = clonedSlot
		}

		cloned.Days[i] = clonedDay
	}

	return cloned
}
