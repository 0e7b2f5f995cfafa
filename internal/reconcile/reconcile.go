package reconcile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"example.com/lezzet-planner/backend/internal/cart"
	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/plancart"
	"example.com/lezzet-planner/backend/internal/planner"
)

// Reconciler переносит набранные позиции из промежуточной корзины слота
// в оба персистируемых хранилища: слот недельного плана и общую корзину.
// Единственный компонент, которому разрешено мутировать оба агрегата в
// рамках одной логической операции. Две записи не атомарны: запись плана
// авторитетна, сбои корзины логируются per-item и не откатывают план.
type Reconciler struct {
	staging *plancart.Buffer
	plans   *planner.Service
	cart    *cart.Service
	logger  *slog.Logger
}

// New создает реконсилятор поверх трех хранилищ.
func New(staging *plancart.Buffer, plans *planner.Service, cartService *cart.Service, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		staging: staging,
		plans:   plans,
		cart:    cartService,
		logger:  logger,
	}
}

// Reconcile опустошает буфер слота и фиксирует позиции. Пустой буфер — no-op.
// Порядок записей фиксирован: сначала план, затем корзина, затем снапшоты.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, dayIndex int, planID string) error {
	lines := r.staging.Drain(userID, dayIndex, planID)
	if len(lines) == 0 {
		return nil
	}

	selections := make([]models.Selection, 0, len(lines))
	for _, line := range lines {
		selections = append(selections, models.Selection{
			ID:             line.ID,
			RestaurantID:   line.RestaurantID,
			RestaurantName: line.RestaurantName,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			UnitPrice:      line.UnitPrice,
		})
	}

	if _, err := r.plans.AppendSelections(ctx, userID, dayIndex, planID, selections); err != nil {
		r.logger.Error("reconcile: weekly plan write failed",
			slog.String("user_id", userID.String()),
			slog.Int("day_index", dayIndex),
			slog.String("plan_id", planID),
			slog.String("error", err.Error()))
		return err
	}

	for _, line := range lines {
		r.cart.AddItem(ctx, userID, line)
	}

	return nil
}

// RemoveSelection — зеркальная операция: удаляет выборку из плана и
// best-effort убирает ту же строку из корзины. План персистируется
// независимо от результата по корзине.
func (r *Reconciler) RemoveSelection(ctx context.Context, userID uuid.UUID, planID, selectionID string) error {
	if _, err := r.plans.RemoveSelection(ctx, userID, planID, selectionID); err != nil {
		return err
	}

	if !r.cart.RemoveItem(ctx, userID, selectionID) {
		r.logger.Warn("reconcile: cart line missing during selection removal",
			slog.String("user_id", userID.String()),
			slog.String("selection_id", selectionID))
	}

	return nil
}

// Discard отменяет набор слота без фиксации.
func (r *Reconciler) Discard(userID uuid.UUID, dayIndex int, planID string) {
	r.staging.Discard(userID, dayIndex, planID)
}
