package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/auth"
	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/plancart"
	"example.com/lezzet-planner/backend/internal/planner"
	"example.com/lezzet-planner/backend/internal/reconcile"
	"example.com/lezzet-planner/backend/internal/repository"
)

type PlanHandler struct {
	Plans      *planner.Service
	Staging    *plancart.Buffer
	Reconciler *reconcile.Reconciler
}

// NewPlanHandler создает обработчик недельного плана и промежуточной корзины.
func NewPlanHandler(plans *planner.Service, staging *plancart.Buffer, reconciler *reconcile.Reconciler) *PlanHandler {
	return &PlanHandler{Plans: plans, Staging: staging, Reconciler: reconciler}
}

type AppendSlotRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Time string `json:"time" validate:"required,len=5"`
}

type StageItemRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	ProductID    string `json:"product_id" validate:"required"`
}

type StagedResponse struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type PlanResponse struct {
	Plan models.WeeklyPlan `json:"plan"`
}

// Get возвращает недельный план, создавая его при первом обращении.
func (h *PlanHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	plan, err := h.Plans.Get(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PlanResponse{Plan: plan})
}

// Reset генерирует план заново по явному запросу.
func (h *PlanHandler) Reset(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	plan, err := h.Plans.Reset(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PlanResponse{Plan: plan})
}

// CompleteDay помечает день завершенным.
func (h *PlanHandler) CompleteDay(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayIndex, err := parseDayIndex(c)
	if err != nil {
		return badRequest(c, "invalid day index")
	}

	plan, err := h.Plans.CompleteDay(c.Request().Context(), userID, dayIndex)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PlanResponse{Plan: plan})
}

// AppendSlot добавляет временной слот в день.
func (h *PlanHandler) AppendSlot(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayIndex, err := parseDayIndex(c)
	if err != nil {
		return badRequest(c, "invalid day index")
	}

	var req AppendSlotRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	plan, err := h.Plans.AppendSlot(c.Request().Context(), userID, dayIndex, req.Name, req.Time)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "day not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, PlanResponse{Plan: plan})
}

// StageItem кладет позицию меню в промежуточную корзину слота.
// Неразрешившийся продукт — тихий no-op: клиент увидит отсутствие строки
// в ответе staged, отдельной ошибки нет.
func (h *PlanHandler) StageItem(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayIndex, err := parseDayIndex(c)
	if err != nil {
		return badRequest(c, "invalid day index")
	}

	planID := c.Param("planId")
	if planID == "" {
		return badRequest(c, "invalid plan id")
	}

	var req StageItemRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	h.Staging.AddItem(c.Request().Context(), userID, dayIndex, planID, req.RestaurantID, req.ProductID)

	return c.JSON(http.StatusOK, StagedResponse{
		Count: h.Staging.Count(userID, dayIndex, planID),
		Total: h.Staging.Total(userID, dayIndex, planID),
	})
}

// Staged возвращает счетчики промежуточной корзины слота.
func (h *PlanHandler) Staged(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayIndex, err := parseDayIndex(c)
	if err != nil {
		return badRequest(c, "invalid day index")
	}

	planID := c.Param("planId")

	return c.JSON(http.StatusOK, StagedResponse{
		Count: h.Staging.Count(userID, dayIndex, planID),
		Total: h.Staging.Total(userID, dayIndex, planID),
	})
}

// Confirm фиксирует набор слота: промежуточная корзина опустошается,
// позиции попадают в план и общую корзину.
func (h *PlanHandler) Confirm(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayIndex, err := parseDayIndex(c)
	if err != nil {
		return badRequest(c, "invalid day index")
	}

	planID := c.Param("planId")
	if planID == "" {
		return badRequest(c, "invalid plan id")
	}

	if err := h.Reconciler.Reconcile(c.Request().Context(), userID, dayIndex, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "plan slot not found")
		}
		return serverError(c)
	}

	plan, err := h.Plans.Get(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PlanResponse{Plan: plan})
}

// DiscardStaged отменяет набор слота без фиксации.
func (h *PlanHandler) DiscardStaged(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dayIndex, err := parseDayIndex(c)
	if err != nil {
		return badRequest(c, "invalid day index")
	}

	h.Reconciler.Discard(userID, dayIndex, c.Param("planId"))
	return c.NoContent(http.StatusNoContent)
}

// RemoveSelection удаляет выборку из плана с зеркальным удалением из корзины.
func (h *PlanHandler) RemoveSelection(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	planID := c.Param("planId")
	selectionID := c.Param("selectionId")
	if planID == "" || selectionID == "" {
		return badRequest(c, "invalid selection reference")
	}

	if err := h.Reconciler.RemoveSelection(c.Request().Context(), userID, planID, selectionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "selection not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func parseDayIndex(c echo.Context) (int, error) {
	dayIndex, err := strconv.Atoi(c.Param("dayIndex"))
	if err != nil {
		return 0, err
	}

	if dayIndex < 0 || dayIndex > 6 {
		return 0, errors.New("day index out of range")
	}

	return dayIndex, nil
}
