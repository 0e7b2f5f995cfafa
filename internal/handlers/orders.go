package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/auth"
	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/repository"
)

type OrderHandler struct {
	Orders *repository.OrderRepository
}

// NewOrderHandler создает обработчик истории заказов.
func NewOrderHandler(orders *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

// List возвращает заказы пользователя, свежие первыми.
func (h *OrderHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Order{"orders": orders})
}

// Get возвращает один заказ.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	order, err := h.Orders.GetByID(c.Request().Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "order not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, order)
}
