package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/repository"
)

type RestaurantHandler struct {
	Restaurants *repository.RestaurantRepository
}

// NewRestaurantHandler создает обработчик каталога ресторанов.
func NewRestaurantHandler(restaurants *repository.RestaurantRepository) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: restaurants}
}

// List возвращает рестораны с меню.
func (h *RestaurantHandler) List(c echo.Context) error {
	restaurants, err := h.Restaurants.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Restaurant{"restaurants": restaurants})
}

// Get возвращает один ресторан с меню.
func (h *RestaurantHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return badRequest(c, "invalid restaurant id")
	}

	restaurant, err := h.Restaurants.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "restaurant not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, restaurant)
}
