package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/delivery"
	"example.com/lezzet-planner/backend/internal/repository"
)

type DeliveryHandler struct {
	Estimator   *delivery.Estimator
	Restaurants *repository.RestaurantRepository
}

// NewDeliveryHandler создает обработчик оценки времени доставки.
func NewDeliveryHandler(estimator *delivery.Estimator, restaurants *repository.RestaurantRepository) *DeliveryHandler {
	return &DeliveryHandler{Estimator: estimator, Restaurants: restaurants}
}

// Estimate считает оценку доставки от ресторана до координат клиента.
// Координаты приходят от геолокации устройства и не валидируются по диапазону.
func (h *DeliveryHandler) Estimate(c echo.Context) error {
	restaurantID := c.QueryParam("restaurant_id")
	if restaurantID == "" {
		return badRequest(c, "restaurant_id is required")
	}

	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return badRequest(c, "invalid lat")
	}

	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return badRequest(c, "invalid lon")
	}

	restaurant, err := h.Restaurants.GetByID(c.Request().Context(), restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "restaurant not found")
		}
		return serverError(c)
	}

	estimate := h.Estimator.Estimate(restaurant.Lat, restaurant.Lon, lat, lon, restaurant.Name)
	return c.JSON(http.StatusOK, estimate)
}
