package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/auth"
	"example.com/lezzet-planner/backend/internal/cart"
	"example.com/lezzet-planner/backend/internal/delivery"
	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/pricing"
	"example.com/lezzet-planner/backend/internal/repository"
)

type CartHandler struct {
	Cart        *cart.Service
	Restaurants *repository.RestaurantRepository
	Orders      *repository.OrderRepository
	Addresses   *repository.AddressRepository
	Estimator   *delivery.Estimator
	Logger      *slog.Logger
}

// NewCartHandler создает обработчик общей корзины и оформления заказа.
func NewCartHandler(cartService *cart.Service, restaurants *repository.RestaurantRepository, orders *repository.OrderRepository, addresses *repository.AddressRepository, estimator *delivery.Estimator, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CartHandler{
		Cart:        cartService,
		Restaurants: restaurants,
		Orders:      orders,
		Addresses:   addresses,
		Estimator:   estimator,
		Logger:      logger,
	}
}

type AddCartItemRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	ProductID    string `json:"product_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"omitempty,gt=0"`
}

type CheckoutRequest struct {
	AddressID string `json:"address_id" validate:"required,uuid"`
}

type CartResponse struct {
	Items      []models.LineItem `json:"items"`
	ItemsCount int               `json:"items_count"`
	Total      float64           `json:"total"`
}

// Get возвращает состояние общей корзины.
func (h *CartHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	return c.JSON(http.StatusOK, h.cartResponse(c, userID))
}

// AddItem добавляет позицию напрямую, вне контекста плана. Такие строки
// сливаются по продукту и ресторану. Неразрешившийся продукт — тихий
// no-op: клиент видит неизменившуюся корзину, не ошибку.
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	restaurant, item, err := h.Restaurants.ResolveMenuItem(c.Request().Context(), req.RestaurantID, req.ProductID)
	if err != nil {
		h.Logger.Warn("cart could not resolve product",
			slog.String("restaurant_id", req.RestaurantID),
			slog.String("product_id", req.ProductID),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusOK, h.cartResponse(c, userID))
	}

	h.Cart.AddItem(c.Request().Context(), userID, models.LineItem{
		ID:             uuid.NewString(),
		ProductID:      item.ID,
		ProductName:    item.Name,
		UnitPrice:      pricing.Normalize(item.Price),
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Quantity:       quantity,
	})

	return c.JSON(http.StatusOK, h.cartResponse(c, userID))
}

// RemoveItem уменьшает количество строки, при нуле удаляет ее.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	lineID := c.Param("itemId")
	if lineID == "" {
		return badRequest(c, "invalid item id")
	}

	if !h.Cart.RemoveItem(c.Request().Context(), userID, lineID) {
		return notFound(c, "cart item not found")
	}

	return c.JSON(http.StatusOK, h.cartResponse(c, userID))
}

// Clear опустошает корзину.
func (h *CartHandler) Clear(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	h.Cart.Clear(c.Request().Context(), userID)
	return c.NoContent(http.StatusNoContent)
}

// Checkout превращает корзину в заказ: фиксирует позиции, сумму и оценку
// доставки до выбранного адреса, затем опустошает корзину.
func (h *CartHandler) Checkout(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		return badRequest(c, "invalid address id")
	}

	address, err := h.Addresses.GetByID(c.Request().Context(), userID, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "address not found")
		}
		return serverError(c)
	}

	items := h.Cart.Items(c.Request().Context(), userID)
	if len(items) == 0 {
		return badRequest(c, "cart is empty")
	}

	estimate := h.worstEstimate(c, items, address)

	order := models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		TotalPrice:      h.Cart.Total(c.Request().Context(), userID),
		AddressText:     address.FullText,
		DeliveryMinutes: estimate.TotalMinutes,
		DeliveryRange:   estimate.DisplayRange,
	}

	created, err := h.Orders.Create(c.Request().Context(), order)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyCart) {
			return badRequest(c, "cart is empty")
		}
		return serverError(c)
	}

	h.Cart.Clear(c.Request().Context(), userID)

	return c.JSON(http.StatusCreated, created)
}

// worstEstimate берет худшую оценку по ресторанам корзины: заказ считается
// доставленным, когда приехала самая дальняя его часть.
func (h *CartHandler) worstEstimate(c echo.Context, items []models.LineItem, address models.Address) delivery.Estimate {
	var worst delivery.Estimate
	seen := make(map[string]struct{})

	for _, item := range items {
		if _, ok := seen[item.RestaurantID]; ok {
			continue
		}
		seen[item.RestaurantID] = struct{}{}

		restaurant, err := h.Restaurants.GetByID(c.Request().Context(), item.RestaurantID)
		if err != nil {
			h.Logger.Warn("checkout could not load restaurant for estimate",
				slog.String("restaurant_id", item.RestaurantID),
				slog.String("error", err.Error()))
			continue
		}

		estimate := h.Estimator.Estimate(restaurant.Lat, restaurant.Lon, address.Lat, address.Lon, restaurant.Name)
		if estimate.TotalMinutes > worst.TotalMinutes {
			worst = estimate
		}
	}

	if worst.DisplayRange == "" {
		worst = h.Estimator.Estimate(address.Lat, address.Lon, address.Lat, address.Lon, "")
	}

	return worst
}

func (h *CartHandler) cartResponse(c echo.Context, userID uuid.UUID) CartResponse {
	ctx := c.Request().Context()

	return CartResponse{
		Items:      h.Cart.Items(ctx, userID),
		ItemsCount: h.Cart.ItemsCount(ctx, userID),
		Total:      h.Cart.Total(ctx, userID),
	}
}
