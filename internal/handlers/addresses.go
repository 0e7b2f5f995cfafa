package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/lezzet-planner/backend/internal/auth"
	"example.com/lezzet-planner/backend/internal/models"
	"example.com/lezzet-planner/backend/internal/repository"
)

type AddressHandler struct {
	Addresses *repository.AddressRepository
}

// NewAddressHandler создает обработчик адресов доставки.
func NewAddressHandler(addresses *repository.AddressRepository) *AddressHandler {
	return &AddressHandler{Addresses: addresses}
}

type CreateAddressRequest struct {
	Title    string  `json:"title" validate:"required,max=100"`
	FullText string  `json:"full_text" validate:"required,max=500"`
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"min=-180,max=180"`
}

// List возвращает адреса пользователя.
func (h *AddressHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	addresses, err := h.Addresses.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Address{"addresses": addresses})
}

// Create сохраняет адрес пользователя.
func (h *AddressHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	title := strings.TrimSpace(req.Title)
	fullText := strings.TrimSpace(req.FullText)
	if title == "" || fullText == "" {
		return badRequest(c, "title and full_text are required")
	}

	address, err := h.Addresses.Create(c.Request().Context(), userID, title, fullText, req.Lat, req.Lon)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, address)
}

// Delete удаляет адрес пользователя.
func (h *AddressHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid address id")
	}

	if err := h.Addresses.Delete(c.Request().Context(), userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "address not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}
