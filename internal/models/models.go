package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

type Restaurant struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	ImageURL string     `json:"image_url"`
	Cuisine  string     `json:"cuisine"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Menu     []MenuItem `json:"menu"`
}

type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price хранится как исходная строка меню ("₺45,00"); каноническое
	// значение получается через pricing.Normalize при добавлении в корзину.
	Price string `json:"price"`
}

// PlanProvenance помечает позицию, пришедшую из слота недельного плана.
type PlanProvenance struct {
	DayIndex int    `json:"day_index"`
	PlanID   string `json:"plan_id"`
}

// LineItem — атомарная позиция корзины. ID уникален на каждое событие
// добавления, а не на продукт: позиции из разных слотов плана не сливаются.
type LineItem struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	UnitPrice      float64         `json:"unit_price"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Quantity       int             `json:"quantity"`
	PlanProvenance *PlanProvenance `json:"plan_provenance,omitempty"`
}

// CartSnapshot — персистируемое состояние общей корзины пользователя.
type CartSnapshot struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Selection — позиция, закрепленная внутри слота недельного плана.
// Концептуально тот же LineItem, спроецированный во второе хранилище.
type Selection struct {
	ID             string  `json:"id"`
	RestaurantID   string  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	UnitPrice      float64 `json:"unit_price"`
}

// PlanSlot — именованный временной слот внутри дня плана.
type PlanSlot struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Time       string      `json:"time"`
	Selections []Selection `json:"selections"`
}

type DayPlan struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Date      string     `json:"date"`
	Completed bool       `json:"completed"`
	Slots     []PlanSlot `json:"slots"`
}

// WeeklyPlan — документ планирования: ровно 7 дней начиная с сегодняшнего.
type WeeklyPlan struct {
	Days        []DayPlan `json:"days"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Address struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	FullText  string    `json:"full_text"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Items           []LineItem `json:"items"`
	TotalPrice      float64    `json:"total_price"`
	AddressText     string     `json:"address_text"`
	DeliveryMinutes float64    `json:"delivery_minutes"`
	DeliveryRange   string     `json:"delivery_range"`
	CreatedAt       time.Time  `json:"created_at"`
}
