package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lezzet-planner/backend/internal/models"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository создает репозиторий истории заказов.
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет заказ. Позиции пишутся JSON-снапшотом: состав заказа
// фиксируется на момент оформления и больше не меняется.
func (r *OrderRepository) Create(ctx context.Context, order models.Order) (models.Order, error) {
	if len(order.Items) == 0 {
		return order, ErrEmptyCart
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return order, err
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, items, total_price, address_text, delivery_minutes, delivery_range)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		order.ID, order.UserID, itemsJSON, order.TotalPrice, order.AddressText, order.DeliveryMinutes, order.DeliveryRange,
	).Scan(&order.CreatedAt)
	if err != nil {
		return order, err
	}

	return order, nil
}

// ListByUser возвращает заказы пользователя, свежие первыми.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, items, total_price, address_text, delivery_minutes, delivery_range, created_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var order models.Order
		var itemsJSON []byte

		err := rows.Scan(&order.ID, &order.UserID, &itemsJSON, &order.TotalPrice, &order.AddressText, &order.DeliveryMinutes, &order.DeliveryRange, &order.CreatedAt)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetByID возвращает заказ пользователя по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, userID, orderID uuid.UUID) (models.Order, error) {
	var order models.Order
	var itemsJSON []byte

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, items, total_price, address_text, delivery_minutes, delivery_range, created_at
		 FROM orders
		 WHERE id = $1 AND user_id = $2`,
		orderID, userID,
	).Scan(&order.ID, &order.UserID, &itemsJSON, &order.TotalPrice, &order.AddressText, &order.DeliveryMinutes, &order.DeliveryRange, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order, ErrNotFound
		}
		return order, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return order, err
	}

	return order, nil
}
