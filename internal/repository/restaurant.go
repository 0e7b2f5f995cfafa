package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lezzet-planner/backend/internal/models"
)

// RestaurantRepository — каталог ресторанов и меню. Только чтение:
// наполнение каталога лежит вне этого сервиса.
type RestaurantRepository struct {
	db *pgxpool.Pool
}

// NewRestaurantRepository создает репозиторий каталога ресторанов.
func NewRestaurantRepository(db *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// List возвращает все рестораны вместе с позициями меню.
func (r *RestaurantRepository) List(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.id, r.name, r.image_url, r.cuisine, r.lat, r.lon,
		        m.id, m.name, m.description, m.price
		 FROM restaurants r
		 LEFT JOIN menu_items m ON m.restaurant_id = r.id
		 ORDER BY r.name, m.sort_order`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.Restaurant)
	order := make([]string, 0)

	for rows.Next() {
		var restaurant models.Restaurant
		var itemID, itemName, itemDescription, itemPrice *string

		err := rows.Scan(&restaurant.ID, &restaurant.Name, &restaurant.ImageURL, &restaurant.Cuisine, &restaurant.Lat, &restaurant.Lon,
			&itemID, &itemName, &itemDescription, &itemPrice)
		if err != nil {
			return nil, err
		}

		existing, ok := byID[restaurant.ID]
		if !ok {
			restaurant.Menu = make([]models.MenuItem, 0)
			byID[restaurant.ID] = &restaurant
			order = append(order, restaurant.ID)
			existing = &restaurant
		}

		if itemID != nil {
			existing.Menu = append(existing.Menu, models.MenuItem{
				ID:          *itemID,
				Name:        derefString(itemName),
				Description: derefString(itemDescription),
				Price:       derefString(itemPrice),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	restaurants := make([]models.Restaurant, 0, len(order))
	for _, id := range order {
		restaurants = append(restaurants, *byID[id])
	}

	return restaurants, nil
}

// GetByID возвращает ресторан с меню по идентификатору.
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (models.Restaurant, error) {
	var restaurant models.Restaurant

	err := r.db.QueryRow(ctx,
		`SELECT id, name, image_url, cuisine, lat, lon
		 FROM restaurants
		 WHERE id = $1`,
		id,
	).Scan(&restaurant.ID, &restaurant.Name, &restaurant.ImageURL, &restaurant.Cuisine, &restaurant.Lat, &restaurant.Lon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant, ErrNotFound
		}
		return restaurant, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, price
		 FROM menu_items
		 WHERE restaurant_id = $1
		 ORDER BY sort_order`,
		id,
	)
	if err != nil {
		return restaurant, err
	}
	defer rows.Close()

	restaurant.Menu = make([]models.MenuItem, 0)
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			return restaurant, err
		}
		restaurant.Menu = append(restaurant.Menu, item)
	}

	if err := rows.Err(); err != nil {
		return restaurant, err
	}

	return restaurant, nil
}

// ResolveMenuItem возвращает ресторан и позицию меню для добавления в корзину.
func (r *RestaurantRepository) ResolveMenuItem(ctx context.Context, restaurantID, productID string) (models.Restaurant, models.MenuItem, error) {
	var restaurant models.Restaurant
	var item models.MenuItem

	err := r.db.QueryRow(ctx,
		`SELECT r.id, r.name, r.image_url, r.cuisine, r.lat, r.lon,
		        m.id, m.name, m.description, m.price
		 FROM restaurants r
		 JOIN menu_items m ON m.restaurant_id = r.id
		 WHERE r.id = $1 AND m.id = $2`,
		restaurantID, productID,
	).Scan(&restaurant.ID, &restaurant.Name, &restaurant.ImageURL, &restaurant.Cuisine, &restaurant.Lat, &restaurant.Lon,
		&item.ID, &item.Name, &item.Description, &item.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant, item, ErrNotFound
		}
		return restaurant, item, err
	}

	return restaurant, item, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
