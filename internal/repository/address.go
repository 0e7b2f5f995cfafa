package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lezzet-planner/backend/internal/models"
)

type AddressRepository struct {
	db *pgxpool.Pool
}

// NewAddressRepository создает репозиторий адресов доставки.
func NewAddressRepository(db *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{db: db}
}

// Create сохраняет адрес пользователя.
func (r *AddressRepository) Create(ctx context.Context, userID uuid.UUID, title, fullText string, lat, lon float64) (models.Address, error) {
	var address models.Address

	err := r.db.QueryRow(ctx,
		`INSERT INTO addresses (id, user_id, title, full_text, lat, lon)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, title, full_text, lat, lon, created_at`,
		uuid.New(), userID, title, fullText, lat, lon,
	).Scan(&address.ID, &address.UserID, &address.Title, &address.FullText, &address.Lat, &address.Lon, &address.CreatedAt)
	if err != nil {
		return address, err
	}

	return address, nil
}

// ListByUser возвращает адреса пользователя.
func (r *AddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, full_text, lat, lon, created_at
		 FROM addresses
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]models.Address, 0)
	for rows.Next() {
		var address models.Address
		err := rows.Scan(&address.ID, &address.UserID, &address.Title, &address.FullText, &address.Lat, &address.Lon, &address.CreatedAt)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

// GetByID возвращает адрес пользователя по идентификатору.
func (r *AddressRepository) GetByID(ctx context.Context, userID, addressID uuid.UUID) (models.Address, error) {
	var address models.Address

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, full_text, lat, lon, created_at
		 FROM addresses
		 WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	).Scan(&address.ID, &address.UserID, &address.Title, &address.FullText, &address.Lat, &address.Lon, &address.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return address, ErrNotFound
		}
		return address, err
	}

	return address, nil
}

// Delete удаляет адрес пользователя.
func (r *AddressRepository) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM addresses
		 WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
