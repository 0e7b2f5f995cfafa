package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ключи документов, под которыми персистируются агрегаты пользователя.
const (
	DocumentKeyWeeklyPlan = "weekly_plan"
	DocumentKeyGlobalCart = "global_cart"
)

// DocumentRepository — durable key-value хранилище JSON-снапшотов
// (недельный план, общая корзина) поверх PostgreSQL.
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository создает хранилище документов.
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get возвращает снапшот по ключу или ErrNotFound.
func (r *DocumentRepository) Get(ctx context.Context, userID uuid.UUID, key string) (json.RawMessage, error) {
	var value json.RawMessage

	err := r.db.QueryRow(ctx,
		`SELECT value
		 FROM user_documents
		 WHERE user_id = $1 AND key = $2`,
		userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return value, nil
}

// Set записывает снапшот, заменяя предыдущий.
func (r *DocumentRepository) Set(ctx context.Context, userID uuid.UUID, key string, value json.RawMessage) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_documents (user_id, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		userID, key, value,
	)
	return err
}

// Remove удаляет снапшот; отсутствие ключа не считается ошибкой.
func (r *DocumentRepository) Remove(ctx context.Context, userID uuid.UUID, key string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM user_documents
		 WHERE user_id = $1 AND key = $2`,
		userID, key,
	)
	return err
}
