package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
)

// SaveMessage записывает сообщение в журнал
func (s *Storage) SaveMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, number, body, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		message.ID,
		message.Number,
		message.Body,
		message.Status,
		message.Error,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// UpdateMessageStatus фиксирует ответ relay
func (s *Storage) UpdateMessageStatus(ctx context.Context, id, status, errText string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET status = ?, error = ? WHERE id = ?`, status, errText, id)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrMessageNotFound
	}
	return nil
}

// GetMessage возвращает запись журнала; используется в тестах и для диагностики
func (s *Storage) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	m := &models.Message{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, number, body, status, error, created_at FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.Number, &m.Body, &m.Status, &m.Error, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}
