package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
)

const operatorColumns = `id, username, auth_key_hash, public_salt, created_at, last_login`

// CreateOperator creates a new operator in the storage
func (s *Storage) CreateOperator(ctx context.Context, operator *models.Operator) error {
	query := `
		INSERT INTO operators (` + operatorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		operator.ID,
		operator.Username,
		operator.AuthKeyHash,
		operator.PublicSalt,
		operator.CreatedAt,
		operator.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrOperatorAlreadyExists
		}
		return fmt.Errorf("failed to insert operator: %w", err)
	}

	return nil
}

// GetOperatorByUsername retrieves operator by username
func (s *Storage) GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE username = ?`
	return scanOperator(s.db.QueryRowContext(ctx, query, username))
}

// GetOperatorByID retrieves operator by ID
func (s *Storage) GetOperatorByID(ctx context.Context, operatorID string) (*models.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = ?`
	return scanOperator(s.db.QueryRowContext(ctx, query, operatorID))
}

// UpdateLastLogin updates the last login timestamp
func (s *Storage) UpdateLastLogin(ctx context.Context, operatorID string, lastLogin time.Time) error {
	result, err := s.db.ExecContext(ctx, `UPDATE operators SET last_login = ? WHERE id = ?`, lastLogin, operatorID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrOperatorNotFound
	}

	return nil
}

func scanOperator(row *sql.Row) (*models.Operator, error) {
	operator := &models.Operator{}
	var lastLogin sql.NullTime

	err := row.Scan(
		&operator.ID,
		&operator.Username,
		&operator.AuthKeyHash,
		&operator.PublicSalt,
		&operator.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	if lastLogin.Valid {
		operator.LastLogin = &lastLogin.Time
	}

	return operator, nil
}
