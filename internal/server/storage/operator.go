package storage

import (
	"context"
	"time"

	"github.com/iudanet/clinicsync/internal/models"
)

// OperatorStorage defines interface for operator accounts persistence
type OperatorStorage interface {
	// CreateOperator creates a new operator
	// Returns ErrOperatorAlreadyExists if username is taken
	CreateOperator(ctx context.Context, operator *models.Operator) error

	// GetOperatorByUsername returns ErrOperatorNotFound if operator doesn't exist
	GetOperatorByUsername(ctx context.Context, username string) (*models.Operator, error)

	// GetOperatorByID returns ErrOperatorNotFound if operator doesn't exist
	GetOperatorByID(ctx context.Context, operatorID string) (*models.Operator, error)

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, operatorID string, lastLogin time.Time) error
}
