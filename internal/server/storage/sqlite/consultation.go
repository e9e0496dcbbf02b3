package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
)

const consultationColumns = `id, patient_id, status, visit_type, location, language, consultation_data, created_at, updated_at`

// CreateConsultation создает консультацию существующего пациента
func (s *Storage) CreateConsultation(ctx context.Context, consultation *models.Consultation) error {
	return insertConsultation(ctx, s.db, consultation)
}

// GetConsultation retrieves consultation by ID
func (s *Storage) GetConsultation(ctx context.Context, id string) (*models.Consultation, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultations WHERE id = ?`

	consultation, err := scanConsultation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrConsultationNotFound
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}

	return consultation, nil
}

// ListConsultations выбирает консультации по пациенту и/или статусу
func (s *Storage) ListConsultations(ctx context.Context, filter storage.ConsultationFilter) ([]*models.Consultation, error) {
	var (
		where []string
		args  []any
	)
	if filter.PatientID != "" {
		where = append(where, "patient_id = ?")
		args = append(args, filter.PatientID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + consultationColumns + ` FROM consultations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	defer rows.Close()

	var consultations []*models.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate consultations: %w", err)
	}

	return consultations, nil
}

func scanConsultation(row scanner) (*models.Consultation, error) {
	consultation := &models.Consultation{}
	var data string

	err := row.Scan(
		&consultation.ID,
		&consultation.PatientID,
		&consultation.Status,
		&consultation.VisitType,
		&consultation.Location,
		&consultation.Language,
		&data,
		&consultation.CreatedAt,
		&consultation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &consultation.Data); err != nil {
		return nil, fmt.Errorf("failed to decode consultation data: %w", err)
	}
	return consultation, nil
}

// UpdateConsultation перезаписывает изменяемые поля консультации
func (s *Storage) UpdateConsultation(ctx context.Context, consultation *models.Consultation) error {
	data, err := encodeData(consultation.Data)
	if err != nil {
		return err
	}

	query := `
		UPDATE consultations
		SET status = ?, location = ?, language = ?, consultation_data = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		consultation.Status,
		consultation.Location,
		consultation.Language,
		data,
		consultation.UpdatedAt,
		consultation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrConsultationNotFound
	}

	return nil
}

func insertConsultation(ctx context.Context, q queryer, consultation *models.Consultation) error {
	data, err := encodeData(consultation.Data)
	if err != nil {
		return err
	}

	query := `INSERT INTO consultations (` + consultationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = q.ExecContext(ctx, query,
		consultation.ID,
		consultation.PatientID,
		consultation.Status,
		consultation.VisitType,
		consultation.Location,
		consultation.Language,
		data,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrPatientNotFound
		}
		return fmt.Errorf("failed to insert consultation: %w", err)
	}
	return nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode consultation data: %w", err)
	}
	return string(buf), nil
}
