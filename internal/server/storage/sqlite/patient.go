package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/server/storage"
)

const patientColumns = `id, name, dob, sex, phone, created_at, updated_at`

// patientIDLayout дата в начале ID пациента
const patientIDLayout = "20060102"

// FindPatientsByPhone returns patients with the phone, oldest first
func (s *Storage) FindPatientsByPhone(ctx context.Context, phone string) ([]*models.Patient, error) {
	return findPatientsByPhone(ctx, s.db, phone)
}

// GetPatient retrieves patient by ID
func (s *Storage) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ?`
	patient, err := scanPatient(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// UpdatePatient перезаписывает карточку пациента
func (s *Storage) UpdatePatient(ctx context.Context, patient *models.Patient) error {
	query := `
		UPDATE patients
		SET name = ?, dob = ?, sex = ?, phone = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		patient.Name,
		patient.DOB,
		patient.Sex,
		patient.Phone,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrPatientNotFound
	}

	return nil
}

// RegisterPatient находит или создает пациента и создает консультацию
func (s *Storage) RegisterPatient(ctx context.Context, patient *models.Patient, consultation *models.Consultation, forceNew bool) (bool, error) {
	created := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if !forceNew {
			existing, err := findPatientsByPhone(ctx, tx, patient.Phone)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				*patient = *existing[0]
			}
		}

		if forceNew || patient.ID == "" {
			id, err := nextPatientID(ctx, tx, patient)
			if err != nil {
				return err
			}
			patient.ID = id
			if err := insertPatient(ctx, tx, patient); err != nil {
				return err
			}
			created = true
		}

		consultation.PatientID = patient.ID
		return insertConsultation(ctx, tx, consultation)
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// nextPatientID увеличивает дневной счетчик и собирает ID вида 202610191
func nextPatientID(ctx context.Context, q queryer, patient *models.Patient) (string, error) {
	dateKey := patient.CreatedAt.Format(patientIDLayout)

	query := `
		INSERT INTO patient_counters (date_key, counter) VALUES (?, 1)
		ON CONFLICT(date_key) DO UPDATE SET counter = counter + 1
		RETURNING counter
	`

	var counter int64
	if err := q.QueryRowContext(ctx, query, dateKey).Scan(&counter); err != nil {
		return "", fmt.Errorf("failed to increment patient counter: %w", err)
	}

	return dateKey + strconv.FormatInt(counter, 10), nil
}

func insertPatient(ctx context.Context, q queryer, patient *models.Patient) error {
	query := `INSERT INTO patients (` + patientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := q.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.DOB,
		patient.Sex,
		patient.Phone,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert patient: %w", err)
	}
	return nil
}

func findPatientsByPhone(ctx context.Context, q queryer, phone string) ([]*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE phone = ? ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var patients []*models.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, patient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return patients, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPatient(row scanner) (*models.Patient, error) {
	patient := &models.Patient{}
	err := row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.DOB,
		&patient.Sex,
		&patient.Phone,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return patient, nil
}
