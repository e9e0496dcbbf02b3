package storage

import (
	"context"

	"github.com/iudanet/clinicsync/internal/models"
)

// PatientStorage карточки пациентов
type PatientStorage interface {
	// FindPatientsByPhone returns patients with the normalized phone, oldest first
	FindPatientsByPhone(ctx context.Context, phone string) ([]*models.Patient, error)

	// GetPatient returns ErrPatientNotFound if patient doesn't exist
	GetPatient(ctx context.Context, id string) (*models.Patient, error)

	// UpdatePatient returns ErrPatientNotFound if patient doesn't exist
	UpdatePatient(ctx context.Context, patient *models.Patient) error

	// RegisterPatient в одной транзакции находит пациента по телефону
	// (если forceNew=false) или создает нового с ID вида YYYYMMDD+счетчик,
	// затем создает для него consultation. Поля patient и consultation
	// дополняются сохраненными значениями. Возвращает true, если пациент создан.
	RegisterPatient(ctx context.Context, patient *models.Patient, consultation *models.Consultation, forceNew bool) (bool, error)
}

// ConsultationStorage консультации
type ConsultationStorage interface {
	// CreateConsultation returns ErrPatientNotFound if the patient doesn't exist
	CreateConsultation(ctx context.Context, consultation *models.Consultation) error

	// GetConsultation returns ErrConsultationNotFound if consultation doesn't exist
	GetConsultation(ctx context.Context, id string) (*models.Consultation, error)

	// UpdateConsultation returns ErrConsultationNotFound if consultation doesn't exist
	UpdateConsultation(ctx context.Context, consultation *models.Consultation) error

	// ListConsultations returns matching consultations, newest first
	ListConsultations(ctx context.Context, filter ConsultationFilter) ([]*models.Consultation, error)
}

// ConsultationFilter условия выборки консультаций, пустые поля не фильтруют
type ConsultationFilter struct {
	PatientID string
	Status    string
	Limit     int
}

// GuideStorage образовательные памятки
type GuideStorage interface {
	ListGuides(ctx context.Context) ([]*models.Guide, error)

	// CreateGuide сохраняет памятку с переводами и заполняет guide.ID
	CreateGuide(ctx context.Context, guide *models.Guide) error
}

// MessageStorage журнал WhatsApp сообщений
type MessageStorage interface {
	SaveMessage(ctx context.Context, message *models.Message) error

	// UpdateMessageStatus returns ErrMessageNotFound if message doesn't exist
	UpdateMessageStatus(ctx context.Context, id, status, errText string) error
}
