package sync

import (
	"context"

	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

//go:generate moq -out backend_mock.go . Backend Connectivity Notifier

// Backend серверные операции, которые нужны синхронизации.
// Реализуется клиентом internal/client/api.
type Backend interface {
	LookupPatientsByPhone(ctx context.Context, phone string) ([]api.Patient, error)
	RegisterPatientAndConsultation(ctx context.Context, req api.RegisterPatientRequest) (*api.RegisterPatientResponse, error)
	UpdatePatient(ctx context.Context, id string, update api.PatientUpdate) (*api.Patient, error)
	GetConsultation(ctx context.Context, id string) (*api.Consultation, error)
	UpdateConsultation(ctx context.Context, id string, update api.ConsultationUpdate) (*api.Consultation, error)
	CreateConsultation(ctx context.Context, req api.CreateConsultationRequest) (*api.Consultation, error)
}

// Connectivity сообщает, есть ли связь с сервером
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Notifier вызывается, когда правка переводит консультацию в completed.
// Ошибки отправки обрабатываются внутри и на синхронизацию не влияют.
type Notifier interface {
	ConsultationCompleted(ctx context.Context, consultation *api.Consultation, patient models.PatientDetails)
}

// Store локальное хранилище, с которым работает движок
type Store interface {
	storage.OutboxStorage
	storage.ConflictStorage
	storage.MetadataStorage
}
