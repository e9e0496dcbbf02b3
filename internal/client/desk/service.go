// Package desk записывает действия регистратуры в локальную очередь.
// Все изменения сохраняются локально и уходят на сервер при следующем
// проходе синхронизации.
package desk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/ident"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/internal/validation"
	"github.com/iudanet/clinicsync/pkg/api"
)

// Service операции регистратуры
type Service interface {
	// RegisterPatient ставит в очередь нового пациента с первой консультацией
	// и возвращает его временный идентификатор
	RegisterPatient(ctx context.Context, patient models.PatientDetails, consultation models.OfflineConsultation) (ident.ID, error)

	// AddConsultation ставит в очередь новую консультацию и возвращает ключ записи.
	// patientID может быть временным: запись дождется регистрации пациента.
	AddConsultation(ctx context.Context, patient models.PatientDetails, extraData map[string]any, visitType string) (string, error)

	// EditConsultation ставит в очередь частичную правку серверной консультации.
	// Неотправленная правка той же консультации дополняется, а не заменяется.
	EditConsultation(ctx context.Context, consultationID string, patient models.PatientDetails, extraData map[string]any, status string) error

	SetAutoSend(ctx context.Context, enabled bool) error
	AutoSend(ctx context.Context) (bool, error)

	// SetLocation запоминает место приема, оно уходит вместе с правками
	SetLocation(ctx context.Context, location string) error
	Location(ctx context.Context) (string, error)

	// Pending returns queued entries in sync order
	Pending(ctx context.Context) ([]*models.QueueEntry, error)
	LastSync(ctx context.Context) (time.Time, error)
}

// Store локальное хранилище регистратуры
type Store interface {
	storage.OutboxStorage
	storage.MetadataStorage
}

type service struct {
	store Store
	now   func() time.Time
	// onChange вызывается после каждой записи в очередь
	onChange func()
}

// Option настраивает сервис
type Option func(*service)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// OnChange регистрирует обработчик изменения очереди, например Runner.Trigger
func OnChange(fn func()) Option {
	return func(s *service) { s.onChange = fn }
}

// NewService creates the desk service
func NewService(store Store, opts ...Option) Service {
	s := &service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterPatient(ctx context.Context, patient models.PatientDetails, consultation models.OfflineConsultation) (ident.ID, error) {
	if err := validation.ValidatePatient(patient.Name, patient.Phone, patient.DOB); err != nil {
		return ident.ID{}, fmt.Errorf("invalid patient: %w", err)
	}
	if err := validation.ValidateStatus(consultation.Status); err != nil {
		return ident.ID{}, err
	}

	id := ident.NewTemporary()
	patient.ID = id
	patient.Name = strings.TrimSpace(patient.Name)
	patient.Phone = validation.NormalizePhone(patient.Phone)
	if consultation.Status == "" {
		consultation.Status = api.StatusPending
	}

	payload := models.NewPatientPayload{Patient: &patient, Consultation: consultation}
	if err := s.enqueue(ctx, models.KindNewPatient, models.NewPatientKey(id), payload); err != nil {
		return ident.ID{}, err
	}
	return id, nil
}

func (s *service) AddConsultation(ctx context.Context, patient models.PatientDetails, extraData map[string]any, visitType string) (string, error) {
	if patient.ID.IsZero() {
		return "", fmt.Errorf("patient id is required")
	}
	switch visitType {
	case "", api.VisitTypePaid, api.VisitTypeFree, api.VisitTypeReview:
	default:
		return "", fmt.Errorf("unknown visit type %q", visitType)
	}
	patient.Phone = validation.NormalizePhone(patient.Phone)

	key := models.NewConsultationKey(uuid.NewString())
	payload := models.NewConsultationPayload{
		PatientDetails: patient,
		ExtraData:      extraData,
		VisitType:      visitType,
	}
	if err := s.enqueue(ctx, models.KindNewConsultation, key, payload); err != nil {
		return "", err
	}
	return key, nil
}

func (s *service) EditConsultation(ctx context.Context, consultationID string, patient models.PatientDetails, extraData map[string]any, status string) error {
	if !ident.IsUUID(consultationID) {
		return fmt.Errorf("consultation id %q is not a server id", consultationID)
	}
	if err := validation.ValidateStatus(status); err != nil {
		return err
	}
	patient.Phone = validation.NormalizePhone(patient.Phone)

	location, err := s.store.GetLocation(ctx)
	if err != nil {
		return fmt.Errorf("failed to read location: %w", err)
	}

	payload := models.ConsultationEditPayload{
		PatientDetails: patient,
		ExtraData:      extraData,
		Status:         status,
		Location:       location,
	}

	queued, err := s.store.GetEntry(ctx, consultationID)
	switch {
	case err == nil && queued.Kind == models.KindConsultationEdit:
		var prev models.ConsultationEditPayload
		if err := queued.Decode(&prev); err != nil {
			return err
		}
		payload = prev.Merge(payload)
	case err != nil && !errors.Is(err, storage.ErrEntryNotFound):
		return fmt.Errorf("failed to read queued edit: %w", err)
	}

	return s.enqueue(ctx, models.KindConsultationEdit, consultationID, payload)
}

func (s *service) SetAutoSend(ctx context.Context, enabled bool) error {
	return s.store.SetAutoSend(ctx, enabled)
}

func (s *service) AutoSend(ctx context.Context) (bool, error) {
	return s.store.GetAutoSend(ctx)
}

func (s *service) SetLocation(ctx context.Context, location string) error {
	return s.store.SetLocation(ctx, strings.TrimSpace(location))
}

func (s *service) Location(ctx context.Context) (string, error) {
	return s.store.GetLocation(ctx)
}

func (s *service) Pending(ctx context.Context) ([]*models.QueueEntry, error) {
	return s.store.ListEntries(ctx)
}

func (s *service) LastSync(ctx context.Context) (time.Time, error) {
	return s.store.GetLastSyncTime(ctx)
}

func (s *service) enqueue(ctx context.Context, kind models.EntryKind, key string, payload any) error {
	entry, err := models.NewQueueEntry(kind, key, payload, s.now())
	if err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := s.store.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	if s.onChange != nil {
		s.onChange()
	}
	return nil
}
