package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

// RecordChoice решение оператора по конфликту версий консультации
type RecordChoice string

const (
	// KeepLocal отправить локальную правку поверх серверной версии
	KeepLocal RecordChoice = "local"
	// KeepServer отбросить локальную правку
	KeepServer RecordChoice = "server"
)

// PatientChoice решение оператора по совпадению телефона
type PatientChoice struct {
	// MergeWith id существующего пациента; пусто означает "новый пациент"
	MergeWith string
}

// NewPatient регистрирует нового пациента несмотря на совпадение телефона
func NewPatient() PatientChoice { return PatientChoice{} }

// MergeInto привязывает консультацию к существующему пациенту
func MergeInto(patientID string) PatientChoice { return PatientChoice{MergeWith: patientID} }

// IsNew reports whether the operator chose to register a separate patient.
func (c PatientChoice) IsNew() bool { return c.MergeWith == "" }

var (
	// ErrConflictKind конфликт по ключу другого типа
	ErrConflictKind = errors.New("conflict has a different kind")
	// ErrNotCandidate выбранный пациент не найден среди совпадений по телефону
	ErrNotCandidate = errors.New("patient is not a conflict candidate")
)

// PendingConflicts возвращает неразрешенные конфликты обоих типов
func (e *Engine) PendingConflicts(ctx context.Context) ([]*models.Conflict, error) {
	return e.store.ListConflicts(ctx)
}

// ResolveConflict разрешает конфликт версий консультации.
// При ошибке конфликт остается неразрешенным.
func (e *Engine) ResolveConflict(ctx context.Context, key string, choice RecordChoice) error {
	conflict, err := e.loadConflict(ctx, key, models.ConflictRecord)
	if err != nil {
		return err
	}

	switch choice {
	case KeepServer:
	case KeepLocal:
		if conflict.Local == nil {
			return fmt.Errorf("conflict %s has no local entry", key)
		}
		var p models.ConsultationEditPayload
		if err := conflict.Local.Decode(&p); err != nil {
			return err
		}
		server := conflict.Server
		if server == nil {
			server = &api.Consultation{ID: key}
		}
		if err := e.pushEdit(ctx, key, p, server); err != nil {
			return fmt.Errorf("failed to push local version: %w", err)
		}
	default:
		return fmt.Errorf("unknown resolution %q", choice)
	}

	if err := e.store.CloseConflict(ctx, key); err != nil {
		return fmt.Errorf("failed to close conflict: %w", err)
	}

	e.logger.InfoContext(ctx, "record conflict resolved",
		slog.String("key", key),
		slog.String("resolution", string(choice)))
	return nil
}

// ResolvePatientConflict разрешает совпадение телефона нового пациента:
// регистрирует отдельного пациента или привязывает консультацию к
// выбранному существующему. Связанные записи очереди переписываются так же,
// как при обычной регистрации.
func (e *Engine) ResolvePatientConflict(ctx context.Context, key string, choice PatientChoice) error {
	conflict, err := e.loadConflict(ctx, key, models.ConflictPatient)
	if err != nil {
		return err
	}

	entry := conflict.Local
	if entry == nil {
		entry, err = e.store.GetEntry(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to load queued patient: %w", err)
		}
	}

	var p models.NewPatientPayload
	if err := entry.Decode(&p); err != nil {
		return err
	}
	if p.Patient == nil {
		p.Patient = conflict.OfflinePatient
	}
	if p.Patient == nil {
		return fmt.Errorf("conflict %s has no patient details", key)
	}

	var created *api.Consultation
	if choice.IsNew() {
		resp, err := e.backend.RegisterPatientAndConsultation(ctx, registerRequest(p.Patient, true))
		if err != nil {
			return fmt.Errorf("failed to register patient: %w", err)
		}
		created = &resp.Consultation
	} else {
		if !candidate(conflict.Candidates, choice.MergeWith) {
			return fmt.Errorf("%w: %s", ErrNotCandidate, choice.MergeWith)
		}
		created, err = e.backend.CreateConsultation(ctx, api.CreateConsultationRequest{
			PatientID:        choice.MergeWith,
			ConsultationData: map[string]any{},
			Status:           api.StatusPending,
			VisitType:        api.VisitTypePaid,
		})
		if err != nil {
			return fmt.Errorf("failed to create consultation: %w", err)
		}
	}

	// completeRegistration удаляет запись пациента вместе с re-keying
	if _, err := e.completeRegistration(ctx, entry, p, created); err != nil {
		return err
	}
	if err := e.store.CloseConflict(ctx, key); err != nil && !errors.Is(err, storage.ErrConflictNotFound) {
		return fmt.Errorf("failed to close conflict: %w", err)
	}

	e.logger.InfoContext(ctx, "patient conflict resolved",
		slog.String("key", key),
		slog.Bool("new_patient", choice.IsNew()),
		slog.String("patient_id", created.PatientID))
	return nil
}

func (e *Engine) loadConflict(ctx context.Context, key string, kind models.ConflictKind) (*models.Conflict, error) {
	conflict, err := e.store.GetConflict(ctx, key)
	if err != nil {
		return nil, err
	}
	if conflict.Kind != kind {
		return nil, fmt.Errorf("%w: %s is %s", ErrConflictKind, key, conflict.Kind)
	}
	return conflict, nil
}

func candidate(list []api.Patient, id string) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}
